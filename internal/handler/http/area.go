package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/catalog"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httputil"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/middleware"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/validator"
)

// AreaManager is the service capability the HTTP layer depends on.
type AreaManager interface {
	AvailableActions() []catalog.ActionDefinition
	AvailableReactions() []catalog.ReactionDefinition
	BindAction(ctx context.Context, userID, actionName, reactionName string, config map[string]string) (*domain.Area, error)
	GetUserAreas(ctx context.Context, userID string) ([]domain.Area, error)
	DeactivateArea(ctx context.Context, userID, areaID string) error
	TriggerAll(ctx context.Context) (int, error)
}

// AreaHandler serves the catalog and area endpoints.
type AreaHandler struct {
	manager AreaManager
	logger  *slog.Logger
}

// NewAreaHandler creates the area HTTP handler.
func NewAreaHandler(manager AreaManager, logger *slog.Logger) *AreaHandler {
	return &AreaHandler{manager: manager, logger: logger}
}

type bindAreaRequest struct {
	Action   string            `json:"action" validate:"required"`
	Reaction string            `json:"reaction" validate:"required"`
	Config   map[string]string `json:"config"`
}

type areaResponse struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Reaction  string            `json:"reaction"`
	Config    map[string]string `json:"config,omitempty"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}

func toAreaResponse(a *domain.Area) areaResponse {
	return areaResponse{
		ID:        a.ID,
		Action:    a.ActionName,
		Reaction:  a.ReactionName,
		Config:    a.Config,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

// ListActions handles GET /api/v1/catalog/actions.
func (h *AreaHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.manager.AvailableActions()})
}

// ListReactions handles GET /api/v1/catalog/reactions.
func (h *AreaHandler) ListReactions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.manager.AvailableReactions()})
}

// CreateArea handles POST /api/v1/areas.
func (h *AreaHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing user identity"), h.logger)
		return
	}

	var req bindAreaRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	area, err := h.manager.BindAction(r.Context(), userID, req.Action, req.Reaction, req.Config)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: toAreaResponse(area)})
}

// ListAreas handles GET /api/v1/areas.
func (h *AreaHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing user identity"), h.logger)
		return
	}

	areas, err := h.manager.GetUserAreas(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out := make([]areaResponse, 0, len(areas))
	for i := range areas {
		out = append(out, toAreaResponse(&areas[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: out})
}

// DeleteArea handles DELETE /api/v1/areas/{id}. Deleting an unknown area
// succeeds so retried deletes stay safe.
func (h *AreaHandler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("missing user identity"), h.logger)
		return
	}

	areaID := chi.URLParam(r, "id")
	if err := h.manager.DeactivateArea(r.Context(), userID, areaID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TriggerAreas handles POST /api/v1/areas/trigger, an admin-only manual poll
// pass over every active area.
func (h *AreaHandler) TriggerAreas(w http.ResponseWriter, r *http.Request) {
	triggered, err := h.manager.TriggerAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"triggered": triggered}})
}
