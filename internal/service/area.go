package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/catalog"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/executor"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/repository"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

var (
	triggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "area_triggers_total",
		Help: "Actions that fired, by action name.",
	}, []string{"action"})
	reactionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "area_reaction_failures_total",
		Help: "Reaction executions that failed, by reaction name.",
	}, []string{"reaction"})
)

// PollScheduler is the scheduling capability the service needs: per-area
// start and stop, both idempotent.
type PollScheduler interface {
	Start(areaID string)
	Stop(areaID string)
}

// EventPublisher emits area lifecycle and execution events. Implementations
// are best-effort and must not fail the calling operation.
type EventPublisher interface {
	AreaCreated(ctx context.Context, area *domain.Area)
	AreaDeactivated(ctx context.Context, area *domain.Area)
	AreaTriggered(ctx context.Context, area *domain.Area, payload string)
	ReactionFailed(ctx context.Context, area *domain.Area, reactionErr error)
}

// AreaService manages area bindings and drives their execution. It is the
// only component that touches the area repository, the executor registries
// and the scheduler together.
type AreaService struct {
	repo      repository.AreaRepository
	catalog   *catalog.Catalog
	actions   *executor.ActionRegistry
	reactions *executor.ReactionRegistry
	scheduler PollScheduler
	events    EventPublisher
	logger    *slog.Logger
}

// NewAreaService creates an area service.
func NewAreaService(
	repo repository.AreaRepository,
	cat *catalog.Catalog,
	actions *executor.ActionRegistry,
	reactions *executor.ReactionRegistry,
	sched PollScheduler,
	events EventPublisher,
	logger *slog.Logger,
) *AreaService {
	return &AreaService{
		repo:      repo,
		catalog:   cat,
		actions:   actions,
		reactions: reactions,
		scheduler: sched,
		events:    events,
		logger:    logger,
	}
}

// AvailableActions lists the action catalog.
func (s *AreaService) AvailableActions() []catalog.ActionDefinition {
	return s.catalog.Actions()
}

// AvailableReactions lists the reaction catalog.
func (s *AreaService) AvailableReactions() []catalog.ReactionDefinition {
	return s.catalog.Reactions()
}

// BindAction creates an active area binding actionName to reactionName for
// the user and starts polling it immediately. Unknown names are rejected
// before anything persists.
func (s *AreaService) BindAction(ctx context.Context, userID, actionName, reactionName string, config map[string]string) (*domain.Area, error) {
	if _, ok := s.catalog.Action(actionName); !ok {
		return nil, apperrors.UnknownAction(actionName)
	}
	if _, ok := s.catalog.Reaction(reactionName); !ok {
		return nil, apperrors.UnknownReaction(reactionName)
	}

	area := &domain.Area{
		ID:           uuid.New().String(),
		UserID:       userID,
		ActionName:   actionName,
		ReactionName: reactionName,
		Config:       config,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, area); err != nil {
		return nil, fmt.Errorf("create area: %w", err)
	}

	s.scheduler.Start(area.ID)
	s.events.AreaCreated(ctx, area)

	s.logger.InfoContext(ctx, "area bound",
		slog.String("area_id", area.ID),
		slog.String("user_id", userID),
		slog.String("action", actionName),
		slog.String("reaction", reactionName))

	return area, nil
}

// GetUserAreas lists all areas owned by the user, active and inactive.
func (s *AreaService) GetUserAreas(ctx context.Context, userID string) ([]domain.Area, error) {
	areas, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return areas, nil
}

// DeactivateArea stops and deactivates the user's area. Deactivating an
// already-inactive or unknown area succeeds, so retried deletes are safe.
// Deactivating someone else's area is forbidden.
func (s *AreaService) DeactivateArea(ctx context.Context, userID, areaID string) error {
	area, err := s.repo.GetByID(ctx, areaID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load area: %w", err)
	}
	if area.UserID != userID {
		return apperrors.Forbidden("area belongs to another user")
	}

	if err := s.repo.Deactivate(ctx, areaID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("deactivate area: %w", err)
	}

	s.scheduler.Stop(areaID)
	s.events.AreaDeactivated(ctx, area)

	s.logger.InfoContext(ctx, "area deactivated",
		slog.String("area_id", areaID),
		slog.String("user_id", userID))

	return nil
}

// TriggerAll runs one manual poll pass over every active area, outside the
// scheduler cadence. It returns how many areas fired. Per-area failures are
// logged and do not abort the pass.
func (s *AreaService) TriggerAll(ctx context.Context) (int, error) {
	areas, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active areas: %w", err)
	}

	triggered := 0
	for i := range areas {
		fired, err := s.executeArea(ctx, &areas[i])
		if err != nil {
			s.logger.WarnContext(ctx, "manual trigger failed for area",
				slog.String("area_id", areas[i].ID),
				slog.String("error", err.Error()))
			continue
		}
		if fired {
			triggered++
		}
	}
	return triggered, nil
}

// ExecuteArea runs one poll pass for a single area. It is the scheduler's
// tick function.
func (s *AreaService) ExecuteArea(ctx context.Context, areaID string) error {
	area, err := s.repo.GetByID(ctx, areaID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The area vanished under the loop; stop polling it.
			s.scheduler.Stop(areaID)
			return nil
		}
		return fmt.Errorf("load area: %w", err)
	}
	if !area.Active {
		s.scheduler.Stop(areaID)
		return nil
	}

	_, err = s.executeArea(ctx, area)
	return err
}

// Reconcile restarts polling for every active area, typically after a
// process restart. It returns how many loops were started.
func (s *AreaService) Reconcile(ctx context.Context) (int, error) {
	areas, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active areas: %w", err)
	}
	for i := range areas {
		s.scheduler.Start(areas[i].ID)
	}
	s.logger.InfoContext(ctx, "reconciled active areas", slog.Int("count", len(areas)))
	return len(areas), nil
}

// executeArea detects once and dispatches the reaction when the action
// fired. Detection state advances before the reaction runs, so a failing
// reaction is not retried with the same payload on the next tick.
func (s *AreaService) executeArea(ctx context.Context, area *domain.Area) (bool, error) {
	action, ok := s.actions.Get(area.ActionName)
	if !ok {
		return false, apperrors.UnknownAction(area.ActionName)
	}

	signal, err := action.Detect(ctx, area)
	if err != nil {
		return false, fmt.Errorf("detect %s: %w", area.ActionName, err)
	}

	switch signal.Kind {
	case domain.SignalNoAccount:
		s.logger.DebugContext(ctx, "no linked account, skipping",
			slog.String("area_id", area.ID),
			slog.String("action", area.ActionName))
		return false, nil

	case domain.SignalUnchanged:
		return false, nil
	}

	triggersTotal.WithLabelValues(area.ActionName).Inc()
	s.events.AreaTriggered(ctx, area, signal.Payload)
	s.logger.InfoContext(ctx, "action fired",
		slog.String("area_id", area.ID),
		slog.String("action", area.ActionName),
		slog.String("payload", signal.Payload))

	reaction, ok := s.reactions.Get(area.ReactionName)
	if !ok {
		return true, apperrors.UnknownReaction(area.ReactionName)
	}

	if err := reaction.Execute(ctx, area, signal.Payload); err != nil {
		reactionFailures.WithLabelValues(area.ReactionName).Inc()
		s.events.ReactionFailed(ctx, area, err)
		return true, fmt.Errorf("execute %s: %w", area.ReactionName, err)
	}

	return true, nil
}
