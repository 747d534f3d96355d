package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httpclient"
)

// WebhookReaction posts the trigger payload as JSON to a user-configured URL.
type WebhookReaction struct {
	client httpclient.Doer
	now    func() time.Time
}

// NewWebhookReaction creates the post_webhook reaction executor.
func NewWebhookReaction(client httpclient.Doer) *WebhookReaction {
	return &WebhookReaction{client: client, now: time.Now}
}

// Name returns "post_webhook".
func (r *WebhookReaction) Name() string { return "post_webhook" }

type webhookBody struct {
	AreaID  string `json:"area_id"`
	Action  string `json:"action"`
	Payload string `json:"payload"`
	FiredAt string `json:"fired_at"`
}

// Execute posts the payload to the URL in the area's config.
func (r *WebhookReaction) Execute(ctx context.Context, area *domain.Area, payload string) error {
	url := area.ConfigValue("url")
	if url == "" {
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("missing %q config key", "url"))
	}

	data, err := json.Marshal(webhookBody{
		AreaID:  area.ID,
		Action:  area.ActionName,
		Payload: payload,
		FiredAt: r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("marshal webhook body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return apperrors.ReactionFailed(r.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("webhook returned %d", resp.StatusCode))
	}
	return nil
}
