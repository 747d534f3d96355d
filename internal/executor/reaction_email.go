package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httpclient"
)

// EmailReaction sends an email through an HTTP mailer API when its bound
// action fires.
type EmailReaction struct {
	client   httpclient.Doer
	endpoint string
	apiKey   string
}

// NewEmailReaction creates the send_email reaction executor. endpoint is the
// mailer API's send URL.
func NewEmailReaction(client httpclient.Doer, endpoint, apiKey string) *EmailReaction {
	return &EmailReaction{client: client, endpoint: endpoint, apiKey: apiKey}
}

// Name returns "send_email".
func (r *EmailReaction) Name() string { return "send_email" }

type mailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Execute sends the email described by the area's config. The trigger payload
// is appended to the configured body so the recipient sees what fired.
func (r *EmailReaction) Execute(ctx context.Context, area *domain.Area, payload string) error {
	to := area.ConfigValue("to")
	if to == "" {
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("missing %q config key", "to"))
	}

	subject := area.ConfigValue("subject")
	if subject == "" {
		subject = "Automation triggered: " + area.ActionName
	}

	body := area.ConfigValue("body")
	if body != "" {
		body += "\n\n"
	}
	body += payload

	data, err := json.Marshal(mailRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("marshal mail request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(data))
	if err != nil {
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("create mail request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return apperrors.ReactionFailed(r.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return apperrors.ReactionFailed(r.Name(), fmt.Errorf("mailer returned %d", resp.StatusCode))
	}
	return nil
}
