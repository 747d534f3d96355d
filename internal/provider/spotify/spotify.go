package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httpclient"
)

// Key is the provider key used in the registry and credential store.
const Key = "spotify"

// DefaultAccountsURL is Spotify's OAuth token endpoint host.
const DefaultAccountsURL = "https://accounts.spotify.com"

// Provider implements identity refresh against the Spotify accounts service.
type Provider struct {
	client       httpclient.Doer
	accountsURL  string
	clientID     string
	clientSecret string
}

// New creates a Spotify identity provider. accountsURL overrides the token
// endpoint host for tests; pass "" to use the real one.
func New(client httpclient.Doer, accountsURL, clientID, clientSecret string) *Provider {
	if accountsURL == "" {
		accountsURL = DefaultAccountsURL
	}
	return &Provider{
		client:       client,
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Key returns "spotify".
func (p *Provider) Key() string { return Key }

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Refresh exchanges a refresh token for a new access token via the
// refresh_token grant. Spotify usually omits a new refresh token, in which
// case the caller keeps the old one.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	basic := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("spotify token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.TokenPair{}, fmt.Errorf("spotify token endpoint returned %d: %w",
			resp.StatusCode, provider.ErrTokenRefreshFailed)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.TokenPair{}, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return domain.TokenPair{}, fmt.Errorf("empty access token: %w", provider.ErrTokenRefreshFailed)
	}

	pair := domain.TokenPair{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if body.ExpiresIn > 0 {
		expiry := time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
		pair.ExpiresAt = &expiry
	}
	return pair, nil
}
