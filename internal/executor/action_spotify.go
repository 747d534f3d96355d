package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider/spotify"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httpclient"
)

// DefaultSpotifyAPIURL is the Spotify Web API host.
const DefaultSpotifyAPIURL = "https://api.spotify.com"

// SpotifyLikesAction fires when the newest track in the user's liked tracks
// changes.
type SpotifyLikesAction struct {
	detector *Detector
	client   httpclient.Doer
	baseURL  string
}

// NewSpotifyLikesAction creates the spotify_has_likes action executor.
// baseURL overrides the API host for tests; pass "" for the real one.
func NewSpotifyLikesAction(detector *Detector, client httpclient.Doer, baseURL string) *SpotifyLikesAction {
	if baseURL == "" {
		baseURL = DefaultSpotifyAPIURL
	}
	return &SpotifyLikesAction{
		detector: detector,
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Name returns "spotify_has_likes".
func (a *SpotifyLikesAction) Name() string { return "spotify_has_likes" }

// Detect polls the newest liked track and edge-detects on its id.
func (a *SpotifyLikesAction) Detect(ctx context.Context, area *domain.Area) (domain.Signal, error) {
	return a.detector.Detect(ctx, area, spotify.Key, a.fetchLatestLike)
}

type savedTracksResponse struct {
	Items []struct {
		Track struct {
			ID string `json:"id"`
		} `json:"track"`
	} `json:"items"`
}

func (a *SpotifyLikesAction) fetchLatestLike(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/me/tracks?limit=1", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create saved tracks request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return "", apperrors.ProviderUnavailable(spotify.Key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("spotify rejected the access token: %w", apperrors.ErrInvalidToken)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return "", apperrors.ProviderUnavailable(spotify.Key, fmt.Errorf("saved tracks returned %d", resp.StatusCode))
	}

	var body savedTracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperrors.ProviderUnavailable(spotify.Key, fmt.Errorf("decode saved tracks: %w", err))
	}

	if len(body.Items) == 0 {
		return "", nil
	}
	if body.Items[0].Track.ID == "" {
		return "", ErrUnobtainableID
	}
	return body.Items[0].Track.ID, nil
}
