package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider/github"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httpclient"
)

// DefaultGitHubAPIURL is the GitHub REST API host.
const DefaultGitHubAPIURL = "https://api.github.com"

// GitHubStarsAction fires when the most recently starred repository of the
// user changes.
type GitHubStarsAction struct {
	detector *Detector
	client   httpclient.Doer
	baseURL  string
}

// NewGitHubStarsAction creates the github_new_star action executor. baseURL
// overrides the API host for tests; pass "" for the real one.
func NewGitHubStarsAction(detector *Detector, client httpclient.Doer, baseURL string) *GitHubStarsAction {
	if baseURL == "" {
		baseURL = DefaultGitHubAPIURL
	}
	return &GitHubStarsAction{
		detector: detector,
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// Name returns "github_new_star".
func (a *GitHubStarsAction) Name() string { return "github_new_star" }

// Detect polls the newest starred repository and edge-detects on its id.
func (a *GitHubStarsAction) Detect(ctx context.Context, area *domain.Area) (domain.Signal, error) {
	return a.detector.Detect(ctx, area, github.Key, a.fetchLatestStar)
}

type starredEntry struct {
	Repo struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
	} `json:"repo"`
}

func (a *GitHubStarsAction) fetchLatestStar(ctx context.Context, token string) (string, error) {
	url := a.baseURL + "/user/starred?per_page=1&sort=created&direction=desc"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create starred request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	// The star media type nests the repository under "repo".
	req.Header.Set("Accept", "application/vnd.github.star+json")

	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return "", apperrors.ProviderUnavailable(github.Key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("github rejected the access token: %w", apperrors.ErrInvalidToken)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return "", apperrors.ProviderUnavailable(github.Key, fmt.Errorf("starred returned %d", resp.StatusCode))
	}

	var entries []starredEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", apperrors.ProviderUnavailable(github.Key, fmt.Errorf("decode starred: %w", err))
	}

	if len(entries) == 0 {
		return "", nil
	}
	if entries[0].Repo.ID == 0 {
		return "", ErrUnobtainableID
	}
	return strconv.FormatInt(entries[0].Repo.ID, 10), nil
}
