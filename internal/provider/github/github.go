package github

import (
	"context"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider"
)

// Key is the provider key used in the registry and credential store.
const Key = "github"

// Provider implements the GitHub identity side. GitHub OAuth app tokens do
// not expire and have no refresh grant, so Refresh always fails with
// ErrRefreshUnsupported; a 401 against GitHub means the user must re-link.
type Provider struct{}

// New creates a GitHub identity provider.
func New() *Provider { return &Provider{} }

// Key returns "github".
func (p *Provider) Key() string { return Key }

// Refresh reports that GitHub tokens cannot be refreshed.
func (p *Provider) Refresh(_ context.Context, _ string) (domain.TokenPair, error) {
	return domain.TokenPair{}, provider.ErrRefreshUnsupported
}
