package provider

import (
	"context"
	"errors"
	"sort"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
)

// Provider-level sentinel errors.
var (
	// ErrTokenRefreshFailed means the upstream rejected the refresh request.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrRefreshUnsupported means the provider's tokens cannot be refreshed
	// (e.g. long-lived personal access tokens). A 401 against such a
	// provider exhausts authentication immediately.
	ErrRefreshUnsupported = errors.New("token refresh not supported")
)

// IdentityProvider can refresh a user's access token for one external
// service.
type IdentityProvider interface {
	// Key is the provider key, e.g. "spotify".
	Key() string

	// Refresh exchanges a plaintext refresh token for a new token pair.
	// Fails with ErrTokenRefreshFailed or ErrRefreshUnsupported.
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

// LinkingProvider links and unlinks a user's account for one external
// service. Token acquisition (the OAuth dance) happens outside the engine;
// Link receives an already-obtained plaintext token pair.
type LinkingProvider interface {
	Key() string
	Link(ctx context.Context, userID string, tokens domain.TokenPair) error
	Unlink(ctx context.Context, userID string) error
}

// Entry bundles one provider's capabilities under its key.
type Entry struct {
	Identity IdentityProvider
	Linking  LinkingProvider
}

// Registry maps provider keys to their capabilities. Built once at process
// start from a fixed set of plugins; read-only thereafter, so lookups need
// no locking.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from the given entries, keyed by the
// identity provider's key.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := ""
		switch {
		case e.Identity != nil:
			key = e.Identity.Key()
		case e.Linking != nil:
			key = e.Linking.Key()
		}
		if key != "" {
			r.entries[key] = e
		}
	}
	return r
}

// Identity looks up the identity provider for key. Absence is not an error;
// callers decide whether it is fatal.
func (r *Registry) Identity(key string) (IdentityProvider, bool) {
	e, ok := r.entries[key]
	if !ok || e.Identity == nil {
		return nil, false
	}
	return e.Identity, true
}

// Linking looks up the linking provider for key.
func (r *Registry) Linking(key string) (LinkingProvider, bool) {
	e, ok := r.entries[key]
	if !ok || e.Linking == nil {
		return nil, false
	}
	return e.Linking, true
}

// Keys returns all registered provider keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
