package credential

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/crypto"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider"
	redisrepo "github.com/HexaTeam-By-Epitech/area-sub002/internal/repository/redis"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

type fakeIdentity struct {
	key       string
	pair      domain.TokenPair
	err       error
	refreshes int
}

func (f *fakeIdentity) Key() string { return f.key }

func (f *fakeIdentity) Refresh(context.Context, string) (domain.TokenPair, error) {
	f.refreshes++
	if f.err != nil {
		return domain.TokenPair{}, f.err
	}
	return f.pair, nil
}

type fixture struct {
	resolver *Resolver
	store    *redisrepo.CredentialStore
	cipher   *crypto.TokenCipher
	identity *fakeIdentity
	now      time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cipher, err := crypto.NewTokenCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	identity := &fakeIdentity{
		key:  "spotify",
		pair: domain.TokenPair{AccessToken: "refreshed-access"},
	}
	store := redisrepo.NewCredentialStore(client)
	resolver := NewResolver(store, provider.NewRegistry(provider.Entry{Identity: identity}), cipher)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	resolver.now = func() time.Time { return now }

	return &fixture{resolver: resolver, store: store, cipher: cipher, identity: identity, now: now}
}

func (f *fixture) link(t *testing.T, access, refresh string, expiresAt *time.Time) {
	t.Helper()
	encAccess, err := f.cipher.Encrypt(access)
	require.NoError(t, err)
	encRefresh, err := f.cipher.Encrypt(refresh)
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), &domain.Credential{
		UserID:       "user-001",
		Provider:     "spotify",
		AccessToken:  encAccess,
		RefreshToken: encRefresh,
		ExpiresAt:    expiresAt,
	}))
}

func TestResolver_AccessToken_Valid(t *testing.T) {
	f := setup(t)
	future := f.now.Add(time.Hour)
	f.link(t, "live-access", "live-refresh", &future)

	token, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	require.NoError(t, err)
	assert.Equal(t, "live-access", token)
	assert.Zero(t, f.identity.refreshes)
}

func TestResolver_AccessToken_NoLinkedAccount(t *testing.T) {
	f := setup(t)

	_, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	assert.ErrorIs(t, err, apperrors.ErrNoLinkedAccount)
}

func TestResolver_AccessToken_UndecryptableIsInvalidToken(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Save(context.Background(), &domain.Credential{
		UserID:      "user-001",
		Provider:    "spotify",
		AccessToken: "not-real-ciphertext",
	}))

	_, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Zero(t, f.identity.refreshes)
}

func TestResolver_AccessToken_ExpiredRefreshesAndPersists(t *testing.T) {
	f := setup(t)
	past := f.now.Add(-time.Minute)
	f.link(t, "stale-access", "live-refresh", &past)

	token, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access", token)
	assert.Equal(t, 1, f.identity.refreshes)

	// The refreshed pair replaced the stored ciphertext; the refresh token
	// was not rotated, so the old one survives.
	cred, err := f.store.Get(context.Background(), "user-001", "spotify")
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access", f.cipher.Decrypt(cred.AccessToken))
	assert.Equal(t, "live-refresh", f.cipher.Decrypt(cred.RefreshToken))
}

func TestResolver_AccessToken_RotatedRefreshTokenPersists(t *testing.T) {
	f := setup(t)
	f.identity.pair = domain.TokenPair{AccessToken: "refreshed-access", RefreshToken: "rotated-refresh"}
	past := f.now.Add(-time.Minute)
	f.link(t, "stale-access", "old-refresh", &past)

	_, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	require.NoError(t, err)

	cred, err := f.store.Get(context.Background(), "user-001", "spotify")
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", f.cipher.Decrypt(cred.RefreshToken))
}

func TestResolver_AccessToken_RefreshFailureExhaustsAuth(t *testing.T) {
	f := setup(t)
	f.identity.err = provider.ErrTokenRefreshFailed
	past := f.now.Add(-time.Minute)
	f.link(t, "stale-access", "revoked-refresh", &past)

	_, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	assert.ErrorIs(t, err, apperrors.ErrAuthExhausted)
}

func TestResolver_AccessToken_RefreshUnsupportedExhaustsAuth(t *testing.T) {
	f := setup(t)
	f.identity.err = provider.ErrRefreshUnsupported
	past := f.now.Add(-time.Minute)
	f.link(t, "stale-access", "any", &past)

	_, err := f.resolver.AccessToken(context.Background(), "user-001", "spotify")
	assert.ErrorIs(t, err, apperrors.ErrAuthExhausted)
	assert.ErrorIs(t, err, provider.ErrRefreshUnsupported)
}

// ----------------------------------------------------------------------------
// Execute: refresh-once, retry-once
// ----------------------------------------------------------------------------

func TestResolver_Execute_Success(t *testing.T) {
	f := setup(t)
	f.link(t, "live-access", "live-refresh", nil)

	var seen []string
	err := f.resolver.Execute(context.Background(), "user-001", "spotify", func(_ context.Context, token string) error {
		seen = append(seen, token)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"live-access"}, seen)
}

func TestResolver_Execute_RejectedTokenRetriesOnceAfterRefresh(t *testing.T) {
	f := setup(t)
	f.link(t, "stale-access", "live-refresh", nil)

	var seen []string
	err := f.resolver.Execute(context.Background(), "user-001", "spotify", func(_ context.Context, token string) error {
		seen = append(seen, token)
		if token == "stale-access" {
			return fmt.Errorf("upstream 401: %w", apperrors.ErrInvalidToken)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stale-access", "refreshed-access"}, seen)
	assert.Equal(t, 1, f.identity.refreshes)
}

func TestResolver_Execute_SecondRejectionExhaustsAuth(t *testing.T) {
	f := setup(t)
	f.link(t, "stale-access", "live-refresh", nil)

	calls := 0
	err := f.resolver.Execute(context.Background(), "user-001", "spotify", func(context.Context, string) error {
		calls++
		return fmt.Errorf("upstream 401: %w", apperrors.ErrInvalidToken)
	})
	assert.ErrorIs(t, err, apperrors.ErrAuthExhausted)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, f.identity.refreshes)
}

func TestResolver_Execute_ExpiryRefreshCountsAgainstBudget(t *testing.T) {
	f := setup(t)
	past := f.now.Add(-time.Minute)
	f.link(t, "stale-access", "live-refresh", &past)

	calls := 0
	err := f.resolver.Execute(context.Background(), "user-001", "spotify", func(context.Context, string) error {
		calls++
		return fmt.Errorf("upstream 401: %w", apperrors.ErrInvalidToken)
	})
	assert.ErrorIs(t, err, apperrors.ErrAuthExhausted)

	// One refresh happened while resolving; the 401 must not buy another.
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, f.identity.refreshes)
}

func TestResolver_Execute_NonAuthErrorsPassThrough(t *testing.T) {
	f := setup(t)
	f.link(t, "live-access", "live-refresh", nil)

	upstream := errors.New("rate limited")
	err := f.resolver.Execute(context.Background(), "user-001", "spotify", func(context.Context, string) error {
		return upstream
	})
	assert.ErrorIs(t, err, upstream)
	assert.Zero(t, f.identity.refreshes)
}
