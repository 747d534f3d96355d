package provider

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/crypto"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	redisrepo "github.com/HexaTeam-By-Epitech/area-sub002/internal/repository/redis"
	apperrors "github.com/HexaTeam-By-Epitech/area-sub002/pkg/errors"
)

type stubIdentity struct{ key string }

func (s *stubIdentity) Key() string { return s.key }

func (s *stubIdentity) Refresh(context.Context, string) (domain.TokenPair, error) {
	return domain.TokenPair{AccessToken: "fresh"}, nil
}

func TestRegistry_Lookup(t *testing.T) {
	spotify := &stubIdentity{key: "spotify"}
	reg := NewRegistry(Entry{Identity: spotify})

	got, ok := reg.Identity("spotify")
	require.True(t, ok)
	assert.Same(t, spotify, got)

	_, ok = reg.Identity("unknown")
	assert.False(t, ok)

	_, ok = reg.Linking("spotify")
	assert.False(t, ok)
}

func TestRegistry_Keys(t *testing.T) {
	reg := NewRegistry(
		Entry{Identity: &stubIdentity{key: "spotify"}},
		Entry{Identity: &stubIdentity{key: "github"}},
	)

	assert.Equal(t, []string{"github", "spotify"}, reg.Keys())
}

// ----------------------------------------------------------------------------
// StoreLinker
// ----------------------------------------------------------------------------

func setupLinker(t *testing.T) (*StoreLinker, *redisrepo.CredentialStore, *crypto.TokenCipher) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cipher, err := crypto.NewTokenCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	store := redisrepo.NewCredentialStore(client)
	return NewStoreLinker("spotify", store, cipher), store, cipher
}

func TestStoreLinker_LinkEncryptsTokens(t *testing.T) {
	linker, store, cipher := setupLinker(t)
	ctx := context.Background()

	err := linker.Link(ctx, "user-001", domain.TokenPair{
		AccessToken:  "plain-access",
		RefreshToken: "plain-refresh",
	})
	require.NoError(t, err)

	cred, err := store.Get(ctx, "user-001", "spotify")
	require.NoError(t, err)

	// Stored values are ciphertext, not the plaintext tokens.
	assert.NotEqual(t, "plain-access", cred.AccessToken)
	assert.NotEqual(t, "plain-refresh", cred.RefreshToken)
	assert.Equal(t, "plain-access", cipher.Decrypt(cred.AccessToken))
	assert.Equal(t, "plain-refresh", cipher.Decrypt(cred.RefreshToken))
}

func TestStoreLinker_LinkReplacesExisting(t *testing.T) {
	linker, store, cipher := setupLinker(t)
	ctx := context.Background()

	require.NoError(t, linker.Link(ctx, "user-001", domain.TokenPair{AccessToken: "first"}))
	require.NoError(t, linker.Link(ctx, "user-001", domain.TokenPair{AccessToken: "second"}))

	cred, err := store.Get(ctx, "user-001", "spotify")
	require.NoError(t, err)
	assert.Equal(t, "second", cipher.Decrypt(cred.AccessToken))
}

func TestStoreLinker_Unlink(t *testing.T) {
	linker, store, _ := setupLinker(t)
	ctx := context.Background()

	require.NoError(t, linker.Link(ctx, "user-001", domain.TokenPair{AccessToken: "tok"}))
	require.NoError(t, linker.Unlink(ctx, "user-001"))

	_, err := store.Get(ctx, "user-001", "spotify")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Unlinking again is a no-op.
	require.NoError(t, linker.Unlink(ctx, "user-001"))
}
