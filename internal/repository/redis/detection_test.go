package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDetectionStore(t *testing.T, ttl time.Duration) (*DetectionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDetectionStore(client, ttl), mr
}

func TestDetectionStore_MissingKeyReadsAsEmpty(t *testing.T) {
	store, _ := setupDetectionStore(t, 0)

	last, err := store.LastSignal(context.Background(), "user-001", "spotify_has_likes")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestDetectionStore_SetAndGet(t *testing.T) {
	store, _ := setupDetectionStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetLastSignal(ctx, "user-001", "spotify_has_likes", "track-1"))

	last, err := store.LastSignal(ctx, "user-001", "spotify_has_likes")
	require.NoError(t, err)
	assert.Equal(t, "track-1", last)
}

func TestDetectionStore_EmptySentinelEqualsMissing(t *testing.T) {
	store, mr := setupDetectionStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetLastSignal(ctx, "user-001", "spotify_has_likes", "track-1"))
	require.NoError(t, store.SetLastSignal(ctx, "user-001", "spotify_has_likes", ""))

	// Key exists with the sentinel value but reads the same as missing.
	assert.True(t, mr.Exists("detection:user-001:spotify_has_likes"))
	last, err := store.LastSignal(ctx, "user-001", "spotify_has_likes")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestDetectionStore_Clear(t *testing.T) {
	store, mr := setupDetectionStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetLastSignal(ctx, "user-001", "spotify_has_likes", "track-1"))
	require.NoError(t, store.Clear(ctx, "user-001", "spotify_has_likes"))
	assert.False(t, mr.Exists("detection:user-001:spotify_has_likes"))

	// Clearing twice is a no-op.
	require.NoError(t, store.Clear(ctx, "user-001", "spotify_has_likes"))
}

func TestDetectionStore_TTLExpiry(t *testing.T) {
	store, mr := setupDetectionStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SetLastSignal(ctx, "user-001", "spotify_has_likes", "track-1"))

	mr.FastForward(2 * time.Minute)

	last, err := store.LastSignal(ctx, "user-001", "spotify_has_likes")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestDetectionStore_KeysAreScopedPerUserAndAction(t *testing.T) {
	store, _ := setupDetectionStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetLastSignal(ctx, "user-001", "spotify_has_likes", "track-1"))
	require.NoError(t, store.SetLastSignal(ctx, "user-001", "github_new_star", "repo-9"))
	require.NoError(t, store.SetLastSignal(ctx, "user-002", "spotify_has_likes", "track-7"))

	last, err := store.LastSignal(ctx, "user-001", "spotify_has_likes")
	require.NoError(t, err)
	assert.Equal(t, "track-1", last)

	last, err = store.LastSignal(ctx, "user-001", "github_new_star")
	require.NoError(t, err)
	assert.Equal(t, "repo-9", last)

	last, err = store.LastSignal(ctx, "user-002", "spotify_has_likes")
	require.NoError(t, err)
	assert.Equal(t, "track-7", last)
}
