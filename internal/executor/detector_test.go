package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/credential"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/crypto"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider"
	redisrepo "github.com/HexaTeam-By-Epitech/area-sub002/internal/repository/redis"
)

type fakeIdentity struct {
	key  string
	pair domain.TokenPair
	err  error
}

func (f *fakeIdentity) Key() string { return f.key }

func (f *fakeIdentity) Refresh(context.Context, string) (domain.TokenPair, error) {
	if f.err != nil {
		return domain.TokenPair{}, f.err
	}
	return f.pair, nil
}

type detectorFixture struct {
	detector    *Detector
	detections  *redisrepo.DetectionStore
	credentials *redisrepo.CredentialStore
	cipher      *crypto.TokenCipher
	identity    *fakeIdentity
}

func newDetectorFixture(t *testing.T) *detectorFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cipher, err := crypto.NewTokenCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	identity := &fakeIdentity{key: "spotify", pair: domain.TokenPair{AccessToken: "refreshed"}}
	credentials := redisrepo.NewCredentialStore(client)
	detections := redisrepo.NewDetectionStore(client, 0)
	resolver := credential.NewResolver(credentials, provider.NewRegistry(provider.Entry{Identity: identity}), cipher)

	return &detectorFixture{
		detector:    NewDetector(detections, resolver),
		detections:  detections,
		credentials: credentials,
		cipher:      cipher,
		identity:    identity,
	}
}

func (f *detectorFixture) linkSpotify(t *testing.T, userID string) {
	t.Helper()
	access, err := f.cipher.Encrypt("live-access")
	require.NoError(t, err)
	refresh, err := f.cipher.Encrypt("live-refresh")
	require.NoError(t, err)
	require.NoError(t, f.credentials.Save(context.Background(), &domain.Credential{
		UserID:       userID,
		Provider:     "spotify",
		AccessToken:  access,
		RefreshToken: refresh,
	}))
}

func testArea() *domain.Area {
	return &domain.Area{
		ID:           "area-001",
		UserID:       "user-001",
		ActionName:   "spotify_has_likes",
		ReactionName: "post_webhook",
		Active:       true,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// scriptedFetch replays a fixed sequence of (id, err) observations.
type scriptedFetch struct {
	ids  []string
	errs []error
	i    int
}

func (s *scriptedFetch) fetch(context.Context, string) (string, error) {
	id := s.ids[s.i]
	var err error
	if s.errs != nil {
		err = s.errs[s.i]
	}
	s.i++
	return id, err
}

func TestDetector_EdgeDetectionSequence(t *testing.T) {
	f := newDetectorFixture(t)
	f.linkSpotify(t, "user-001")
	area := testArea()

	script := &scriptedFetch{ids: []string{"a", "a", "b", "b", "b", "c"}}

	want := []domain.Signal{
		domain.Triggered("a"),
		domain.Unchanged(),
		domain.Triggered("b"),
		domain.Unchanged(),
		domain.Unchanged(),
		domain.Triggered("c"),
	}
	for i, expected := range want {
		sig, err := f.detector.Detect(context.Background(), area, "spotify", script.fetch)
		require.NoError(t, err, "poll %d", i)
		assert.Equal(t, expected, sig, "poll %d", i)
	}
}

func TestDetector_NoLinkedAccountIsSignalNotError(t *testing.T) {
	f := newDetectorFixture(t)
	area := testArea()

	sig, err := f.detector.Detect(context.Background(), area, "spotify",
		func(context.Context, string) (string, error) { return "a", nil })
	require.NoError(t, err)
	assert.Equal(t, domain.NoAccount(), sig)

	// No state was written for the unlinked user.
	last, err := f.detections.LastSignal(context.Background(), "user-001", "spotify_has_likes")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestDetector_EmptyListResetsState(t *testing.T) {
	f := newDetectorFixture(t)
	f.linkSpotify(t, "user-001")
	area := testArea()

	script := &scriptedFetch{ids: []string{"a", "", "a"}}

	sig, err := f.detector.Detect(context.Background(), area, "spotify", script.fetch)
	require.NoError(t, err)
	assert.Equal(t, domain.Triggered("a"), sig)

	// The list emptied: unchanged, but the memory of "a" is gone.
	sig, err = f.detector.Detect(context.Background(), area, "spotify", script.fetch)
	require.NoError(t, err)
	assert.Equal(t, domain.Unchanged(), sig)

	// Re-adding the same item reads as a fresh edge.
	sig, err = f.detector.Detect(context.Background(), area, "spotify", script.fetch)
	require.NoError(t, err)
	assert.Equal(t, domain.Triggered("a"), sig)
}

func TestDetector_EmptyListOnFirstPollStaysQuiet(t *testing.T) {
	f := newDetectorFixture(t)
	f.linkSpotify(t, "user-001")
	area := testArea()

	sig, err := f.detector.Detect(context.Background(), area, "spotify",
		func(context.Context, string) (string, error) { return "", nil })
	require.NoError(t, err)
	assert.Equal(t, domain.Unchanged(), sig)
}

func TestDetector_UnobtainableIDLeavesStateAlone(t *testing.T) {
	f := newDetectorFixture(t)
	f.linkSpotify(t, "user-001")
	area := testArea()

	script := &scriptedFetch{
		ids:  []string{"a", "", "a"},
		errs: []error{nil, ErrUnobtainableID, nil},
	}

	sig, err := f.detector.Detect(context.Background(), area, "spotify", script.fetch)
	require.NoError(t, err)
	assert.Equal(t, domain.Triggered("a"), sig)

	sig, err = f.detector.Detect(context.Background(), area, "spotify", script.fetch)
	require.NoError(t, err)
	assert.Equal(t, domain.Unchanged(), sig)

	// State survived the bad poll, so the same id stays unchanged.
	sig, err = f.detector.Detect(context.Background(), area, "spotify", script.fetch)
	require.NoError(t, err)
	assert.Equal(t, domain.Unchanged(), sig)
}

func TestDetector_FetchErrorPropagates(t *testing.T) {
	f := newDetectorFixture(t)
	f.linkSpotify(t, "user-001")
	area := testArea()

	upstream := errors.New("connection reset")
	sig, err := f.detector.Detect(context.Background(), area, "spotify",
		func(context.Context, string) (string, error) { return "", upstream })
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, domain.Unchanged(), sig)
}
