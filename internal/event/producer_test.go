package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/kafka"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/logger"
)

type capturingPublisher struct {
	topics []string
	events []*kafka.Event
	err    error
}

func (c *capturingPublisher) Publish(_ context.Context, topic string, event *kafka.Event) error {
	c.topics = append(c.topics, topic)
	c.events = append(c.events, event)
	return c.err
}

func testProducer() (*AreaEventProducer, *capturingPublisher) {
	pub := &capturingPublisher{}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewAreaEventProducer(pub, log), pub
}

func sampleArea() *domain.Area {
	return &domain.Area{
		ID:           "area-001",
		UserID:       "user-001",
		ActionName:   "spotify_has_likes",
		ReactionName: "send_email",
		Active:       true,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAreaEventProducer_AreaCreated(t *testing.T) {
	p, pub := testProducer()

	p.AreaCreated(context.Background(), sampleArea())

	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{TopicAreaCreated}, pub.topics)

	evt := pub.events[0]
	assert.Equal(t, "area.created", evt.EventType)
	assert.Equal(t, "area-001", evt.AggregateID)
	assert.Equal(t, "area", evt.AggregateType)
	assert.Equal(t, "area-engine", evt.Source)

	var data AreaCreatedData
	require.NoError(t, evt.UnmarshalData(&data))
	assert.Equal(t, "user-001", data.UserID)
	assert.Equal(t, "spotify_has_likes", data.ActionName)
	assert.Equal(t, "send_email", data.ReactionName)
}

func TestAreaEventProducer_AreaTriggeredCarriesPayload(t *testing.T) {
	p, pub := testProducer()

	p.AreaTriggered(context.Background(), sampleArea(), "track-42")

	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{TopicAreaTriggered}, pub.topics)

	var data AreaTriggeredData
	require.NoError(t, pub.events[0].UnmarshalData(&data))
	assert.Equal(t, "track-42", data.Payload)
	assert.False(t, data.TriggeredAt.IsZero())
}

func TestAreaEventProducer_ReactionFailed(t *testing.T) {
	p, pub := testProducer()

	p.ReactionFailed(context.Background(), sampleArea(), errors.New("mailer returned 500"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{TopicReactionFailed}, pub.topics)

	var data ReactionFailedData
	require.NoError(t, pub.events[0].UnmarshalData(&data))
	assert.Equal(t, "send_email", data.ReactionName)
	assert.Contains(t, data.Error, "mailer returned 500")
}

func TestAreaEventProducer_PublishFailureIsSwallowed(t *testing.T) {
	p, pub := testProducer()
	pub.err = errors.New("broker unreachable")

	assert.NotPanics(t, func() {
		p.AreaDeactivated(context.Background(), sampleArea())
	})
}

func TestAreaEventProducer_PropagatesCorrelationID(t *testing.T) {
	p, pub := testProducer()

	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	p.AreaCreated(ctx, sampleArea())

	require.Len(t, pub.events, 1)
	assert.Equal(t, "corr-123", pub.events[0].CorrelationID)
}
