package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/domain"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/kafka"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/logger"
)

// Kafka topics for area lifecycle and execution events.
const (
	TopicAreaCreated     = "area.created"
	TopicAreaDeactivated = "area.deactivated"
	TopicAreaTriggered   = "area.triggered"
	TopicReactionFailed  = "area.reaction.failed"
)

const (
	aggregateType = "area"
	source        = "area-engine"
)

// Publisher is the producer capability this package needs from pkg/kafka.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// AreaEventProducer publishes area lifecycle and execution events. Publishing
// is best-effort: a broker outage must never fail a bind or block a poll
// loop, so failures are logged and swallowed.
type AreaEventProducer struct {
	producer Publisher
	logger   *slog.Logger
}

// NewAreaEventProducer creates an area event producer.
func NewAreaEventProducer(producer Publisher, logger *slog.Logger) *AreaEventProducer {
	return &AreaEventProducer{producer: producer, logger: logger}
}

// AreaCreatedData is the payload of area.created events.
type AreaCreatedData struct {
	AreaID       string `json:"area_id"`
	UserID       string `json:"user_id"`
	ActionName   string `json:"action_name"`
	ReactionName string `json:"reaction_name"`
}

// AreaDeactivatedData is the payload of area.deactivated events.
type AreaDeactivatedData struct {
	AreaID string `json:"area_id"`
	UserID string `json:"user_id"`
}

// AreaTriggeredData is the payload of area.triggered events.
type AreaTriggeredData struct {
	AreaID       string    `json:"area_id"`
	UserID       string    `json:"user_id"`
	ActionName   string    `json:"action_name"`
	ReactionName string    `json:"reaction_name"`
	Payload      string    `json:"payload"`
	TriggeredAt  time.Time `json:"triggered_at"`
}

// ReactionFailedData is the payload of area.reaction.failed events.
type ReactionFailedData struct {
	AreaID       string `json:"area_id"`
	UserID       string `json:"user_id"`
	ReactionName string `json:"reaction_name"`
	Error        string `json:"error"`
}

// AreaCreated publishes an area.created event.
func (p *AreaEventProducer) AreaCreated(ctx context.Context, area *domain.Area) {
	p.publish(ctx, TopicAreaCreated, "area.created", area.ID, AreaCreatedData{
		AreaID:       area.ID,
		UserID:       area.UserID,
		ActionName:   area.ActionName,
		ReactionName: area.ReactionName,
	})
}

// AreaDeactivated publishes an area.deactivated event.
func (p *AreaEventProducer) AreaDeactivated(ctx context.Context, area *domain.Area) {
	p.publish(ctx, TopicAreaDeactivated, "area.deactivated", area.ID, AreaDeactivatedData{
		AreaID: area.ID,
		UserID: area.UserID,
	})
}

// AreaTriggered publishes an area.triggered event carrying the payload that
// fired.
func (p *AreaEventProducer) AreaTriggered(ctx context.Context, area *domain.Area, payload string) {
	p.publish(ctx, TopicAreaTriggered, "area.triggered", area.ID, AreaTriggeredData{
		AreaID:       area.ID,
		UserID:       area.UserID,
		ActionName:   area.ActionName,
		ReactionName: area.ReactionName,
		Payload:      payload,
		TriggeredAt:  time.Now().UTC(),
	})
}

// ReactionFailed publishes an area.reaction.failed event.
func (p *AreaEventProducer) ReactionFailed(ctx context.Context, area *domain.Area, reactionErr error) {
	p.publish(ctx, TopicReactionFailed, "area.reaction.failed", area.ID, ReactionFailedData{
		AreaID:       area.ID,
		UserID:       area.UserID,
		ReactionName: area.ReactionName,
		Error:        reactionErr.Error(),
	})
}

func (p *AreaEventProducer) publish(ctx context.Context, topic, eventType, areaID string, data any) {
	evt, err := kafka.NewEvent(eventType, areaID, aggregateType, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
