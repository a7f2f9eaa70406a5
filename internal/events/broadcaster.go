package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	"github.com/jwebster45206/dialogue-engine/pkg/runner"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeNodeEntered      EventType = "dialogue.node_entered"
	EventTypeOptionsAvailable EventType = "dialogue.options"
	EventTypeEnded            EventType = "dialogue.ended"
)

// Event represents a generic event structure
type Event struct {
	Type           EventType      `json:"type"`
	ConversationID string         `json:"conversation_id"`
	Data           map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes runner notifications to Redis Pub/Sub so other
// processes can follow a conversation. It is a runner.Presenter; publish
// failures are logged and never reach the runner.
type Broadcaster struct {
	ctx            context.Context
	redisClient    *redis.Client
	conversationID uuid.UUID
	logger         *slog.Logger
}

var _ runner.Presenter = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster for one conversation
func NewBroadcaster(ctx context.Context, redisClient *redis.Client, conversationID uuid.UUID, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		ctx:            ctx,
		redisClient:    redisClient,
		conversationID: conversationID,
		logger:         logger,
	}
}

// Channel returns the Pub/Sub channel for a conversation
func Channel(conversationID uuid.UUID) string {
	return fmt.Sprintf("dialogue-events:%s", conversationID.String())
}

// NodeEntered publishes dialogue.node_entered, or dialogue.ended for nil
func (b *Broadcaster) NodeEntered(node *dialogue.Node) {
	if node == nil {
		_ = b.publish(Event{Type: EventTypeEnded})
		return
	}
	_ = b.publish(Event{
		Type: EventTypeNodeEntered,
		Data: map[string]any{
			"guid":    node.GUID,
			"speaker": node.Speaker,
			"line":    node.Line,
		},
	})
}

// OptionsAvailable publishes dialogue.options
func (b *Broadcaster) OptionsAvailable(labels []string) {
	_ = b.publish(Event{
		Type: EventTypeOptionsAvailable,
		Data: map[string]any{
			"options": labels,
			"closing": len(labels) == 0,
		},
	})
}

func (b *Broadcaster) publish(event Event) error {
	event.ConversationID = b.conversationID.String()
	channel := Channel(b.conversationID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(b.ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
