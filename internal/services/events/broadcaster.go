package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTurnStarted   EventType = "turn.started"
	EventTypeTurnCompleted EventType = "turn.completed"
	EventTypeTurnFailed    EventType = "turn.failed"
	EventTypeTurnFarewell  EventType = "turn.farewell"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	TurnID    string         `json:"turn_id,omitempty"`
	PlayerID  string         `json:"player_id"`
	Persona   string         `json:"persona"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel returns the pub/sub channel for a player's dialogue events.
func Channel(playerID string) string {
	return fmt.Sprintf("dialogue-events:%s", playerID)
}

// Broadcaster publishes dialogue events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishTurnStarted publishes a turn.started event
func (b *Broadcaster) PublishTurnStarted(ctx context.Context, playerID, turnID, persona, userMessage string) error {
	return b.publish(ctx, Event{
		Type:     EventTypeTurnStarted,
		TurnID:   turnID,
		PlayerID: playerID,
		Persona:  persona,
		Data: map[string]any{
			"user_message": userMessage,
		},
	})
}

// PublishTurnCompleted publishes a turn.completed event
func (b *Broadcaster) PublishTurnCompleted(ctx context.Context, playerID, turnID, persona string, chunks int, imageURL string) error {
	data := map[string]any{
		"chunks": chunks,
	}
	if imageURL != "" {
		data["image_url"] = imageURL
	}
	return b.publish(ctx, Event{
		Type:     EventTypeTurnCompleted,
		TurnID:   turnID,
		PlayerID: playerID,
		Persona:  persona,
		Data:     data,
	})
}

// PublishTurnFailed publishes a turn.failed event
func (b *Broadcaster) PublishTurnFailed(ctx context.Context, playerID, turnID, persona, outcome, reason string) error {
	return b.publish(ctx, Event{
		Type:     EventTypeTurnFailed,
		TurnID:   turnID,
		PlayerID: playerID,
		Persona:  persona,
		Data: map[string]any{
			"outcome": outcome,
			"error":   reason,
		},
	})
}

// PublishFarewell publishes a turn.farewell event
func (b *Broadcaster) PublishFarewell(ctx context.Context, playerID, persona string) error {
	return b.publish(ctx, Event{
		Type:     EventTypeTurnFarewell,
		PlayerID: playerID,
		Persona:  persona,
	})
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	channel := Channel(event.PlayerID)
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"turn_id", event.TurnID,
	)

	return nil
}
