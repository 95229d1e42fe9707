package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventRepository pushes moderation events onto a Redis list for downstream consumers.
type EventRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewEventRepository constructs an event repository. A nil client turns Push into a logged no-op.
func NewEventRepository(client *redis.Client, key string, logger *zap.Logger) *EventRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = "materials:events"
	}
	return &EventRepository{client: client, key: key, logger: logger}
}

// Push marshals the event and prepends it to the configured list.
func (r *EventRepository) Push(ctx context.Context, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if r.client == nil {
		r.logger.Debug("event publisher disabled", zap.ByteString("event", payload))
		return nil
	}
	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush %s: %w", r.key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *EventRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
