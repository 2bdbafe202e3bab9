package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/models"
)

// StreamAdder is the subset of the redis client used for publishing
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisPublisher appends each event to a Redis stream
type RedisPublisher struct {
	client StreamAdder
	stream string
}

// NewRedisClient creates a client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisPublisher creates a stream publisher
func NewRedisPublisher(client StreamAdder, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Name implements Notifier
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Notify implements Notifier
func (p *RedisPublisher) Notify(ctx context.Context, event *models.NormalizedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": event.MatchID,
			"status":   event.Status,
		},
	}).Err()
}
