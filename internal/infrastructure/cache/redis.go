package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TaskEventsChannel carries task lifecycle events for live counters
const TaskEventsChannel = "todos.events"

// TaskEvent is the payload published on TaskEventsChannel
type TaskEvent struct {
	Event     string `json:"event"` // created, deleted, recommendation_done
	TaskID    string `json:"task_id"`
	MeetingID string `json:"meeting_id,omitempty"`
}

// RedisClient wraps the go-redis client for pub/sub and liveness
type RedisClient struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(addr, password string, db int, logger *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("✅ Connected to Redis", zap.String("addr", addr))
	}

	return &RedisClient{rdb: rdb, logger: logger}, nil
}

// PublishTaskEvent publishes a task event. Failures are logged, not
// propagated: the counter is a convenience view, not the source of truth.
func (c *RedisClient) PublishTaskEvent(ctx context.Context, event TaskEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := c.rdb.Publish(ctx, TaskEventsChannel, payload).Err(); err != nil {
		if c.logger != nil {
			c.logger.Warn("failed to publish task event",
				zap.String("event", event.Event),
				zap.Error(err),
			)
		}
	}
}

// Subscribe subscribes to a channel
func (c *RedisClient) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channel)
}

// Close closes the underlying connection
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
