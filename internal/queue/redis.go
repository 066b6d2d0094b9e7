package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password
	DB       int    // Database number (default: 0)
	Stream   string // Stream prefix (default: "attendcast")
}

// RedisPublisher publishes to Redis Streams, one stream per subject
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func newRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Stream == "" {
		cfg.Stream = "attendcast"
	}

	return &RedisPublisher{client: client, stream: cfg.Stream}, nil
}

// streamName converts a subject to a Redis stream name
func (q *RedisPublisher) streamName(subject string) string {
	return fmt.Sprintf("%s:%s", q.stream, subject)
}

func (q *RedisPublisher) xaddArgs(msg Message) *redis.XAddArgs {
	values := map[string]interface{}{"data": msg.Data}
	for k, v := range msg.Headers {
		values[k] = v
	}
	return &redis.XAddArgs{
		Stream: q.streamName(msg.Subject),
		ID:     "*",
		Values: values,
	}
}

// Publish appends a message to the subject's stream
func (q *RedisPublisher) Publish(ctx context.Context, msg Message) error {
	if err := q.client.XAdd(ctx, q.xaddArgs(msg)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", q.streamName(msg.Subject), err)
	}
	return nil
}

// PublishBatch appends every message in a single pipeline
func (q *RedisPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, q.xaddArgs(msg))
	}

	cmds, err := pipe.Exec(ctx)
	successCount := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			successCount++
		}
	}
	if err != nil {
		return successCount, fmt.Errorf("failed to execute batch publish: %w", err)
	}

	return successCount, nil
}

// Close closes the Redis connection
func (q *RedisPublisher) Close() error {
	return q.client.Close()
}
