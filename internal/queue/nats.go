package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig represents NATS JetStream publisher configuration
type NATSConfig struct {
	URL      string
	Username string
	Password string
	Stream   string   // JetStream stream created on connect if missing
	Subjects []string // Subjects bound to Stream
}

// NATSPublisher publishes to NATS JetStream
type NATSPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func newNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{nats.Name("attendcast"), nats.Timeout(5 * time.Second)}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p, err := newNATSPublisherWithConn(conn, cfg.Stream, cfg.Subjects)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// newNATSPublisherWithConn wraps an existing connection and makes sure the
// result stream exists.
func newNATSPublisherWithConn(conn *nats.Conn, stream string, subjects []string) (*NATSPublisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if stream != "" {
		if _, err := js.StreamInfo(stream); err != nil {
			_, err = js.AddStream(&nats.StreamConfig{
				Name:     stream,
				Subjects: subjects,
				Storage:  nats.FileStorage,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create stream %s: %w", stream, err)
			}
		}
	}

	return &NATSPublisher{conn: conn, js: js}, nil
}

func natsMsg(msg Message) *nats.Msg {
	m := nats.NewMsg(msg.Subject)
	m.Data = msg.Data
	for k, v := range msg.Headers {
		m.Header.Set(k, v)
	}
	return m
}

// Publish publishes a message and waits for the JetStream ack
func (q *NATSPublisher) Publish(ctx context.Context, msg Message) error {
	if _, err := q.js.PublishMsg(natsMsg(msg), nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", msg.Subject, err)
	}
	return nil
}

// PublishBatch queues every message asynchronously, then waits for the acks
func (q *NATSPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		future, err := q.js.PublishMsgAsync(natsMsg(msg))
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return 0, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	acked := 0
	var lastErr error
	for _, future := range futures {
		select {
		case <-future.Ok():
			acked++
		case err := <-future.Err():
			lastErr = err
		}
	}

	if acked < len(messages) {
		if lastErr == nil {
			lastErr = fmt.Errorf("%d messages not queued", len(messages)-len(futures))
		}
		return acked, fmt.Errorf("batch publish incomplete: %w", lastErr)
	}
	return acked, nil
}

// Close drains and closes the connection
func (q *NATSPublisher) Close() error {
	if err := q.conn.Drain(); err != nil {
		q.conn.Close()
		return err
	}
	return nil
}
