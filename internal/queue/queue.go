// Package queue publishes forecast results to a message broker.
package queue

import "context"

// Type names a publisher backend
type Type string

const (
	TypeMemory Type = "memory"
	TypeNATS   Type = "nats"
	TypeRedis  Type = "redis"
	TypeKafka  Type = "kafka"
)

// HeaderContentEncoding carries the payload compression of a message
const HeaderContentEncoding = "Content-Encoding"

// Message is a single payload bound for a subject/topic
type Message struct {
	Subject string
	Data    []byte
	Headers map[string]string
}

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a single message
	Publish(ctx context.Context, msg Message) error

	// PublishBatch publishes the messages and waits for all of them.
	// It returns the number of messages accepted by the broker.
	PublishBatch(ctx context.Context, messages []Message) (int, error)

	// Close releases the connection
	Close() error
}
