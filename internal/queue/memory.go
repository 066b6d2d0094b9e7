package queue

import (
	"context"
	"fmt"
	"sync"
)

// MemoryPublisher keeps published messages in memory, grouped by subject.
// It backs the default configuration and tests.
type MemoryPublisher struct {
	messages map[string][]Message
	closed   bool
	mu       sync.RWMutex
}

// NewMemoryPublisher creates an empty in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{
		messages: make(map[string][]Message),
	}
}

// Publish stores a copy of the message
func (q *MemoryPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("publisher closed")
	}

	data := make([]byte, len(msg.Data))
	copy(data, msg.Data)

	var headers map[string]string
	if len(msg.Headers) > 0 {
		headers = make(map[string]string, len(msg.Headers))
		for k, v := range msg.Headers {
			headers[k] = v
		}
	}

	q.messages[msg.Subject] = append(q.messages[msg.Subject], Message{
		Subject: msg.Subject,
		Data:    data,
		Headers: headers,
	})
	return nil
}

// PublishBatch stores every message, stopping at the first failure
func (q *MemoryPublisher) PublishBatch(ctx context.Context, messages []Message) (int, error) {
	for i, msg := range messages {
		if err := q.Publish(ctx, msg); err != nil {
			return i, err
		}
	}
	return len(messages), nil
}

// Messages returns the messages published to a subject, in order
func (q *MemoryPublisher) Messages(subject string) []Message {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Message, len(q.messages[subject]))
	copy(out, q.messages[subject])
	return out
}

// Subjects returns the number of distinct subjects published to
func (q *MemoryPublisher) Subjects() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.messages)
}

// Close rejects further publishes
func (q *MemoryPublisher) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
