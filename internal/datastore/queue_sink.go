package datastore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attendcast/attendcast/internal/analytics/forecast"
	"github.com/attendcast/attendcast/internal/compression"
	"github.com/attendcast/attendcast/internal/queue"
	"github.com/attendcast/attendcast/internal/services"
)

// ErrorsMessage is the payload published per school on <prefix>.errors
type ErrorsMessage struct {
	RunID         string                 `json:"run_id"`
	ApplicationID string                 `json:"application_id"`
	Rows          []forecast.ErrorRecord `json:"rows"`
}

// ForecastsMessage is the payload published per school on <prefix>.forecasts
type ForecastsMessage struct {
	RunID         string                   `json:"run_id"`
	ApplicationID string                   `json:"application_id"`
	Rows          []forecast.ForecastPoint `json:"rows"`
}

// QueueSink publishes one errors and one forecasts message per school
type QueueSink struct {
	publisher  queue.Publisher
	prefix     string
	compressor compression.Compressor
}

// NewQueueSink creates a QueueSink. codec is a compression algorithm name.
func NewQueueSink(publisher queue.Publisher, prefix, codec string) (*QueueSink, error) {
	compressor, err := compression.ForName(codec)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "attendcast"
	}
	return &QueueSink{publisher: publisher, prefix: prefix, compressor: compressor}, nil
}

// ErrorsSubject returns the subject of the error table messages
func (s *QueueSink) ErrorsSubject() string { return s.prefix + ".errors" }

// ForecastsSubject returns the subject of the forecast table messages
func (s *QueueSink) ForecastsSubject() string { return s.prefix + ".forecasts" }

// WriteResults publishes the run as one batch
func (s *QueueSink) WriteResults(ctx context.Context, result *services.RunResult) error {
	var messages []queue.Message

	for _, group := range groupErrors(result.Errors) {
		msg, err := s.encode(s.ErrorsSubject(), ErrorsMessage{
			RunID:         result.RunID,
			ApplicationID: group[0].EntityID,
			Rows:          group,
		})
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	for _, group := range groupForecasts(result.Forecasts) {
		msg, err := s.encode(s.ForecastsSubject(), ForecastsMessage{
			RunID:         result.RunID,
			ApplicationID: group[0].EntityID,
			Rows:          group,
		})
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		return nil
	}

	n, err := s.publisher.PublishBatch(ctx, messages)
	if err != nil {
		return fmt.Errorf("published %d of %d messages: %w", n, len(messages), err)
	}
	return nil
}

func (s *QueueSink) encode(subject string, payload interface{}) (queue.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return queue.Message{}, fmt.Errorf("failed to encode %s message: %w", subject, err)
	}

	data, err = s.compressor.Compress(data)
	if err != nil {
		return queue.Message{}, err
	}

	return queue.Message{
		Subject: subject,
		Data:    data,
		Headers: map[string]string{
			queue.HeaderContentEncoding: string(s.compressor.Algorithm()),
			"Content-Type":              "application/json",
		},
	}, nil
}

// Close closes the publisher
func (s *QueueSink) Close() error {
	return s.publisher.Close()
}

// DecodeMessage reverses the sink's encoding of a published message
func DecodeMessage(msg queue.Message, v interface{}) error {
	compressor, err := compression.ForName(msg.Headers[queue.HeaderContentEncoding])
	if err != nil {
		return err
	}
	data, err := compressor.Decompress(msg.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// groupErrors splits rows into runs of equal application id
func groupErrors(rows []forecast.ErrorRecord) [][]forecast.ErrorRecord {
	var groups [][]forecast.ErrorRecord
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].EntityID == rows[start].EntityID {
			end++
		}
		groups = append(groups, rows[start:end])
		start = end
	}
	return groups
}

// groupForecasts splits rows into runs of equal application id
func groupForecasts(rows []forecast.ForecastPoint) [][]forecast.ForecastPoint {
	var groups [][]forecast.ForecastPoint
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].EntityID == rows[start].EntityID {
			end++
		}
		groups = append(groups, rows[start:end])
		start = end
	}
	return groups
}
