package queue

import (
	"fmt"
	"strings"

	"github.com/attendcast/attendcast/internal/config"
)

// NewPublisher creates a Publisher for the configured backend. Subjects
// published through it are expected to start with subjectPrefix.
func NewPublisher(cfg config.QueueConfig, subjectPrefix string) (Publisher, error) {
	queueType := Type(strings.ToLower(cfg.Type))
	if queueType == "" {
		queueType = TypeMemory
	}

	switch queueType {
	case TypeMemory:
		return NewMemoryPublisher(), nil

	case TypeNATS:
		return newNATSPublisher(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			Stream:   streamName(subjectPrefix),
			Subjects: []string{subjectPrefix + ".>"},
		})

	case TypeRedis:
		return newRedisPublisher(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
		})

	case TypeKafka:
		return newKafkaPublisher(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
		})

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: memory, nats, redis, kafka)", queueType)
	}
}

// streamName derives a JetStream stream name from a subject prefix.
// Stream names can only contain A-Z, a-z, 0-9, dash and underscore.
func streamName(prefix string) string {
	result := make([]byte, 0, len(prefix))
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "ATTENDCAST"
	}
	return strings.ToUpper(string(result))
}
