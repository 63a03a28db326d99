package eventbus

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is a domain event on its way to the broker.
type Envelope struct {
	MessageID     uuid.UUID
	RoutingKey    string
	CorrelationID string
	OccurredAt    time.Time
	Payload       []byte
}

// Publisher sends envelopes to a message broker.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Handler reacts to an envelope delivered in process.
type Handler func(ctx context.Context, env Envelope) error

// Matches reports whether routingKey matches an AMQP topic pattern,
// where * matches exactly one word and # matches zero or more.
func Matches(pattern, routingKey string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(routingKey, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
