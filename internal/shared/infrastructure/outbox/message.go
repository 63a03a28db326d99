package outbox

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/vouch/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is a domain event persisted in the same transaction as the state
// change that raised it, waiting to be published.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	RetryCount       int
	NextRetryAt      *time.Time
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage serializes a domain event into an outbox message.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(event.Metadata())
	if err != nil {
		return nil, err
	}
	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages converts a batch of events, failing on the first that cannot be serialized.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// CorrelationID returns the correlation ID recorded in the metadata, if any.
func (m *Message) CorrelationID() string {
	var md domain.EventMetadata
	if len(m.Metadata) == 0 || json.Unmarshal(m.Metadata, &md) != nil || md.CorrelationID == uuid.Nil {
		return ""
	}
	return md.CorrelationID.String()
}

// IsPublished returns true once the message has been delivered.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}
