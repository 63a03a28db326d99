// Package trust records the audit trail that accountability reporting reads.
package trust

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/shared/domain"
)

// EventType classifies a trust event.
type EventType string

const (
	EventChased                EventType = "chased"
	EventCommitmentKept        EventType = "commitment_kept"
	EventCommitmentRescheduled EventType = "commitment_rescheduled"
)

// ParseEventType validates a requested event type.
func ParseEventType(s string) (EventType, error) {
	s = strings.TrimSpace(s)
	switch EventType(s) {
	case EventChased, EventCommitmentKept, EventCommitmentRescheduled:
		return EventType(s), nil
	case "":
		return "", commitment.NewValidationError("event type is required")
	default:
		return "", commitment.NewValidationError("unknown event type %q", s)
	}
}

func (t EventType) String() string { return string(t) }

const (
	AggregateType = "TrustEvent"

	RoutingKeyLogged = "commitments.trust.event_logged"
)

// EventLogged is emitted for every appended trust event.
type EventLogged struct {
	domain.BaseEvent
	UserID       string     `json:"user_id"`
	EventType    string     `json:"event_type"`
	CommitmentID *uuid.UUID `json:"commitment_id,omitempty"`
	Details      string     `json:"details,omitempty"`
}

// Event is an immutable audit record. It is appended once and never changed.
type Event struct {
	domain.BaseAggregateRoot
	userID       string
	eventType    EventType
	commitmentID *uuid.UUID
	eventDate    time.Time
	details      string
}

// NewEvent records an event of type t at the given instant.
func NewEvent(userID string, t EventType, commitmentID *uuid.UUID, details string, at time.Time) (*Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, commitment.NewValidationError("owner is required")
	}
	if _, err := ParseEventType(string(t)); err != nil {
		return nil, err
	}

	e := &Event{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(at)),
		userID:            userID,
		eventType:         t,
		commitmentID:      commitmentID,
		eventDate:         at.UTC(),
		details:           strings.TrimSpace(details),
	}
	e.AddDomainEvent(&EventLogged{
		BaseEvent:    domain.NewBaseEvent(e.ID(), AggregateType, RoutingKeyLogged, at),
		UserID:       userID,
		EventType:    t.String(),
		CommitmentID: commitmentID,
		Details:      e.details,
	})
	return e, nil
}

// Kept records that c was completed.
func Kept(c *commitment.Commitment, at time.Time) *Event {
	id := c.ID()
	e, _ := NewEvent(c.UserID(), EventCommitmentKept, &id, "", at)
	return e
}

// Rescheduled records that c was forwarded, with the reason as details.
func Rescheduled(c *commitment.Commitment, at time.Time) *Event {
	id := c.ID()
	e, _ := NewEvent(c.UserID(), EventCommitmentRescheduled, &id, c.RescheduledReason(), at)
	return e
}

func (e *Event) UserID() string           { return e.userID }
func (e *Event) Type() EventType          { return e.eventType }
func (e *Event) CommitmentID() *uuid.UUID { return e.commitmentID }
func (e *Event) EventDate() time.Time     { return e.eventDate }
func (e *Event) Details() string          { return e.details }

// Rehydrate rebuilds an event from storage.
func Rehydrate(id uuid.UUID, userID string, t EventType, commitmentID *uuid.UUID, at time.Time, details string) *Event {
	return &Event{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.RehydrateBaseEntity(id, at, at)),
		userID:            userID,
		eventType:         t,
		commitmentID:      commitmentID,
		eventDate:         at,
		details:           details,
	}
}

// Repository is the append-only event log.
type Repository interface {
	Append(ctx context.Context, e *Event) error

	// LatestOfType returns the owner's most recent event of type t, or nil.
	LatestOfType(ctx context.Context, userID string, t EventType) (*Event, error)

	// ListSince returns the owner's events at or after since, oldest first.
	ListSince(ctx context.Context, userID string, since time.Time) ([]*Event, error)
}
