package commitment

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/shared/domain"
)

const (
	AggregateType = "Commitment"

	RoutingKeyCreated     = "commitments.commitment.created"
	RoutingKeyCompleted   = "commitments.commitment.completed"
	RoutingKeySnoozed     = "commitments.commitment.snoozed"
	RoutingKeyRescheduled = "commitments.commitment.rescheduled"
)

// CommitmentCreated is emitted when a promise is recorded.
type CommitmentCreated struct {
	domain.BaseEvent
	UserID        string     `json:"user_id"`
	Who           string     `json:"who"`
	What          string     `json:"what"`
	Deadline      time.Time  `json:"deadline"`
	ForwardedFrom *uuid.UUID `json:"forwarded_from,omitempty"`
}

// NewCommitmentCreated creates a CommitmentCreated event.
func NewCommitmentCreated(c *Commitment, forwardedFrom *uuid.UUID) *CommitmentCreated {
	return &CommitmentCreated{
		BaseEvent:     domain.NewBaseEvent(c.ID(), AggregateType, RoutingKeyCreated, c.CreatedAt()),
		UserID:        c.userID,
		Who:           c.who,
		What:          c.what,
		Deadline:      c.deadline,
		ForwardedFrom: forwardedFrom,
	}
}

// CommitmentCompleted is emitted when a promise is kept.
type CommitmentCompleted struct {
	domain.BaseEvent
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
	Late        bool      `json:"late"`
}

// NewCommitmentCompleted creates a CommitmentCompleted event.
func NewCommitmentCompleted(id uuid.UUID, userID string, at time.Time, late bool) *CommitmentCompleted {
	return &CommitmentCompleted{
		BaseEvent:   domain.NewBaseEvent(id, AggregateType, RoutingKeyCompleted, at),
		UserID:      userID,
		CompletedAt: at,
		Late:        late,
	}
}

// CommitmentSnoozed is emitted when a pending promise is postponed.
type CommitmentSnoozed struct {
	domain.BaseEvent
	UserID      string    `json:"user_id"`
	SnoozeCount int       `json:"snooze_count"`
	Deadline    time.Time `json:"deadline"`
}

// NewCommitmentSnoozed creates a CommitmentSnoozed event.
func NewCommitmentSnoozed(id uuid.UUID, userID string, count int, deadline, at time.Time) *CommitmentSnoozed {
	return &CommitmentSnoozed{
		BaseEvent:   domain.NewBaseEvent(id, AggregateType, RoutingKeySnoozed, at),
		UserID:      userID,
		SnoozeCount: count,
		Deadline:    deadline,
	}
}

// CommitmentRescheduled is emitted when a promise is closed and forwarded.
type CommitmentRescheduled struct {
	domain.BaseEvent
	UserID        string    `json:"user_id"`
	NewID         uuid.UUID `json:"new_id"`
	RescheduledTo time.Time `json:"rescheduled_to"`
	Reason        string    `json:"reason,omitempty"`
}

// NewCommitmentRescheduled creates a CommitmentRescheduled event.
func NewCommitmentRescheduled(id uuid.UUID, userID string, newID uuid.UUID, to time.Time, reason string, at time.Time) *CommitmentRescheduled {
	return &CommitmentRescheduled{
		BaseEvent:     domain.NewBaseEvent(id, AggregateType, RoutingKeyRescheduled, at),
		UserID:        userID,
		NewID:         newID,
		RescheduledTo: to,
		Reason:        reason,
	}
}
