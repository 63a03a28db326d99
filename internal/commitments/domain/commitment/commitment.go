// Package commitment holds the promise aggregate and its lifecycle rules.
package commitment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/shared/domain"
)

const (
	// MaxSnoozes caps how often a single commitment can be postponed.
	MaxSnoozes = 2

	// SnoozeInterval is how far a snooze moves the deadline.
	SnoozeInterval = time.Hour
)

// Commitment is a promise to do what for who by deadline.
type Commitment struct {
	domain.BaseAggregateRoot
	userID            string
	who               string
	what              string
	deadline          time.Time
	status            Status
	snoozeCount       int
	lastSnoozedAt     *time.Time
	completedAt       *time.Time
	rescheduledAt     *time.Time
	rescheduledTo     *time.Time
	rescheduledReason string
}

// New creates a pending commitment.
func New(userID, who, what string, deadline, now time.Time) (*Commitment, error) {
	c, err := newPending(userID, who, what, deadline, now)
	if err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCommitmentCreated(c, nil))
	return c, nil
}

func newPending(userID, who, what string, deadline, now time.Time) (*Commitment, error) {
	userID = strings.TrimSpace(userID)
	who = strings.TrimSpace(who)
	what = strings.TrimSpace(what)

	switch {
	case userID == "":
		return nil, NewValidationError("owner is required")
	case who == "":
		return nil, NewValidationError("who is required")
	case what == "":
		return nil, NewValidationError("what is required")
	case deadline.IsZero():
		return nil, NewValidationError("when is required")
	}

	return &Commitment{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(now)),
		userID:            userID,
		who:               who,
		what:              what,
		deadline:          deadline.UTC(),
		status:            StatusPending,
	}, nil
}

// Getters

func (c *Commitment) UserID() string            { return c.userID }
func (c *Commitment) Who() string               { return c.who }
func (c *Commitment) What() string              { return c.what }
func (c *Commitment) Deadline() time.Time       { return c.deadline }
func (c *Commitment) Status() Status            { return c.status }
func (c *Commitment) SnoozeCount() int          { return c.snoozeCount }
func (c *Commitment) LastSnoozedAt() *time.Time { return c.lastSnoozedAt }
func (c *Commitment) CompletedAt() *time.Time   { return c.completedAt }
func (c *Commitment) RescheduledAt() *time.Time { return c.rescheduledAt }
func (c *Commitment) RescheduledTo() *time.Time { return c.rescheduledTo }
func (c *Commitment) RescheduledReason() string { return c.rescheduledReason }
func (c *Commitment) IsPending() bool           { return c.status == StatusPending }
func (c *Commitment) CanSnooze() bool           { return c.IsPending() && c.snoozeCount < MaxSnoozes }

// IsOverdue reports whether the commitment is still pending at or after its deadline.
func (c *Commitment) IsOverdue(now time.Time) bool {
	return c.IsPending() && !c.deadline.After(now)
}

// Guard captures the state a conditional update must still find in storage.
type Guard struct {
	Status      Status
	SnoozeCount int
}

// Guard returns the current state as an update precondition. Take it before
// applying a transition.
func (c *Commitment) Guard() Guard {
	return Guard{Status: c.status, SnoozeCount: c.snoozeCount}
}

// Complete marks the promise as kept.
func (c *Commitment) Complete(now time.Time) error {
	if err := c.requirePending("complete"); err != nil {
		return err
	}

	at := now.UTC()
	c.status = StatusCompleted
	c.completedAt = &at
	c.Touch(now)

	c.AddDomainEvent(NewCommitmentCompleted(c.ID(), c.userID, at, c.deadline.Before(at)))
	return nil
}

// Snooze postpones the deadline by SnoozeInterval, at most MaxSnoozes times.
func (c *Commitment) Snooze(now time.Time) error {
	if err := c.requirePending("snooze"); err != nil {
		return err
	}
	if c.snoozeCount >= MaxSnoozes {
		return &IllegalTransitionError{ID: c.ID(), Op: "snooze", Status: c.status, Reason: "maximum snoozes reached"}
	}

	at := now.UTC()
	c.snoozeCount++
	c.lastSnoozedAt = &at
	c.deadline = c.deadline.Add(SnoozeInterval)
	c.Touch(now)

	c.AddDomainEvent(NewCommitmentSnoozed(c.ID(), c.userID, c.snoozeCount, c.deadline, at))
	return nil
}

// Reschedule closes the commitment and returns the pending commitment that
// carries the same promise forward to the new deadline.
func (c *Commitment) Reschedule(to time.Time, reason string, now time.Time) (*Commitment, error) {
	if err := c.requirePending("reschedule"); err != nil {
		return nil, err
	}

	next, err := newPending(c.userID, c.who, c.what, to, now)
	if err != nil {
		return nil, err
	}

	at := now.UTC()
	target := to.UTC()
	c.status = StatusRescheduled
	c.rescheduledAt = &at
	c.rescheduledTo = &target
	c.rescheduledReason = strings.TrimSpace(reason)
	c.Touch(now)

	origin := c.ID()
	c.AddDomainEvent(NewCommitmentRescheduled(c.ID(), c.userID, next.ID(), target, c.rescheduledReason, at))
	next.AddDomainEvent(NewCommitmentCreated(next, &origin))
	return next, nil
}

func (c *Commitment) requirePending(op string) error {
	if c.IsPending() {
		return nil
	}
	return &IllegalTransitionError{ID: c.ID(), Op: op, Status: c.status}
}

// Snapshot is the persisted form of a commitment.
type Snapshot struct {
	ID                uuid.UUID
	UserID            string
	Who               string
	What              string
	Deadline          time.Time
	Status            Status
	SnoozeCount       int
	LastSnoozedAt     *time.Time
	CompletedAt       *time.Time
	RescheduledAt     *time.Time
	RescheduledTo     *time.Time
	RescheduledReason string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot exports the state for persistence.
func (c *Commitment) Snapshot() Snapshot {
	return Snapshot{
		ID:                c.ID(),
		UserID:            c.userID,
		Who:               c.who,
		What:              c.what,
		Deadline:          c.deadline,
		Status:            c.status,
		SnoozeCount:       c.snoozeCount,
		LastSnoozedAt:     c.lastSnoozedAt,
		CompletedAt:       c.completedAt,
		RescheduledAt:     c.rescheduledAt,
		RescheduledTo:     c.rescheduledTo,
		RescheduledReason: c.rescheduledReason,
		CreatedAt:         c.CreatedAt(),
		UpdatedAt:         c.UpdatedAt(),
	}
}

// Rehydrate rebuilds a commitment from persisted state without raising events.
func Rehydrate(s Snapshot) *Commitment {
	return &Commitment{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt)),
		userID:            s.UserID,
		who:               s.Who,
		what:              s.What,
		deadline:          s.Deadline,
		status:            s.Status,
		snoozeCount:       s.SnoozeCount,
		lastSnoozedAt:     s.LastSnoozedAt,
		completedAt:       s.CompletedAt,
		rescheduledAt:     s.RescheduledAt,
		rescheduledTo:     s.RescheduledTo,
		rescheduledReason: s.RescheduledReason,
	}
}
