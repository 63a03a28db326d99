package commitment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WeekStats counts the commitments created since the start of the week.
type WeekStats struct {
	Total       int
	Kept        int
	Rescheduled int
	Broken      int
}

// WhoCount is how many overdue promises are owed to one person.
type WhoCount struct {
	Who   string
	Count int
}

// Repository defines the interface for commitment persistence.
type Repository interface {
	Insert(ctx context.Context, c *Commitment) error

	// FindByID returns ErrCommitmentNotFound unless id belongs to userID.
	FindByID(ctx context.Context, id uuid.UUID, userID string) (*Commitment, error)

	// ListByOwner returns the owner's commitments, latest deadline first.
	ListByOwner(ctx context.Context, userID string) ([]*Commitment, error)

	// UpdateIf writes c only while the stored row still matches guard. It
	// reports false, without error, when another transition got there first.
	UpdateIf(ctx context.Context, c *Commitment, guard Guard) (bool, error)

	// LockOwner serialises the owner's policy checks with other writers
	// until the surrounding transaction ends.
	LockOwner(ctx context.Context, userID string) error

	// CountOverdue counts pending commitments with deadline <= now.
	CountOverdue(ctx context.Context, userID string, now time.Time) (int, error)

	// WeekStats aggregates commitments created at or after since.
	WeekStats(ctx context.Context, userID string, since, now time.Time) (WeekStats, error)

	// TopOverdueWho ranks people by overdue promises, ties by name.
	TopOverdueWho(ctx context.Context, userID string, now time.Time, limit int) ([]WhoCount, error)
}
