// Package persistence stores commitments and trust events through the shared
// database connection. The same SQL serves SQLite and PostgreSQL.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
)

// CommitmentRepository implements commitment.Repository.
type CommitmentRepository struct {
	conn    database.Connection
	dialect database.Dialect
}

// NewCommitmentRepository creates a repository on conn.
func NewCommitmentRepository(conn database.Connection) *CommitmentRepository {
	return &CommitmentRepository{conn: conn, dialect: database.DialectFor(conn.Driver())}
}

var _ commitment.Repository = (*CommitmentRepository)(nil)

const commitmentColumns = `id, user_id, who, what, deadline, status, snooze_count, last_snoozed_at,
	completed_at, rescheduled_at, rescheduled_to, rescheduled_reason, created_at, updated_at`

const insertCommitment = `
	INSERT INTO commitments (` + commitmentColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *CommitmentRepository) Insert(ctx context.Context, c *commitment.Commitment) error {
	s := c.Snapshot()
	_, err := r.exec(ctx).Exec(ctx, r.dialect.Rebind(insertCommitment),
		s.ID,
		s.UserID,
		s.Who,
		s.What,
		r.dialect.Time(s.Deadline),
		s.Status.String(),
		s.SnoozeCount,
		r.dialect.NullTime(s.LastSnoozedAt),
		r.dialect.NullTime(s.CompletedAt),
		r.dialect.NullTime(s.RescheduledAt),
		r.dialect.NullTime(s.RescheduledTo),
		nullString(s.RescheduledReason),
		r.dialect.Time(s.CreatedAt),
		r.dialect.Time(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert commitment: %w", err)
	}
	return nil
}

func (r *CommitmentRepository) FindByID(ctx context.Context, id uuid.UUID, userID string) (*commitment.Commitment, error) {
	query := `SELECT ` + commitmentColumns + ` FROM commitments WHERE id = ? AND user_id = ?`
	row := r.exec(ctx).QueryRow(ctx, r.dialect.Rebind(query), id, userID)

	c, err := scanCommitment(row)
	if database.IsNoRows(err) {
		return nil, &commitment.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find commitment: %w", err)
	}
	return c, nil
}

func (r *CommitmentRepository) ListByOwner(ctx context.Context, userID string) ([]*commitment.Commitment, error) {
	query := `SELECT ` + commitmentColumns + ` FROM commitments
		WHERE user_id = ?
		ORDER BY deadline DESC, created_at DESC`
	rows, err := r.exec(ctx).Query(ctx, r.dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	return database.CollectRows(rows, scanCommitment)
}

const updateCommitment = `
	UPDATE commitments
	SET deadline = ?, status = ?, snooze_count = ?, last_snoozed_at = ?, completed_at = ?,
	    rescheduled_at = ?, rescheduled_to = ?, rescheduled_reason = ?, updated_at = ?
	WHERE id = ? AND user_id = ? AND status = ? AND snooze_count = ?`

func (r *CommitmentRepository) UpdateIf(ctx context.Context, c *commitment.Commitment, guard commitment.Guard) (bool, error) {
	s := c.Snapshot()
	res, err := r.exec(ctx).Exec(ctx, r.dialect.Rebind(updateCommitment),
		r.dialect.Time(s.Deadline),
		s.Status.String(),
		s.SnoozeCount,
		r.dialect.NullTime(s.LastSnoozedAt),
		r.dialect.NullTime(s.CompletedAt),
		r.dialect.NullTime(s.RescheduledAt),
		r.dialect.NullTime(s.RescheduledTo),
		nullString(s.RescheduledReason),
		r.dialect.Time(s.UpdatedAt),
		s.ID,
		s.UserID,
		guard.Status.String(),
		guard.SnoozeCount,
	)
	if err != nil {
		return false, fmt.Errorf("update commitment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update commitment: %w", err)
	}
	return n == 1, nil
}

// LockOwner takes a transaction-scoped advisory lock on PostgreSQL. SQLite
// already allows a single connection, so there is nothing to take.
func (r *CommitmentRepository) LockOwner(ctx context.Context, userID string) error {
	stmt := r.dialect.KeyLock()
	if stmt == "" {
		return nil
	}
	if _, err := r.exec(ctx).Exec(ctx, stmt, "commitments:"+userID); err != nil {
		return fmt.Errorf("lock owner: %w", err)
	}
	return nil
}

func (r *CommitmentRepository) CountOverdue(ctx context.Context, userID string, now time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM commitments WHERE user_id = ? AND status = 'pending' AND deadline <= ?`
	var n int
	if err := r.exec(ctx).QueryRow(ctx, r.dialect.Rebind(query), userID, r.dialect.Time(now)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count overdue commitments: %w", err)
	}
	return n, nil
}

const weekStats = `
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = 'rescheduled' THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN status = 'pending' AND deadline <= ? THEN 1 ELSE 0 END), 0)
	FROM commitments
	WHERE user_id = ? AND created_at >= ?`

func (r *CommitmentRepository) WeekStats(ctx context.Context, userID string, since, now time.Time) (commitment.WeekStats, error) {
	var s commitment.WeekStats
	err := r.exec(ctx).QueryRow(ctx, r.dialect.Rebind(weekStats), r.dialect.Time(now), userID, r.dialect.Time(since)).
		Scan(&s.Total, &s.Kept, &s.Rescheduled, &s.Broken)
	if err != nil {
		return commitment.WeekStats{}, fmt.Errorf("week stats: %w", err)
	}
	return s, nil
}

const topOverdueWho = `
	SELECT who, COUNT(*) AS n
	FROM commitments
	WHERE user_id = ? AND status = 'pending' AND deadline <= ?
	GROUP BY who
	ORDER BY n DESC, who ASC
	LIMIT ?`

func (r *CommitmentRepository) TopOverdueWho(ctx context.Context, userID string, now time.Time, limit int) ([]commitment.WhoCount, error) {
	rows, err := r.exec(ctx).Query(ctx, r.dialect.Rebind(topOverdueWho), userID, r.dialect.Time(now), limit)
	if err != nil {
		return nil, fmt.Errorf("top overdue: %w", err)
	}
	return database.CollectRows(rows, func(row database.Row) (commitment.WhoCount, error) {
		var wc commitment.WhoCount
		err := row.Scan(&wc.Who, &wc.Count)
		return wc, err
	})
}

func (r *CommitmentRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func scanCommitment(row database.Row) (*commitment.Commitment, error) {
	var (
		id                           uuid.UUID
		userID, who, what, status    string
		snoozes                      int
		deadline                     database.Timestamp
		lastSnoozed, completed       database.Timestamp
		rescheduledAt, rescheduledTo database.Timestamp
		reason                       sql.NullString
		createdAt, updatedAt         database.Timestamp
	)
	err := row.Scan(&id, &userID, &who, &what, &deadline, &status, &snoozes, &lastSnoozed,
		&completed, &rescheduledAt, &rescheduledTo, &reason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	st, err := commitment.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return commitment.Rehydrate(commitment.Snapshot{
		ID:                id,
		UserID:            userID,
		Who:               who,
		What:              what,
		Deadline:          deadline.Time,
		Status:            st,
		SnoozeCount:       snoozes,
		LastSnoozedAt:     lastSnoozed.Ptr(),
		CompletedAt:       completed.Ptr(),
		RescheduledAt:     rescheduledAt.Ptr(),
		RescheduledTo:     rescheduledTo.Ptr(),
		RescheduledReason: reason.String,
		CreatedAt:         createdAt.Time,
		UpdatedAt:         updatedAt.Time,
	}), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
