package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/migrations"
)

var now = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func setupConn(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn, nil))
	return conn
}

func insert(t *testing.T, repo *CommitmentRepository, user, who string, deadline, created time.Time) *commitment.Commitment {
	t.Helper()
	c, err := commitment.New(user, who, "follow up", deadline, created)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), c))
	return c
}

func TestCommitmentRepository_InsertAndFind(t *testing.T) {
	repo := NewCommitmentRepository(setupConn(t))
	ctx := context.Background()
	c := insert(t, repo, "user-1", "Alice", now.Add(time.Hour), now)

	got, err := repo.FindByID(ctx, c.ID(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), got.Snapshot())

	_, err = repo.FindByID(ctx, c.ID(), "user-2")
	assert.ErrorIs(t, err, commitment.ErrCommitmentNotFound)

	_, err = repo.FindByID(ctx, uuid.New(), "user-1")
	var nf *commitment.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCommitmentRepository_ListByOwnerNewestDeadlineFirst(t *testing.T) {
	repo := NewCommitmentRepository(setupConn(t))
	early := insert(t, repo, "user-1", "Alice", now.Add(time.Hour), now)
	late := insert(t, repo, "user-1", "Bob", now.Add(48*time.Hour), now)
	insert(t, repo, "user-2", "Carol", now, now)

	got, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, late.ID(), got[0].ID())
	assert.Equal(t, early.ID(), got[1].ID())
}

func TestCommitmentRepository_UpdateIfIsConditional(t *testing.T) {
	repo := NewCommitmentRepository(setupConn(t))
	ctx := context.Background()
	c := insert(t, repo, "user-1", "Alice", now.Add(time.Hour), now)

	// Two handlers load the same pending row.
	first, err := repo.FindByID(ctx, c.ID(), "user-1")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, c.ID(), "user-1")
	require.NoError(t, err)

	guard := first.Guard()
	require.NoError(t, first.Complete(now))
	ok, err := repo.UpdateIf(ctx, first, guard)
	require.NoError(t, err)
	assert.True(t, ok)

	guard = second.Guard()
	require.NoError(t, second.Snooze(now))
	ok, err = repo.UpdateIf(ctx, second, guard)
	require.NoError(t, err)
	assert.False(t, ok, "the stale snooze must lose")

	stored, err := repo.FindByID(ctx, c.ID(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusCompleted, stored.Status())
	assert.Equal(t, 0, stored.SnoozeCount())
	assert.Equal(t, now, *stored.CompletedAt())
}

func TestCommitmentRepository_LockOwnerInsideTransaction(t *testing.T) {
	conn := setupConn(t)
	repo := NewCommitmentRepository(conn)
	uow := database.NewUnitOfWork(conn)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.LockOwner(txCtx, "user-1"))
	n, err := repo.CountOverdue(txCtx, "user-1", now)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, uow.Commit(txCtx))
}

func TestCommitmentRepository_PersistsReschedule(t *testing.T) {
	repo := NewCommitmentRepository(setupConn(t))
	ctx := context.Background()
	c := insert(t, repo, "user-1", "Alice", now.Add(time.Hour), now)

	guard := c.Guard()
	next, err := c.Reschedule(now.Add(72*time.Hour), "travel", now)
	require.NoError(t, err)
	ok, err := repo.UpdateIf(ctx, c, guard)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Insert(ctx, next))

	stored, err := repo.FindByID(ctx, c.ID(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), stored.Snapshot())
	assert.Equal(t, "travel", stored.RescheduledReason())
}

func TestCommitmentRepository_Reporting(t *testing.T) {
	repo := NewCommitmentRepository(setupConn(t))
	ctx := context.Background()
	weekStart := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)

	insert(t, repo, "user-1", "Bob", now.Add(-2*time.Hour), now.Add(-48*time.Hour))
	insert(t, repo, "user-1", "Alice", now.Add(-time.Hour), now.Add(-48*time.Hour))
	insert(t, repo, "user-1", "Alice", now, now.Add(-24*time.Hour))
	insert(t, repo, "user-1", "Zed", now.Add(time.Hour), now)
	insert(t, repo, "user-1", "Old", now.Add(-time.Hour), weekStart.Add(-time.Hour))

	kept := insert(t, repo, "user-1", "Kept", now.Add(time.Hour), now)
	guard := kept.Guard()
	require.NoError(t, kept.Complete(now))
	_, err := repo.UpdateIf(ctx, kept, guard)
	require.NoError(t, err)

	n, err := repo.CountOverdue(ctx, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "deadline equal to now counts as overdue")

	stats, err := repo.WeekStats(ctx, "user-1", weekStart, now)
	require.NoError(t, err)
	assert.Equal(t, commitment.WeekStats{Total: 5, Kept: 1, Rescheduled: 0, Broken: 3}, stats)

	top, err := repo.TopOverdueWho(ctx, "user-1", now, 2)
	require.NoError(t, err)
	assert.Equal(t, []commitment.WhoCount{{Who: "Alice", Count: 2}, {Who: "Bob", Count: 1}}, top)
}

func TestTrustEventRepository(t *testing.T) {
	conn := setupConn(t)
	commitments := NewCommitmentRepository(conn)
	repo := NewTrustEventRepository(conn)
	ctx := context.Background()

	c := insert(t, commitments, "user-1", "Alice", now.Add(time.Hour), now)

	latest, err := repo.LatestOfType(ctx, "user-1", trust.EventChased)
	require.NoError(t, err)
	assert.Nil(t, latest)

	cid := c.ID()
	first, err := trust.NewEvent("user-1", trust.EventChased, &cid, "nudged", now.Add(-48*time.Hour))
	require.NoError(t, err)
	second, err := trust.NewEvent("user-1", trust.EventChased, nil, "", now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, trust.Kept(c, now)))

	latest, err = repo.LatestOfType(ctx, "user-1", trust.EventChased)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID(), latest.ID())
	assert.Nil(t, latest.CommitmentID())

	events, err := repo.ListSince(ctx, "user-1", now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "nudged", events[0].Details())
	assert.Equal(t, cid, *events[0].CommitmentID())
	assert.Equal(t, trust.EventCommitmentKept, events[2].Type())
}
