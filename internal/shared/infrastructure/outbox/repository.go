package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
)

// Repository persists outbox messages.
type Repository interface {
	// SaveBatch stores messages using the ambient transaction when present.
	SaveBatch(ctx context.Context, msgs []*Message) error
	// FetchPending returns unpublished, live messages that are due at now, oldest first.
	FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error
	// DeleteOld removes published messages older than before.
	DeleteOld(ctx context.Context, before time.Time) (int64, error)
}

// SQLRepository implements Repository for every registered driver.
type SQLRepository struct {
	conn    database.Connection
	dialect database.Dialect
}

// NewSQLRepository creates an outbox repository on conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn, dialect: database.DialectFor(conn.Driver())}
}

const insertMessage = `
	INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id`

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.dialect.Rebind(insertMessage)
	for _, msg := range msgs {
		err := exec.QueryRow(ctx, query,
			msg.EventID,
			msg.AggregateType,
			msg.AggregateID,
			msg.RoutingKey,
			string(msg.Payload),
			string(msg.Metadata),
			r.dialect.Time(msg.CreatedAt),
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

const selectPending = `
	SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
	       created_at, retry_count, next_retry_at, last_error
	FROM outbox
	WHERE published_at IS NULL
	  AND dead_lettered_at IS NULL
	  AND (next_retry_at IS NULL OR next_retry_at <= ?)
	ORDER BY created_at, id
	LIMIT ?`

func (r *SQLRepository) FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, r.dialect.Rebind(selectPending), r.dialect.Time(now), limit)
	if err != nil {
		return nil, err
	}
	return database.CollectRows(rows, scanMessage)
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg               Message
		payload, metadata string
		createdAt, next   database.Timestamp
		lastError         sql.NullString
	)
	err := row.Scan(&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &msg.RetryCount, &next, &lastError)
	if err != nil {
		return nil, err
	}
	msg.Payload = []byte(payload)
	msg.Metadata = []byte(metadata)
	msg.CreatedAt = createdAt.Time
	msg.NextRetryAt = next.Ptr()
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	return &msg, nil
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		r.dialect.Rebind(`UPDATE outbox SET published_at = ? WHERE id = ?`), r.dialect.Time(at), id)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		r.dialect.Rebind(`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`),
		errMsg, r.dialect.Time(nextRetryAt), id)
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		r.dialect.Rebind(`UPDATE outbox SET dead_lettered_at = ?, dead_letter_reason = ?, last_error = ? WHERE id = ?`),
		r.dialect.Time(at), reason, reason, id)
	return err
}

func (r *SQLRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		r.dialect.Rebind(`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`), r.dialect.Time(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
