package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
)

// TrustEventRepository implements trust.Repository. It only ever inserts.
type TrustEventRepository struct {
	conn    database.Connection
	dialect database.Dialect
}

// NewTrustEventRepository creates a repository on conn.
func NewTrustEventRepository(conn database.Connection) *TrustEventRepository {
	return &TrustEventRepository{conn: conn, dialect: database.DialectFor(conn.Driver())}
}

var _ trust.Repository = (*TrustEventRepository)(nil)

const trustEventColumns = `id, user_id, event_type, commitment_id, event_date, details`

func (r *TrustEventRepository) Append(ctx context.Context, e *trust.Event) error {
	query := `INSERT INTO trust_events (` + trustEventColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, r.dialect.Rebind(query),
		e.ID(),
		e.UserID(),
		e.Type().String(),
		nullUUID(e.CommitmentID()),
		r.dialect.Time(e.EventDate()),
		nullString(e.Details()),
	)
	if err != nil {
		return fmt.Errorf("append trust event: %w", err)
	}
	return nil
}

func (r *TrustEventRepository) LatestOfType(ctx context.Context, userID string, t trust.EventType) (*trust.Event, error) {
	query := `SELECT ` + trustEventColumns + ` FROM trust_events
		WHERE user_id = ? AND event_type = ?
		ORDER BY event_date DESC
		LIMIT 1`
	e, err := scanTrustEvent(database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, r.dialect.Rebind(query), userID, t.String()))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest trust event: %w", err)
	}
	return e, nil
}

func (r *TrustEventRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*trust.Event, error) {
	query := `SELECT ` + trustEventColumns + ` FROM trust_events
		WHERE user_id = ? AND event_date >= ?
		ORDER BY event_date ASC`
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, r.dialect.Rebind(query), userID, r.dialect.Time(since))
	if err != nil {
		return nil, fmt.Errorf("list trust events: %w", err)
	}
	return database.CollectRows(rows, scanTrustEvent)
}

func scanTrustEvent(row database.Row) (*trust.Event, error) {
	var (
		id           uuid.UUID
		userID, kind string
		commitmentID uuid.NullUUID
		at           database.Timestamp
		details      sql.NullString
	)
	if err := row.Scan(&id, &userID, &kind, &commitmentID, &at, &details); err != nil {
		return nil, err
	}
	var ref *uuid.UUID
	if commitmentID.Valid {
		ref = &commitmentID.UUID
	}
	return trust.Rehydrate(id, userID, trust.EventType(kind), ref, at.Time, details.String), nil
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
