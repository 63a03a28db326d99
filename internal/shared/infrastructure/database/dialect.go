package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the SQLite storage layout for instants. Fixed-width fractional
// seconds keep lexical order equal to chronological order on TEXT columns.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Dialect smooths over the differences between drivers that matter to
// hand-written SQL: placeholder syntax and how instants are bound.
type Dialect struct {
	driver Driver
}

// DialectFor returns the dialect of a driver.
func DialectFor(d Driver) Dialect {
	return Dialect{driver: d}
}

// Rebind rewrites ? placeholders into $n for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Time binds an instant: timestamptz for PostgreSQL, sortable TEXT for SQLite.
func (d Dialect) Time(t time.Time) any {
	if d.driver == DriverPostgres {
		return t.UTC()
	}
	return t.UTC().Format(TimeLayout)
}

// NullTime binds an optional instant.
func (d Dialect) NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.Time(*t)
}

// KeyLock returns a statement that holds a lock on one text key until the
// transaction ends, or "" when the driver already runs one writer at a time.
func (d Dialect) KeyLock() string {
	if d.driver != DriverPostgres {
		return ""
	}
	return `SELECT pg_advisory_xact_lock(hashtext($1))`
}

// Timestamp scans an instant stored by either driver.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts = Timestamp{}
		return nil
	case time.Time:
		*ts = Timestamp{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

// Value implements driver.Valuer using the SQLite layout.
func (ts Timestamp) Value() (driver.Value, error) {
	if !ts.Valid {
		return nil, nil
	}
	return ts.Time.UTC().Format(TimeLayout), nil
}

// Ptr returns the instant or nil when NULL.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func (ts *Timestamp) parse(s string) error {
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = Timestamp{Time: t.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("invalid stored time %q", s)
}
