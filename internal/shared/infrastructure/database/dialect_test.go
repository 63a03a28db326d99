package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect_Rebind(t *testing.T) {
	query := `UPDATE commitments SET status = ? WHERE id = ? AND user_id = ?`

	assert.Equal(t, query, DialectFor(DriverSQLite).Rebind(query))
	assert.Equal(t,
		`UPDATE commitments SET status = $1 WHERE id = $2 AND user_id = $3`,
		DialectFor(DriverPostgres).Rebind(query),
	)
}

func TestDialect_Time(t *testing.T) {
	at := time.Date(2024, 1, 12, 23, 59, 59, 999_000_000, time.FixedZone("EST", -5*3600))

	assert.Equal(t, "2024-01-13T04:59:59.999000000Z", DialectFor(DriverSQLite).Time(at))
	assert.Equal(t, at.UTC(), DialectFor(DriverPostgres).Time(at))
	assert.Nil(t, DialectFor(DriverSQLite).NullTime(nil))

	earlier := DialectFor(DriverSQLite).Time(at).(string)
	later := DialectFor(DriverSQLite).Time(at.Add(time.Millisecond)).(string)
	assert.Less(t, earlier, later)
}

func TestDialect_KeyLock(t *testing.T) {
	assert.Empty(t, DialectFor(DriverSQLite).KeyLock())
	assert.Equal(t, `SELECT pg_advisory_xact_lock(hashtext($1))`, DialectFor(DriverPostgres).KeyLock())
}

func TestTimestamp_Scan(t *testing.T) {
	want := time.Date(2024, 1, 13, 4, 59, 59, 999_000_000, time.UTC)

	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"sqlite text", "2024-01-13T04:59:59.999000000Z", true},
		{"rfc3339 bytes", []byte("2024-01-13T04:59:59.999Z"), true},
		{"postgres time", want.In(time.FixedZone("EST", -5*3600)), true},
		{"null", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, ts.Scan(tt.src))
			assert.Equal(t, tt.valid, ts.Valid)
			if tt.valid {
				assert.True(t, want.Equal(ts.Time))
				assert.NotNil(t, ts.Ptr())
			} else {
				assert.Nil(t, ts.Ptr())
			}
		})
	}

	var ts Timestamp
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
