package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleBasedResolver_Parse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		rule  string
	}{
		{"2024-01-20", day(2024, time.January, 20, 12, 0), "iso_date"},
		{"2024-01-20T15:00:00Z", day(2024, time.January, 20, 15, 0), "rfc3339"},
		{"1/15", day(2024, time.January, 15, 12, 0), "us_date"},
		{"1/5", day(2025, time.January, 5, 12, 0), "us_date"},
		{"jan 20 at 3pm", day(2024, time.January, 20, 15, 0), "month_day+12h"},
		{"March 3rd, 2025", day(2025, time.March, 3, 12, 0), "month_day"},
		{"15th of february", day(2024, time.February, 15, 12, 0), "day_month"},
		{"in 3 days", day(2024, time.January, 13, 9, 0), "relative_days"},
		{"in 2 hours", day(2024, time.January, 10, 11, 0), "relative_clock"},
		{"in an hour", day(2024, time.January, 10, 10, 0), "relative_clock"},
		{"tomorrow at 5pm", day(2024, time.January, 11, 17, 0), "tomorrow+12h"},
		{"tomorrow 14:30", day(2024, time.January, 11, 14, 30), "tomorrow+24h"},
		{"tomorrow morning", day(2024, time.January, 11, 6, 0), "tomorrow+morning"},
		{"tonight", day(2024, time.January, 10, 22, 0), "tonight"},
		{"day after tomorrow", day(2024, time.January, 12, 9, 0), "day_after_tomorrow"},
		{"next friday", day(2024, time.January, 19, 12, 0), "weekday"},
		{"this friday", day(2024, time.January, 12, 12, 0), "weekday"},
		{"fri", day(2024, time.January, 12, 12, 0), "weekday"},
		{"next month", day(2024, time.February, 1, 12, 0), "next_month"},
		{"the 15th", day(2024, time.January, 15, 12, 0), "ordinal_day"},
		{"5th", day(2024, time.February, 5, 12, 0), "ordinal_day"},
		{"3pm", day(2024, time.January, 10, 15, 0), "12h"},
		{"8am", day(2024, time.January, 11, 8, 0), "12h"},
		{"noon", day(2024, time.January, 10, 12, 0), "noon"},
		{"midnight", day(2024, time.January, 11, 0, 0), "midnight"},
		{"at 5", day(2024, time.January, 10, 17, 0), "at_hour"},
	}

	r := NewRuleBasedResolver()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.Parse(tt.input, wed)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.At)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestRuleBasedResolver_NoMatch(t *testing.T) {
	r := NewRuleBasedResolver()
	for _, input := range []string{"", "   ", "whenever you can", "asap", "2024-02-30"} {
		t.Run(input, func(t *testing.T) {
			_, ok := r.Parse(input, wed)
			assert.False(t, ok)
		})
	}
}
