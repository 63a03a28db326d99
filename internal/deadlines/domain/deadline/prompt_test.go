package deadline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	got := SystemPrompt(wed)

	assert.True(t, strings.HasPrefix(got, "You are a date parser. Today is Wednesday, 2024-01-10 09:00. \n"))
	assert.Contains(t, got, `- "EOW" (end of week) means Friday at 18:00`)
	assert.Contains(t, got, `- "next week" means next Monday at 23:59`)
	assert.True(t, strings.HasSuffix(got, "Respond ONLY with the ISO datetime string, nothing else."))
	assert.Equal(t, got, SystemPrompt(wed))
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   time.Time
	}{
		{"2024-01-12T18:00:00Z", day(2024, time.January, 12, 18, 0)},
		{"2024-01-12T18:00:00", day(2024, time.January, 12, 18, 0)},
		{"  \"2024-01-12T18:00\" ", day(2024, time.January, 12, 18, 0)},
		{"2024-01-12 23:59", day(2024, time.January, 12, 23, 59)},
		{"2024-01-12T17:00:00-01:00", day(2024, time.January, 12, 18, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, ok := ParseAnswer(tt.answer, wed)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseAnswer_Rejects(t *testing.T) {
	for _, answer := range []string{"", "Friday at 6pm", "2024-01-12T18:00:00Z\nHope that helps", "sure! 2024-01-12"} {
		_, ok := ParseAnswer(answer, wed)
		assert.False(t, ok, answer)
	}
}
