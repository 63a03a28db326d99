package deadline

import (
	"strings"
	"time"
)

// LastResort resolves any text without external help. Unrecognized text
// becomes the end of today.
func LastResort(text string, now time.Time) Result {
	s := strings.ToLower(text)
	switch {
	case strings.Contains(s, "today"):
		return Resolved(StageLastResort, EndOfDay(now))
	case strings.Contains(s, "tomorrow"):
		return Resolved(StageLastResort, EndOfDay(AddDays(now, 1)))
	case strings.Contains(s, "eod") || strings.Contains(s, "end of day"):
		return Resolved(StageLastResort, AtClock(now, 18, 0))
	case strings.Contains(s, "next week"):
		return Resolved(StageLastResort, EndOfDay(NextMonday(now)))
	default:
		return Resolved(StageLastResort, EndOfDay(now))
	}
}
