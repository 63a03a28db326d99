package deadline

import (
	"regexp"
	"strings"
	"time"
)

var (
	bareWeekdayPattern = regexp.MustCompile(`^(by )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
	leadingDayPattern  = regexp.MustCompile(`^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	leadingMonth       = regexp.MustCompile(`^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	ordinalOnly        = regexp.MustCompile(`^\d{1,2}(st|nd|rd|th)?$`)

	explicitTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}(:\d{2})?\s*(am|pm)`),
		regexp.MustCompile(`\d{1,2}:\d{2}`),
		regexp.MustCompile(`\b(morning|afternoon|evening|night)\b`),
	}
)

// workCalendarMarkers need business-hours conventions the rule table does not encode.
var workCalendarMarkers = []string{"workday", "work day", "business hours", "cob", "eow", "eom"}

// NeedsAI reports whether text relies on a work-calendar convention.
func NeedsAI(text string) bool {
	s := strings.ToLower(text)
	for _, marker := range workCalendarMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// HasExplicitTime reports whether text names a clock time or a part of the day.
func HasExplicitTime(text string) bool {
	s := strings.ToLower(text)
	for _, p := range explicitTimePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// PhraseResolver applies the special literals, the weekday shortcut and
// end-of-day pinning on top of the rule table.
type PhraseResolver struct {
	rules *RuleBasedResolver
}

// NewPhraseResolver wraps rules. A nil rules uses the default table.
func NewPhraseResolver(rules *RuleBasedResolver) *PhraseResolver {
	if rules == nil {
		rules = NewRuleBasedResolver()
	}
	return &PhraseResolver{rules: rules}
}

// Resolve returns a resolved result, or NoMatch when the phrase needs the
// language model or the rule table does not recognize it.
func (p *PhraseResolver) Resolve(text string, now time.Time) Result {
	s := strings.ToLower(strings.TrimSpace(text))

	if s == "next week" || s == "next monday" {
		return Resolved(StageLiteral, EndOfDay(NextMonday(now)))
	}

	if NeedsAI(s) {
		return NoMatch(StagePhrase)
	}

	if m := bareWeekdayPattern.FindStringSubmatch(s); m != nil {
		return Resolved(StageWeekday, EndOfDay(UpcomingWeekday(now, weekdayNames[m[2]])))
	}

	candidate, ok := p.rules.Parse(text, now)
	if !ok {
		return NoMatch(StagePhrase)
	}
	res := Resolved(StageRules, pin(s, candidate.At, now))
	res.Rule = candidate.Rule
	return res
}

// pin fixes the time of day for a candidate found without an explicit time.
func pin(s string, at, now time.Time) time.Time {
	if HasExplicitTime(s) {
		return at
	}
	switch {
	case strings.Contains(s, "eod") || strings.Contains(s, "end of day"):
		return AtClock(at, 18, 0)
	case strings.Contains(s, "today") || strings.Contains(s, "tomorrow") || strings.Contains(s, "by"):
		return EndOfDay(at)
	case leadingDayPattern.MatchString(s) || leadingMonth.MatchString(s) || ordinalOnly.MatchString(s):
		return EndOfDay(at)
	case bareWeekdayPattern.MatchString(s):
		if DateBefore(at, now) {
			at = AddDays(at, 7)
		}
		return EndOfDay(at)
	default:
		return at
	}
}
