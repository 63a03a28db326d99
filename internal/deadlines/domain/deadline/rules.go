package deadline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Candidate is an instant recognized by the rule table, with the rule that produced it.
type Candidate struct {
	At   time.Time
	Rule string
}

// monthNames maps month names and abbreviations to months.
var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// weekdayNames maps weekday names and abbreviations to weekdays.
var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var countWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

const (
	monthPattern   = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	weekdayPattern = `(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)`
	countPattern   = `(\d{1,3}|an?|one|two|three|four|five|six|seven|eight|nine|ten)`
)

var (
	relativeClockPattern = regexp.MustCompile(`\bin ` + countPattern + ` (minutes?|mins?|hours?|hrs?)\b`)

	twelveHourPattern     = regexp.MustCompile(`\b(\d{1,2})(?::([0-5]\d))?\s*([ap])\.?m\b\.?`)
	twentyFourHourPattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	noonPattern           = regexp.MustCompile(`\b(noon|midday)\b`)
	midnightPattern       = regexp.MustCompile(`\bmidnight\b`)
	segmentPattern        = regexp.MustCompile(`\b(morning|afternoon|evening|night)\b`)
	atHourPattern         = regexp.MustCompile(`\bat (\d{1,2})\b`)
)

// dateRule recognizes the calendar part of a phrase. The returned time carries
// the clock the rule implies when the phrase names no time of its own.
type dateRule struct {
	name    string
	pattern *regexp.Regexp
	resolve func(m []string, now time.Time) (time.Time, bool)
}

// dateRules is evaluated in order; the first rule that resolves wins.
var dateRules = []dateRule{
	{
		name:    "relative_days",
		pattern: regexp.MustCompile(`\bin ` + countPattern + ` (days?|weeks?|months?)\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			n, ok := parseCount(m[1])
			if !ok {
				return time.Time{}, false
			}
			switch {
			case strings.HasPrefix(m[2], "day"):
				return AddDays(now, n), true
			case strings.HasPrefix(m[2], "week"):
				return AddDays(now, 7*n), true
			default:
				return now.AddDate(0, n, 0), true
			}
		},
	},
	{
		name:    "iso_date",
		pattern: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			return calendarDate(y, time.Month(mo), d, now)
		},
	},
	{
		name:    "us_date",
		pattern: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			mo, _ := strconv.Atoi(m[1])
			d, _ := strconv.Atoi(m[2])
			if m[3] == "" {
				return nextAnnual(time.Month(mo), d, now)
			}
			y, _ := strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
			return calendarDate(y, time.Month(mo), d, now)
		},
	},
	{
		name:    "month_day",
		pattern: regexp.MustCompile(`\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			d, _ := strconv.Atoi(m[2])
			return monthDay(m[1], d, m[3], now)
		},
	},
	{
		name:    "day_month",
		pattern: regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `\.?(?:,?\s+(\d{4}))?\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			d, _ := strconv.Atoi(m[1])
			return monthDay(m[2], d, m[3], now)
		},
	},
	{
		name:    "day_after_tomorrow",
		pattern: regexp.MustCompile(`\bday after tomorrow\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			return AddDays(now, 2), true
		},
	},
	{
		name:    "tomorrow",
		pattern: regexp.MustCompile(`\b(tomorrow|tmrw|tmr)\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			return AddDays(now, 1), true
		},
	},
	{
		name:    "tonight",
		pattern: regexp.MustCompile(`\btonight\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			return AtClock(now, 22, 0), true
		},
	},
	{
		name:    "today",
		pattern: regexp.MustCompile(`\b(today|eod|end of (?:the )?day)\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			return now, true
		},
	},
	{
		name:    "yesterday",
		pattern: regexp.MustCompile(`\byesterday\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			return AddDays(now, -1), true
		},
	},
	{
		name:    "next_week",
		pattern: regexp.MustCompile(`\bnext week\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			return NextMonday(now), true
		},
	},
	{
		name:    "next_month",
		pattern: regexp.MustCompile(`\bnext month\b`),
		resolve: func(_ []string, now time.Time) (time.Time, bool) {
			first := time.Date(now.Year(), now.Month()+1, 1, 12, 0, 0, 0, now.Location())
			return first, true
		},
	},
	{
		name:    "weekday",
		pattern: regexp.MustCompile(`\b(?:(this|next|coming)\s+)?` + weekdayPattern + `\b`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			wd := weekdayNames[m[2]]
			var day time.Time
			if m[1] == "next" {
				day = FollowingWeekday(now, wd)
			} else {
				day = UpcomingWeekday(now, wd)
			}
			return AtClock(day, 12, 0), true
		},
	},
	{
		name:    "ordinal_day",
		pattern: regexp.MustCompile(`(?:^(?:on\s+)?(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)?$|\bthe (\d{1,2})(?:st|nd|rd|th)\b)`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			raw := m[1]
			if raw == "" {
				raw = m[2]
			}
			d, _ := strconv.Atoi(raw)
			return nextMonthly(d, now)
		},
	},
}

// RuleBasedResolver recognizes a fixed set of date and time phrases. It never
// guesses: text outside the table is reported as unmatched.
type RuleBasedResolver struct{}

// NewRuleBasedResolver creates the rule table resolver.
func NewRuleBasedResolver() *RuleBasedResolver {
	return &RuleBasedResolver{}
}

// Parse returns the candidate instant for text, evaluated against now.
func (r *RuleBasedResolver) Parse(text string, now time.Time) (Candidate, bool) {
	if at, err := time.Parse(time.RFC3339, strings.TrimSpace(text)); err == nil {
		return Candidate{At: at.In(now.Location()), Rule: "rfc3339"}, true
	}

	s := normalize(text)
	if s == "" {
		return Candidate{}, false
	}

	if m := relativeClockPattern.FindStringSubmatch(s); m != nil {
		if n, ok := parseCount(m[1]); ok {
			unit := time.Minute
			if strings.HasPrefix(m[2], "h") {
				unit = time.Hour
			}
			return Candidate{At: now.Add(time.Duration(n) * unit), Rule: "relative_clock"}, true
		}
	}

	var (
		date     time.Time
		rule     string
		haveDate bool
		rest     = s
	)
	for _, dr := range dateRules {
		loc := dr.pattern.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		m := submatches(s, loc)
		at, ok := dr.resolve(m, now)
		if !ok {
			continue
		}
		date, rule, haveDate = at, dr.name, true
		rest = s[:loc[0]] + " " + s[loc[1]:]
		break
	}

	clock, found := parseClock(rest)
	switch {
	case !haveDate && !found.ok:
		return Candidate{}, false
	case !haveDate:
		at := clock.on(now)
		if at.Before(now) {
			at = clock.on(AddDays(now, 1))
		}
		return Candidate{At: at, Rule: found.rule}, true
	case found.ok:
		return Candidate{At: clock.on(date), Rule: rule + "+" + found.rule}, true
	default:
		return Candidate{At: date, Rule: rule}, true
	}
}

type clockTime struct {
	hour, minute int
	midnight     bool
}

// on places the clock on t's calendar date. Midnight belongs to the next day.
func (c clockTime) on(t time.Time) time.Time {
	if c.midnight {
		return StartOfDay(AddDays(t, 1))
	}
	return AtClock(t, c.hour, c.minute)
}

type clockMatch struct {
	rule string
	ok   bool
}

func parseClock(s string) (clockTime, clockMatch) {
	if m := twelveHourPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			minute, _ := strconv.Atoi(m[2])
			h %= 12
			if m[3] == "p" {
				h += 12
			}
			return clockTime{hour: h, minute: minute}, clockMatch{rule: "12h", ok: true}
		}
	}
	if m := twentyFourHourPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return clockTime{hour: h, minute: minute}, clockMatch{rule: "24h", ok: true}
	}
	if noonPattern.MatchString(s) {
		return clockTime{hour: 12}, clockMatch{rule: "noon", ok: true}
	}
	if midnightPattern.MatchString(s) {
		return clockTime{midnight: true}, clockMatch{rule: "midnight", ok: true}
	}
	if m := segmentPattern.FindStringSubmatch(s); m != nil {
		hours := map[string]int{"morning": 6, "afternoon": 15, "evening": 20, "night": 22}
		return clockTime{hour: hours[m[1]]}, clockMatch{rule: m[1], ok: true}
	}
	if m := atHourPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		switch {
		case h >= 1 && h <= 7:
			h += 12
		case h > 23:
			return clockTime{}, clockMatch{}
		}
		return clockTime{hour: h}, clockMatch{rule: "at_hour", ok: true}
	}
	return clockTime{}, clockMatch{}
}

func normalize(text string) string {
	s := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return strings.TrimRight(s, ".,!?;")
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func parseCount(s string) (int, bool) {
	if n, ok := countWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// calendarDate validates y-m-d and returns it at noon.
func calendarDate(y int, m time.Month, d int, now time.Time) (time.Time, bool) {
	if m < time.January || m > time.December || d < 1 || d > lastDayOfMonth(y, m) {
		return time.Time{}, false
	}
	return time.Date(y, m, d, 12, 0, 0, 0, now.Location()), true
}

// nextAnnual returns month/day this year, or next year once it has passed.
func nextAnnual(m time.Month, d int, now time.Time) (time.Time, bool) {
	at, ok := calendarDate(now.Year(), m, d, now)
	if ok && !DateBefore(at, now) {
		return at, true
	}
	return calendarDate(now.Year()+1, m, d, now)
}

func monthDay(name string, d int, year string, now time.Time) (time.Time, bool) {
	m, ok := monthNames[strings.TrimSuffix(name, ".")]
	if !ok {
		return time.Time{}, false
	}
	if year == "" {
		return nextAnnual(m, d, now)
	}
	y, _ := strconv.Atoi(year)
	return calendarDate(y, m, d, now)
}

// nextMonthly returns day d of this month, or of next month once it has passed.
func nextMonthly(d int, now time.Time) (time.Time, bool) {
	if d >= now.Day() {
		if at, ok := calendarDate(now.Year(), now.Month(), d, now); ok {
			return at, true
		}
	}
	next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	return calendarDate(next.Year(), next.Month(), d, now)
}
