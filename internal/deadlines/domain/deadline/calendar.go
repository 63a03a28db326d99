// Package deadline turns free-text due phrases into instants under a fixed
// business rule table. Everything here is pure: the caller supplies now, and
// calendar arithmetic happens in now's location.
package deadline

import "time"

// EndOfDay returns 23:59:59.999 on t's calendar date.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}

// StartOfDay returns midnight at the start of t's calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AtClock returns t's calendar date at hour:minute:00.000.
func AtClock(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// NextMonday returns the Monday strictly after now. On a Monday it is seven days out.
func NextMonday(now time.Time) time.Time {
	days := (8 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return AddDays(now, days)
}

// UpcomingWeekday returns the soonest day on or after now's date that falls on wd.
func UpcomingWeekday(now time.Time, wd time.Weekday) time.Time {
	return AddDays(now, (int(wd)-int(now.Weekday())+7)%7)
}

// FollowingWeekday is "next <weekday>": the occurrence in the week after
// now's Monday-based week, or the first one after today when that is already
// in a later week.
func FollowingWeekday(now time.Time, wd time.Weekday) time.Time {
	ahead := (int(wd) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		return AddDays(now, 7)
	}
	candidate := AddDays(now, ahead)
	if isoWeekday(candidate) > isoWeekday(now) {
		return AddDays(candidate, 7)
	}
	return candidate
}

// WeekStart returns the most recent Sunday at 00:00, today when now is a Sunday.
func WeekStart(now time.Time) time.Time {
	return StartOfDay(AddDays(now, -int(now.Weekday())))
}

// DateBefore reports whether a's calendar date is strictly before b's.
func DateBefore(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b.In(a.Location())))
}

// isoWeekday numbers Monday as 1 and Sunday as 7.
func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
