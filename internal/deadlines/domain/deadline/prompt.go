package deadline

import (
	"fmt"
	"strings"
	"time"
)

const ruleTable = `Convert the user's input into an ISO datetime. Follow these rules:
- "today" or "by today" means today at 23:59
- "tomorrow" means tomorrow at 23:59
- "EOD" or "end of day" means 18:00 (6 PM) of that day
- "workday", "work day", or "business hours" means 18:00 (6 PM) of that day
- "end of [day] workday" means that day at 18:00 (6 PM)
- "COB" (close of business) means 18:00 (6 PM)
- "next week" means next Monday at 23:59
- "EOW" (end of week) means Friday at 18:00
- "EOM" (end of month) means last day of month at 23:59
- "by [day]" or just "[day]" means the NEXT occurrence of that day at 23:59
- If a day name is mentioned and it's already passed this week, use next week's occurrence
- If time isn't specified and no work context, default to 23:59 of that day
- Be reasonable about work hours (workday ends at 6pm, not midnight)

Respond ONLY with the ISO datetime string, nothing else.`

// SystemPrompt builds the instruction context for the language model at now.
func SystemPrompt(now time.Time) string {
	return fmt.Sprintf("You are a date parser. Today is %s, %s. \n%s",
		now.Weekday(), now.Format("2006-01-02 15:04"), ruleTable)
}

var answerLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseAnswer accepts a single ISO-8601 datetime token. Answers without a
// zone are read in now's location. Anything else is rejected.
func ParseAnswer(answer string, now time.Time) (time.Time, bool) {
	s := strings.Trim(strings.TrimSpace(answer), "\"'`")
	if s == "" || strings.ContainsAny(s, "\n\r") {
		return time.Time{}, false
	}
	for _, layout := range answerLayouts {
		if at, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return at.In(now.Location()), true
		}
	}
	return time.Time{}, false
}
