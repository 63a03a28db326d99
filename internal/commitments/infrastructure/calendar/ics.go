// Package calendar renders commitments as an iCalendar feed so deadlines
// show up next to meetings.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

// ContentType is the media type of the feed.
const ContentType = "text/calendar; charset=utf-8"

// PropXVouchStatus carries the commitment status on each event.
const PropXVouchStatus = "X-VOUCH-STATUS"

// EventLength is how long each deadline blocks in the calendar.
const EventLength = 15 * time.Minute

// Encode writes one VEVENT per commitment, ending at its deadline.
func Encode(w io.Writer, list []queries.CommitmentDTO, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Vouch//Commitments//EN")

	for _, c := range list {
		cal.Children = append(cal.Children, toEvent(c, now).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toEvent(c queries.CommitmentDTO, now time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, c.ID.String()+"@vouch")
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, c.Deadline.Add(-EventLength).UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, c.Deadline.UTC())
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s: %s", c.Who, c.What))

	description := fmt.Sprintf("Promised to %s", c.Who)
	if c.SnoozeCount > 0 {
		description += fmt.Sprintf("\nSnoozed %d time(s)", c.SnoozeCount)
	}
	if c.DaysOverdue > 0 {
		description += fmt.Sprintf("\n%d day(s) overdue", c.DaysOverdue)
	}
	event.Props.SetText(ical.PropDescription, description)

	status := ical.NewProp(PropXVouchStatus)
	status.Value = c.Status
	event.Props[PropXVouchStatus] = []ical.Prop{*status}

	return event
}
