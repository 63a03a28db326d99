package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

// NewTable returns a table that renders to w in the CLI's style.
func NewTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	return tw
}

// RenderCommitments prints commitments as a table, overdue first in red.
func RenderCommitments(w io.Writer, list []queries.CommitmentDTO) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No commitments.")
		return
	}
	tw := NewTable(w)
	tw.AppendHeader(table.Row{"ID", "Who", "What", "Due", "Status", "Snoozed"})
	for _, c := range list {
		tw.AppendRow(table.Row{
			shortID(c.ID.String()),
			c.Who,
			c.What,
			dueCell(c),
			c.Status,
			c.SnoozeCount,
		})
	}
	tw.Render()
}

// RenderCommitment prints one commitment as key/value lines.
func RenderCommitment(w io.Writer, c queries.CommitmentDTO) {
	fmt.Fprintf(w, "  id:       %s\n", c.ID)
	fmt.Fprintf(w, "  who:      %s\n", c.Who)
	fmt.Fprintf(w, "  what:     %s\n", c.What)
	fmt.Fprintf(w, "  deadline: %s\n", c.DeadlineHuman)
	fmt.Fprintf(w, "  status:   %s\n", c.Status)
	if c.SnoozeCount > 0 {
		fmt.Fprintf(w, "  snoozed:  %d\n", c.SnoozeCount)
	}
	if c.RescheduledReason != "" {
		fmt.Fprintf(w, "  reason:   %s\n", c.RescheduledReason)
	}
}

// RenderTrustReport prints the weekly summary followed by who is waiting longest.
func RenderTrustReport(w io.Writer, r *queries.TrustReportDTO) {
	if r.DaysSinceChased == nil {
		fmt.Fprintln(w, "Never chased.")
	} else {
		fmt.Fprintf(w, "Last chased %d day(s) ago.\n", *r.DaysSinceChased)
	}

	tw := NewTable(w)
	tw.SetTitle("Since %s", r.Week.Since.Format("Mon Jan 2"))
	tw.AppendHeader(table.Row{"Made", "Kept", "Rescheduled", "Broken"})
	tw.AppendRow(table.Row{r.Week.Total, r.Week.Kept, r.Week.Rescheduled, r.Week.Broken})
	tw.Render()

	if len(r.BrokenByPerson) == 0 {
		return
	}
	tw = NewTable(w)
	tw.SetTitle("Still waiting on you")
	tw.AppendHeader(table.Row{"Who", "Overdue"})
	for _, p := range r.BrokenByPerson {
		tw.AppendRow(table.Row{p.Who, p.Count})
	}
	tw.Render()
}

func dueCell(c queries.CommitmentDTO) string {
	switch c.Urgency {
	case queries.UrgencyOverdue:
		return text.FgRed.Sprintf("%s (%dd late)", c.DeadlineHuman, c.DaysOverdue)
	case queries.UrgencyToday:
		return text.FgYellow.Sprint(c.DeadlineHuman)
	default:
		return c.DeadlineHuman
	}
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
