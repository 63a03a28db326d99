package queries

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
)

// Urgency buckets a pending commitment by its deadline.
const (
	UrgencyOverdue  = "overdue"
	UrgencyToday    = "today"
	UrgencyUpcoming = "upcoming"
)

// CommitmentDTO is a data transfer object for commitments.
type CommitmentDTO struct {
	ID                uuid.UUID  `json:"id"`
	Who               string     `json:"who"`
	What              string     `json:"what"`
	Deadline          time.Time  `json:"deadline"`
	DeadlineHuman     string     `json:"deadline_human"`
	Status            string     `json:"status"`
	SnoozeCount       int        `json:"snooze_count"`
	DaysOverdue       int        `json:"days_overdue"`
	Urgency           string     `json:"urgency,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	RescheduledTo     *time.Time `json:"rescheduled_to,omitempty"`
	RescheduledReason string     `json:"rescheduled_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToCommitmentDTO maps a commitment for display at now in loc.
func ToCommitmentDTO(c *commitment.Commitment, now time.Time, loc *time.Location) CommitmentDTO {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	due := c.Deadline().In(loc)

	dto := CommitmentDTO{
		ID:                c.ID(),
		Who:               c.Who(),
		What:              c.What(),
		Deadline:          due,
		DeadlineHuman:     HumanizeDeadline(due, now),
		Status:            string(c.Status()),
		SnoozeCount:       c.SnoozeCount(),
		CompletedAt:       c.CompletedAt(),
		RescheduledTo:     c.RescheduledTo(),
		RescheduledReason: c.RescheduledReason(),
		CreatedAt:         c.CreatedAt(),
	}
	if c.IsPending() {
		dto.DaysOverdue = DaysOverdue(due, now)
		dto.Urgency = urgency(c, due, now)
	}
	return dto
}

func toCommitmentDTOs(cs []*commitment.Commitment, now time.Time, loc *time.Location) []CommitmentDTO {
	dtos := make([]CommitmentDTO, 0, len(cs))
	for _, c := range cs {
		dtos = append(dtos, ToCommitmentDTO(c, now, loc))
	}
	return dtos
}

// DaysOverdue counts whole days since the deadline, 0 before it.
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / (24 * time.Hour))
}

func urgency(c *commitment.Commitment, due, now time.Time) string {
	switch {
	case c.IsOverdue(now):
		return UrgencyOverdue
	case deadline.StartOfDay(due).Equal(deadline.StartOfDay(now)):
		return UrgencyToday
	default:
		return UrgencyUpcoming
	}
}

// HumanizeDeadline renders t relative to now, e.g. "Tomorrow at 3:00 PM".
func HumanizeDeadline(t, now time.Time) string {
	t = t.In(now.Location())
	clock := t.Format("3:04 PM")
	days := int(deadline.StartOfDay(t).Sub(deadline.StartOfDay(now)).Round(time.Hour) / (24 * time.Hour))

	switch {
	case days == 0:
		return "Today at " + clock
	case days == 1:
		return "Tomorrow at " + clock
	case days == -1:
		return "Yesterday at " + clock
	case days > 1 && days < 7:
		return fmt.Sprintf("%s at %s", t.Weekday(), clock)
	case t.Year() == now.Year():
		return fmt.Sprintf("%s at %s", t.Format("Jan 2"), clock)
	default:
		return fmt.Sprintf("%s at %s", t.Format("Jan 2, 2006"), clock)
	}
}

// TrustEventDTO is a data transfer object for trust log entries.
type TrustEventDTO struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	CommitmentID *uuid.UUID `json:"commitment_id,omitempty"`
	EventDate    time.Time  `json:"event_date"`
	Details      string     `json:"details,omitempty"`
}

// ToTrustEventDTO maps a trust event for display in loc.
func ToTrustEventDTO(e *trust.Event, loc *time.Location) TrustEventDTO {
	if loc == nil {
		loc = time.Local
	}
	return TrustEventDTO{
		ID:           e.ID(),
		Type:         e.Type().String(),
		CommitmentID: e.CommitmentID(),
		EventDate:    e.EventDate().In(loc),
		Details:      e.Details(),
	}
}
