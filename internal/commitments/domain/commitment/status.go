package commitment

// Status is the lifecycle state. Pending is the only non-terminal state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusCompleted   Status = "completed"
	StatusRescheduled Status = "rescheduled"
)

// ParseStatus validates a stored or requested status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusRescheduled:
		return Status(s), nil
	default:
		return "", NewValidationError("unknown commitment status %q", s)
	}
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRescheduled
}
