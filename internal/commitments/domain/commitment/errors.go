package commitment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrCommitmentNotFound is returned when an id does not exist for the owner.
	ErrCommitmentNotFound = errors.New("commitment not found")

	// ErrInternal marks storage or infrastructure failures. Its message is
	// what callers outside the process see.
	ErrInternal = errors.New("internal error")
)

// ValidationError is a missing field or a deadline that could not be understood.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PolicyBlockedError rejects new commitments while too many are overdue.
type PolicyBlockedError struct {
	Overdue int
	Limit   int
}

func (e *PolicyBlockedError) Error() string {
	return fmt.Sprintf("you have %d broken promises; fix those first", e.Overdue)
}

// IllegalTransitionError is an operation the commitment's state does not allow.
type IllegalTransitionError struct {
	ID     uuid.UUID
	Op     string
	Status Status
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s commitment: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("cannot %s commitment: it is %s", e.Op, e.Status)
}

// NotFoundError names the missing commitment.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("commitment %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrCommitmentNotFound }
