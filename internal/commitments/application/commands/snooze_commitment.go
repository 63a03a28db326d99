package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// SnoozeCommitmentCommand pushes a deadline back by one interval.
type SnoozeCommitmentCommand struct {
	ID            uuid.UUID
	UserID        string
	CorrelationID string
	Now           time.Time
}

// CommandName implements application.Command.
func (SnoozeCommitmentCommand) CommandName() string { return "commitment.snooze" }

// SnoozeCommitmentHandler handles the SnoozeCommitmentCommand.
type SnoozeCommitmentHandler struct {
	deps Deps
}

// NewSnoozeCommitmentHandler creates a new SnoozeCommitmentHandler.
func NewSnoozeCommitmentHandler(deps Deps) *SnoozeCommitmentHandler {
	return &SnoozeCommitmentHandler{deps: deps.withDefaults()}
}

// Handle executes the SnoozeCommitmentCommand. Snoozes are not trust events.
func (h *SnoozeCommitmentHandler) Handle(ctx context.Context, cmd SnoozeCommitmentCommand) (*commitment.Commitment, error) {
	req := transitionRequest{op: "snooze", id: cmd.ID, userID: cmd.UserID, correlationID: cmd.CorrelationID, now: nowOr(cmd.Now)}

	c, _, err := h.deps.transition(ctx, req, func(c *commitment.Commitment, now time.Time) (effects, error) {
		return effects{}, c.Snooze(now)
	})
	return c, err
}

var _ sharedApplication.CommandHandler[SnoozeCommitmentCommand, *commitment.Commitment] = (*SnoozeCommitmentHandler)(nil)
