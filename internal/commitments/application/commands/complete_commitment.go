package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// CompleteCommitmentCommand marks a promise as kept.
type CompleteCommitmentCommand struct {
	ID            uuid.UUID
	UserID        string
	CorrelationID string
	Now           time.Time
}

// CommandName implements application.Command.
func (CompleteCommitmentCommand) CommandName() string { return "commitment.complete" }

// CompleteCommitmentHandler handles the CompleteCommitmentCommand.
type CompleteCommitmentHandler struct {
	deps Deps
}

// NewCompleteCommitmentHandler creates a new CompleteCommitmentHandler.
func NewCompleteCommitmentHandler(deps Deps) *CompleteCommitmentHandler {
	return &CompleteCommitmentHandler{deps: deps.withDefaults()}
}

// Handle executes the CompleteCommitmentCommand. A commitment_kept event is
// logged alongside the status change.
func (h *CompleteCommitmentHandler) Handle(ctx context.Context, cmd CompleteCommitmentCommand) (*commitment.Commitment, error) {
	req := transitionRequest{op: "complete", id: cmd.ID, userID: cmd.UserID, correlationID: cmd.CorrelationID, now: nowOr(cmd.Now)}

	c, _, err := h.deps.transition(ctx, req, func(c *commitment.Commitment, now time.Time) (effects, error) {
		if err := c.Complete(now); err != nil {
			return effects{}, err
		}
		return effects{event: trust.Kept(c, now)}, nil
	})
	return c, err
}

var _ sharedApplication.CommandHandler[CompleteCommitmentCommand, *commitment.Commitment] = (*CompleteCommitmentHandler)(nil)
