package commands

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// RescheduleCommitmentCommand moves a promise to a new deadline. When is free text.
type RescheduleCommitmentCommand struct {
	ID            uuid.UUID
	UserID        string
	When          string
	Reason        string
	CorrelationID string
	Now           time.Time
}

// CommandName implements application.Command.
func (RescheduleCommitmentCommand) CommandName() string { return "commitment.reschedule" }

// RescheduleCommitmentResult holds the closed original and its replacement.
type RescheduleCommitmentResult struct {
	Original   *commitment.Commitment
	Forwarded  *commitment.Commitment
	Resolution deadline.Result
}

// RescheduleCommitmentHandler handles the RescheduleCommitmentCommand.
type RescheduleCommitmentHandler struct {
	deps     Deps
	resolver DeadlineResolver
}

// NewRescheduleCommitmentHandler creates a new RescheduleCommitmentHandler.
func NewRescheduleCommitmentHandler(deps Deps, resolver DeadlineResolver) *RescheduleCommitmentHandler {
	return &RescheduleCommitmentHandler{deps: deps.withDefaults(), resolver: resolver}
}

// Handle executes the RescheduleCommitmentCommand. The overdue policy does
// not apply: moving a promise is how a broken one gets fixed.
func (h *RescheduleCommitmentHandler) Handle(ctx context.Context, cmd RescheduleCommitmentCommand) (*RescheduleCommitmentResult, error) {
	now := nowOr(cmd.Now)

	if strings.TrimSpace(cmd.When) == "" {
		err := commitment.NewValidationError("when is required")
		h.deps.rejected(ctx, "reschedule", err)
		return nil, err
	}
	resolution, err := resolveStrict(ctx, h.resolver, cmd.When, now)
	if err != nil {
		h.deps.rejected(ctx, "reschedule", err)
		return nil, err
	}

	req := transitionRequest{op: "reschedule", id: cmd.ID, userID: cmd.UserID, correlationID: cmd.CorrelationID, now: now}
	c, eff, err := h.deps.transition(ctx, req, func(c *commitment.Commitment, now time.Time) (effects, error) {
		next, err := c.Reschedule(resolution.At, cmd.Reason, now)
		if err != nil {
			return effects{}, err
		}
		return effects{forwarded: next, event: trust.Rescheduled(c, now)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &RescheduleCommitmentResult{Original: c, Forwarded: eff.forwarded, Resolution: resolution}, nil
}

var _ sharedApplication.CommandHandler[RescheduleCommitmentCommand, *RescheduleCommitmentResult] = (*RescheduleCommitmentHandler)(nil)
