package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// DefaultMaxOverdue is how many overdue commitments block new ones.
const DefaultMaxOverdue = 3

// CreateCommitmentCommand records a new promise. When is free text.
type CreateCommitmentCommand struct {
	UserID        string
	Who           string
	What          string
	When          string
	CorrelationID string
	Now           time.Time
}

// CommandName implements application.Command.
func (CreateCommitmentCommand) CommandName() string { return "commitment.create" }

// CreateCommitmentResult is the stored commitment and how its deadline was read.
type CreateCommitmentResult struct {
	Commitment *commitment.Commitment
	Resolution deadline.Result
}

// CreateCommitmentHandler handles the CreateCommitmentCommand.
type CreateCommitmentHandler struct {
	deps       Deps
	resolver   DeadlineResolver
	maxOverdue int
}

// NewCreateCommitmentHandler creates a new CreateCommitmentHandler.
func NewCreateCommitmentHandler(deps Deps, resolver DeadlineResolver, maxOverdue int) *CreateCommitmentHandler {
	if maxOverdue < 1 {
		maxOverdue = DefaultMaxOverdue
	}
	return &CreateCommitmentHandler{deps: deps.withDefaults(), resolver: resolver, maxOverdue: maxOverdue}
}

// Handle executes the CreateCommitmentCommand. The overdue check and the
// insert run under the owner's lock, so concurrent creates see each other.
func (h *CreateCommitmentHandler) Handle(ctx context.Context, cmd CreateCommitmentCommand) (*CreateCommitmentResult, error) {
	now := nowOr(cmd.Now)

	res, err := h.create(ctx, cmd, now)
	if err != nil {
		err = domainOrInternal(err)
		h.deps.rejected(ctx, "create", err)
		return nil, err
	}

	h.deps.invalidate(ctx, cmd.UserID)
	h.deps.Metrics.Counter(observability.MetricCommitmentsCreated, 1, observability.T("stage", res.Resolution.Stage))
	h.deps.Logger.InfoContext(ctx, "commitment created",
		"commitment_id", res.Commitment.ID(),
		"who", res.Commitment.Who(),
		"deadline", res.Commitment.Deadline(),
		"stage", res.Resolution.Stage,
	)
	return res, nil
}

func (h *CreateCommitmentHandler) create(ctx context.Context, cmd CreateCommitmentCommand, now time.Time) (*CreateCommitmentResult, error) {
	switch {
	case strings.TrimSpace(cmd.Who) == "":
		return nil, commitment.NewValidationError("who is required")
	case strings.TrimSpace(cmd.What) == "":
		return nil, commitment.NewValidationError("what is required")
	case strings.TrimSpace(cmd.When) == "":
		return nil, commitment.NewValidationError("when is required")
	}

	resolution, err := resolveStrict(ctx, h.resolver, cmd.When, now)
	if err != nil {
		return nil, err
	}

	return sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*CreateCommitmentResult, error) {
		if err := h.deps.Commitments.LockOwner(txCtx, cmd.UserID); err != nil {
			return nil, internal(err)
		}
		overdue, err := h.deps.Commitments.CountOverdue(txCtx, cmd.UserID, now)
		if err != nil {
			return nil, internal(err)
		}
		if overdue >= h.maxOverdue {
			return nil, &commitment.PolicyBlockedError{Overdue: overdue, Limit: h.maxOverdue}
		}

		c, err := commitment.New(cmd.UserID, cmd.Who, cmd.What, resolution.At, now)
		if err != nil {
			return nil, err
		}
		if err := h.deps.Commitments.Insert(txCtx, c); err != nil {
			return nil, internal(err)
		}

		md := sharedApplication.NewEventMetadata(cmd.UserID, cmd.CorrelationID)
		if err := h.deps.saveEvents(txCtx, md, c); err != nil {
			return nil, err
		}
		return &CreateCommitmentResult{Commitment: c, Resolution: resolution}, nil
	})
}

// resolveStrict maps an unreadable deadline to a validation error.
func resolveStrict(ctx context.Context, resolver DeadlineResolver, when string, now time.Time) (deadline.Result, error) {
	res, err := resolver.ResolveStrict(ctx, when, now)
	switch {
	case errors.Is(err, deadline.ErrNoMatch):
		return deadline.Result{}, commitment.NewValidationError("could not understand when %q", strings.TrimSpace(when))
	case err != nil:
		return deadline.Result{}, internal(err)
	}
	return res, nil
}

var _ sharedApplication.CommandHandler[CreateCommitmentCommand, *CreateCommitmentResult] = (*CreateCommitmentHandler)(nil)
