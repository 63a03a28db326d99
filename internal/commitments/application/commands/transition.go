package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
	"github.com/felixgeelhaar/vouch/internal/shared/domain"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// effects are what a transition adds besides the updated commitment.
type effects struct {
	forwarded *commitment.Commitment
	event     *trust.Event
}

type applyFunc func(c *commitment.Commitment, now time.Time) (effects, error)

type transitionRequest struct {
	op            string
	id            uuid.UUID
	userID        string
	correlationID string
	now           time.Time
}

// transition loads the commitment, applies fn and writes everything it
// produced in one unit of work. The update only lands if the stored row is
// still in the state fn saw; otherwise the caller gets an IllegalTransitionError.
func (d Deps) transition(ctx context.Context, req transitionRequest, fn applyFunc) (*commitment.Commitment, effects, error) {
	type outcome struct {
		c   *commitment.Commitment
		eff effects
	}

	out, err := sharedApplication.WithUnitOfWorkResult(ctx, d.UoW, func(txCtx context.Context) (outcome, error) {
		c, err := d.Commitments.FindByID(txCtx, req.id, req.userID)
		if err != nil {
			return outcome{}, domainOrInternal(err)
		}

		guard := c.Guard()
		eff, err := fn(c, req.now)
		if err != nil {
			return outcome{}, err
		}

		ok, err := d.Commitments.UpdateIf(txCtx, c, guard)
		if err != nil {
			return outcome{}, internal(err)
		}
		if !ok {
			return outcome{}, d.lostRace(txCtx, req)
		}

		aggregates := []domain.AggregateRoot{c}
		if eff.forwarded != nil {
			if err := d.Commitments.Insert(txCtx, eff.forwarded); err != nil {
				return outcome{}, internal(err)
			}
			aggregates = append(aggregates, eff.forwarded)
		}
		if eff.event != nil {
			if err := d.TrustEvents.Append(txCtx, eff.event); err != nil {
				return outcome{}, internal(err)
			}
			aggregates = append(aggregates, eff.event)
		}

		md := sharedApplication.NewEventMetadata(req.userID, req.correlationID)
		if err := d.saveEvents(txCtx, md, aggregates...); err != nil {
			return outcome{}, err
		}
		return outcome{c: c, eff: eff}, nil
	})
	if err != nil {
		err = domainOrInternal(err)
		d.rejected(ctx, req.op, err)
		return nil, effects{}, err
	}

	d.invalidate(ctx, req.userID)
	d.Metrics.Counter(observability.MetricTransitions, 1, observability.T("op", req.op))
	d.Logger.InfoContext(ctx, "commitment transitioned",
		"op", req.op,
		"commitment_id", out.c.ID(),
		"status", out.c.Status(),
	)
	return out.c, out.eff, nil
}

// lostRace explains a conditional update that matched no row.
func (d Deps) lostRace(ctx context.Context, req transitionRequest) error {
	current, err := d.Commitments.FindByID(ctx, req.id, req.userID)
	if err != nil {
		return domainOrInternal(err)
	}
	if !current.IsPending() {
		return &commitment.IllegalTransitionError{ID: req.id, Op: req.op, Status: current.Status()}
	}
	return &commitment.IllegalTransitionError{
		ID:     req.id,
		Op:     req.op,
		Status: current.Status(),
		Reason: "it was changed concurrently",
	}
}
