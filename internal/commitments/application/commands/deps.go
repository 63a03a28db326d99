// Package commands implements the commitment lifecycle: every state change
// runs in one unit of work together with its trust event and outbox messages.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
	"github.com/felixgeelhaar/vouch/internal/shared/domain"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// DeadlineResolver places free text on the calendar, refusing what it cannot read.
type DeadlineResolver interface {
	ResolveStrict(ctx context.Context, text string, now time.Time) (deadline.Result, error)
}

// ReportInvalidator drops cached trust reports after a change.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Deps are the collaborators shared by every lifecycle handler.
type Deps struct {
	Commitments commitment.Repository
	TrustEvents trust.Repository
	Outbox      outbox.Repository
	UoW         sharedApplication.UnitOfWork
	Cache       ReportInvalidator
	Logger      *slog.Logger
	Metrics     observability.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = observability.DiscardLogger()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NoopMetrics{}
	}
	return d
}

// saveEvents writes the pending domain events of every aggregate to the outbox.
func (d Deps) saveEvents(ctx context.Context, md domain.EventMetadata, aggregates ...domain.AggregateRoot) error {
	var events []domain.DomainEvent
	for _, a := range aggregates {
		events = append(events, a.DomainEvents()...)
	}
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, md)

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return internal(err)
	}
	if err := d.Outbox.SaveBatch(ctx, msgs); err != nil {
		return internal(err)
	}
	for _, a := range aggregates {
		a.ClearDomainEvents()
	}
	return nil
}

// invalidate is best effort; the report expires on its own.
func (d Deps) invalidate(ctx context.Context, userID string) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(ctx, userID); err != nil {
		d.Logger.WarnContext(ctx, "trust report cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (d Deps) rejected(ctx context.Context, op string, err error) {
	kind := "internal"
	var (
		verr    *commitment.ValidationError
		policy  *commitment.PolicyBlockedError
		illegal *commitment.IllegalTransitionError
	)
	switch {
	case errors.As(err, &verr):
		kind = "validation"
	case errors.As(err, &policy):
		kind = "policy"
	case errors.As(err, &illegal):
		kind = "illegal_transition"
	case errors.Is(err, commitment.ErrCommitmentNotFound):
		kind = "not_found"
	}
	d.Metrics.Counter(observability.MetricTransitionRejected, 1, observability.T("op", op), observability.T("kind", kind))

	level := slog.LevelInfo
	if kind == "internal" {
		level = slog.LevelError
	}
	d.Logger.Log(ctx, level, "commitment operation rejected", "op", op, "kind", kind, "error", err)
}

// internal wraps an infrastructure failure so callers can tell it from a domain rejection.
func internal(err error) error {
	return fmt.Errorf("%w: %w", commitment.ErrInternal, err)
}

// isDomainError reports whether err is a rejection callers should see as is.
func isDomainError(err error) bool {
	var (
		verr    *commitment.ValidationError
		policy  *commitment.PolicyBlockedError
		illegal *commitment.IllegalTransitionError
	)
	return errors.As(err, &verr) || errors.As(err, &policy) || errors.As(err, &illegal) ||
		errors.Is(err, commitment.ErrCommitmentNotFound) || errors.Is(err, commitment.ErrInternal)
}

func domainOrInternal(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return internal(err)
}

func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
