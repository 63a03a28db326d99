package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// LogTrustEventCommand appends a manual entry to the trust log. Only chased
// entries are accepted; kept and rescheduled entries belong to their transition.
type LogTrustEventCommand struct {
	UserID        string
	Type          string
	CommitmentID  *uuid.UUID
	Details       string
	CorrelationID string
	Now           time.Time
}

// CommandName implements application.Command.
func (LogTrustEventCommand) CommandName() string { return "trust.log_event" }

// LogTrustEventHandler handles the LogTrustEventCommand.
type LogTrustEventHandler struct {
	deps Deps
}

// NewLogTrustEventHandler creates a new LogTrustEventHandler.
func NewLogTrustEventHandler(deps Deps) *LogTrustEventHandler {
	return &LogTrustEventHandler{deps: deps.withDefaults()}
}

// Handle executes the LogTrustEventCommand.
func (h *LogTrustEventHandler) Handle(ctx context.Context, cmd LogTrustEventCommand) (*trust.Event, error) {
	ev, err := h.log(ctx, cmd, nowOr(cmd.Now))
	if err != nil {
		err = domainOrInternal(err)
		h.deps.rejected(ctx, "log_event", err)
		return nil, err
	}

	h.deps.invalidate(ctx, cmd.UserID)
	h.deps.Logger.InfoContext(ctx, "trust event logged", "event_id", ev.ID(), "type", ev.Type())
	return ev, nil
}

func (h *LogTrustEventHandler) log(ctx context.Context, cmd LogTrustEventCommand, now time.Time) (*trust.Event, error) {
	t, err := trust.ParseEventType(cmd.Type)
	if err != nil {
		return nil, err
	}
	if t != trust.EventChased {
		return nil, commitment.NewValidationError("%s events are recorded by their transition", t)
	}

	return sharedApplication.WithUnitOfWorkResult(ctx, h.deps.UoW, func(txCtx context.Context) (*trust.Event, error) {
		if cmd.CommitmentID != nil {
			if _, err := h.deps.Commitments.FindByID(txCtx, *cmd.CommitmentID, cmd.UserID); err != nil {
				return nil, err
			}
		}

		ev, err := trust.NewEvent(cmd.UserID, t, cmd.CommitmentID, cmd.Details, now)
		if err != nil {
			return nil, err
		}
		if err := h.deps.TrustEvents.Append(txCtx, ev); err != nil {
			return nil, internal(err)
		}

		md := sharedApplication.NewEventMetadata(cmd.UserID, cmd.CorrelationID)
		if err := h.deps.saveEvents(txCtx, md, ev); err != nil {
			return nil, err
		}
		return ev, nil
	})
}

var _ sharedApplication.CommandHandler[LogTrustEventCommand, *trust.Event] = (*LogTrustEventHandler)(nil)
