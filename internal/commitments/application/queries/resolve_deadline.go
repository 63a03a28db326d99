package queries

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// DeadlineResolver is the full cascade plus its rules-only variant.
type DeadlineResolver interface {
	Resolve(ctx context.Context, text string, now time.Time) deadline.Result
	ResolveStrict(ctx context.Context, text string, now time.Time) (deadline.Result, error)
}

// ResolveDeadlineQuery previews how text would be placed on the calendar.
type ResolveDeadlineQuery struct {
	Text   string
	Strict bool
	Now    time.Time
}

// QueryName implements application.Query.
func (ResolveDeadlineQuery) QueryName() string { return "deadline.resolve" }

// ResolvedDeadlineDTO reports the instant and the stage that produced it.
type ResolvedDeadlineDTO struct {
	Input       string    `json:"input"`
	At          time.Time `json:"at"`
	Human       string    `json:"human"`
	Stage       string    `json:"stage"`
	Rule        string    `json:"rule,omitempty"`
	CurrentTime time.Time `json:"current_time"`
}

// ResolveDeadlineHandler handles the ResolveDeadlineQuery.
type ResolveDeadlineHandler struct {
	resolver DeadlineResolver
	location *time.Location
}

// NewResolveDeadlineHandler creates a new ResolveDeadlineHandler.
func NewResolveDeadlineHandler(resolver DeadlineResolver, loc *time.Location) *ResolveDeadlineHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ResolveDeadlineHandler{resolver: resolver, location: loc}
}

// Handle executes the ResolveDeadlineQuery.
func (h *ResolveDeadlineHandler) Handle(ctx context.Context, query ResolveDeadlineQuery) (*ResolvedDeadlineDTO, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, commitment.NewValidationError("text is required")
	}
	now := nowOr(query.Now).In(h.location)

	var res deadline.Result
	if query.Strict {
		var err error
		res, err = h.resolver.ResolveStrict(ctx, text, now)
		switch {
		case errors.Is(err, deadline.ErrNoMatch):
			return nil, commitment.NewValidationError("could not understand when %q", text)
		case err != nil:
			return nil, internal(err)
		}
	} else {
		res = h.resolver.Resolve(ctx, text, now)
	}

	at := res.At.In(h.location)
	return &ResolvedDeadlineDTO{
		Input:       text,
		At:          at,
		Human:       HumanizeDeadline(at, now),
		Stage:       res.Stage,
		Rule:        res.Rule,
		CurrentTime: now,
	}, nil
}

var _ sharedApplication.QueryHandler[ResolveDeadlineQuery, *ResolvedDeadlineDTO] = (*ResolveDeadlineHandler)(nil)
