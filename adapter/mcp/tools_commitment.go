package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

type commitmentCreateInput struct {
	Who  string `json:"who" jsonschema:"required"`
	What string `json:"what" jsonschema:"required"`
	When string `json:"when" jsonschema:"required"`
}

type commitmentListInput struct {
	Status string `json:"status,omitempty"`
}

type commitmentIDInput struct {
	CommitmentID string `json:"commitment_id" jsonschema:"required"`
}

type commitmentRescheduleInput struct {
	CommitmentID string `json:"commitment_id" jsonschema:"required"`
	To           string `json:"to" jsonschema:"required"`
	Reason       string `json:"reason,omitempty"`
}

type commitmentCreateOutput struct {
	Commitment    queries.CommitmentDTO `json:"commitment"`
	DeadlineStage string                `json:"deadline_stage"`
}

type commitmentRescheduleOutput struct {
	Original  queries.CommitmentDTO `json:"original"`
	Forwarded queries.CommitmentDTO `json:"forwarded"`
}

type commitmentTools struct {
	app *cli.App
	now func() time.Time
}

func registerCommitmentTools(srv *mcp.Server, deps ToolDependencies) error {
	t := commitmentTools{app: deps.App, now: time.Now}

	srv.Tool("commitment.create").
		Description("Record a promise made to someone. 'when' is a plain-language deadline such as 'friday' or 'tomorrow at 3pm'.").
		Handler(t.create)

	srv.Tool("commitment.list").
		Description("List commitments, latest deadline first. Optional status: pending, completed, rescheduled, all.").
		Handler(t.list)

	srv.Tool("commitment.complete").
		Description("Mark a commitment as kept").
		Handler(t.complete)

	srv.Tool("commitment.snooze").
		Description("Push a pending commitment back by one hour. Allowed at most twice.").
		Handler(t.snooze)

	srv.Tool("commitment.reschedule").
		Description("Close a commitment as rescheduled and carry it forward to a new deadline").
		Handler(t.reschedule)

	return nil
}

func (t commitmentTools) create(ctx context.Context, input commitmentCreateInput) (*commitmentCreateOutput, error) {
	if t.app.CreateCommitmentHandler == nil {
		return nil, errors.New("recording commitments requires database connection")
	}
	ctx, correlationID := toolContext(ctx, t.app.CurrentUserID)

	res, err := t.app.CreateCommitmentHandler.Handle(ctx, commands.CreateCommitmentCommand{
		UserID:        t.app.CurrentUserID,
		Who:           input.Who,
		What:          input.What,
		When:          input.When,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return &commitmentCreateOutput{
		Commitment:    queries.ToCommitmentDTO(res.Commitment, t.now(), t.app.Location),
		DeadlineStage: res.Resolution.Stage,
	}, nil
}

func (t commitmentTools) list(ctx context.Context, input commitmentListInput) ([]queries.CommitmentDTO, error) {
	if t.app.ListCommitmentsHandler == nil {
		return nil, errors.New("listing commitments requires database connection")
	}
	return t.app.ListCommitmentsHandler.Handle(ctx, queries.ListCommitmentsQuery{
		UserID: t.app.CurrentUserID,
		Status: input.Status,
	})
}

func (t commitmentTools) complete(ctx context.Context, input commitmentIDInput) (*queries.CommitmentDTO, error) {
	if t.app.CompleteCommitmentHandler == nil {
		return nil, errors.New("completing commitments requires database connection")
	}
	id, err := parseUUID(input.CommitmentID)
	if err != nil {
		return nil, err
	}
	ctx, correlationID := toolContext(ctx, t.app.CurrentUserID)

	c, err := t.app.CompleteCommitmentHandler.Handle(ctx, commands.CompleteCommitmentCommand{
		ID:            id,
		UserID:        t.app.CurrentUserID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	dto := queries.ToCommitmentDTO(c, t.now(), t.app.Location)
	return &dto, nil
}

func (t commitmentTools) snooze(ctx context.Context, input commitmentIDInput) (*queries.CommitmentDTO, error) {
	if t.app.SnoozeCommitmentHandler == nil {
		return nil, errors.New("snoozing commitments requires database connection")
	}
	id, err := parseUUID(input.CommitmentID)
	if err != nil {
		return nil, err
	}
	ctx, correlationID := toolContext(ctx, t.app.CurrentUserID)

	c, err := t.app.SnoozeCommitmentHandler.Handle(ctx, commands.SnoozeCommitmentCommand{
		ID:            id,
		UserID:        t.app.CurrentUserID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	dto := queries.ToCommitmentDTO(c, t.now(), t.app.Location)
	return &dto, nil
}

func (t commitmentTools) reschedule(ctx context.Context, input commitmentRescheduleInput) (*commitmentRescheduleOutput, error) {
	if t.app.RescheduleCommitmentHandler == nil {
		return nil, errors.New("rescheduling commitments requires database connection")
	}
	id, err := parseUUID(input.CommitmentID)
	if err != nil {
		return nil, err
	}
	ctx, correlationID := toolContext(ctx, t.app.CurrentUserID)

	res, err := t.app.RescheduleCommitmentHandler.Handle(ctx, commands.RescheduleCommitmentCommand{
		ID:            id,
		UserID:        t.app.CurrentUserID,
		When:          input.To,
		Reason:        input.Reason,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	now := t.now()
	return &commitmentRescheduleOutput{
		Original:  queries.ToCommitmentDTO(res.Original, now, t.app.Location),
		Forwarded: queries.ToCommitmentDTO(res.Forwarded, now, t.app.Location),
	}, nil
}
