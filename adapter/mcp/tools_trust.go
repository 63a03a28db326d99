package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
)

type trustReportInput struct{}

type trustChasedInput struct {
	CommitmentID string `json:"commitment_id,omitempty"`
	Details      string `json:"details,omitempty"`
}

type trustTools struct {
	app *cli.App
}

func registerTrustTools(srv *mcp.Server, deps ToolDependencies) error {
	t := trustTools{app: deps.App}

	srv.Tool("trust.report").
		Description("Summarise this week's promises: made, kept, rescheduled, broken, and who is waiting longest").
		Handler(t.report)

	srv.Tool("trust.log_chased").
		Description("Record that someone had to chase you about a promise").
		Handler(t.logChased)

	return nil
}

func (t trustTools) report(ctx context.Context, _ trustReportInput) (*queries.TrustReportDTO, error) {
	if t.app.TrustReportHandler == nil {
		return nil, errors.New("trust report requires database connection")
	}
	return t.app.TrustReportHandler.Handle(ctx, queries.TrustReportQuery{UserID: t.app.CurrentUserID})
}

func (t trustTools) logChased(ctx context.Context, input trustChasedInput) (*queries.TrustEventDTO, error) {
	if t.app.LogTrustEventHandler == nil {
		return nil, errors.New("trust log requires database connection")
	}
	commitmentID, err := parseOptionalUUID(input.CommitmentID)
	if err != nil {
		return nil, err
	}
	ctx, correlationID := toolContext(ctx, t.app.CurrentUserID)

	ev, err := t.app.LogTrustEventHandler.Handle(ctx, commands.LogTrustEventCommand{
		UserID:        t.app.CurrentUserID,
		Type:          trust.EventChased.String(),
		CommitmentID:  commitmentID,
		Details:       input.Details,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	dto := queries.ToTrustEventDTO(ev, t.app.Location)
	return &dto, nil
}
