package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// LogTrustEventRequest is the body of POST /v1/trust/events.
type LogTrustEventRequest struct {
	Type         string `json:"type,omitempty" required:"false" enum:"chased" doc:"Only chased can be logged by hand; defaults to chased"`
	CommitmentID string `json:"commitment_id,omitempty" required:"false" format:"uuid"`
	Details      string `json:"details,omitempty" required:"false"`
}

func (e *endpoints) registerTrust(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "trust-report",
		Method:      http.MethodGet,
		Path:        "/trust/report",
		Summary:     "Summarise how reliably promises are kept",
		Errors:      []int{http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct{ Owner }) (*struct{ Body queries.TrustReportDTO }, error) {
		report, err := e.h.TrustReport.Handle(ctx, queries.TrustReportQuery{UserID: input.UserID})
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body queries.TrustReportDTO }{Body: *report}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "log-trust-event",
		Method:        http.MethodPost,
		Path:          "/trust/events",
		Summary:       "Append an entry to the trust log",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Owner
		Body LogTrustEventRequest
	}) (*struct{ Body queries.TrustEventDTO }, error) {
		cmd := commands.LogTrustEventCommand{
			UserID:        input.UserID,
			Type:          input.Body.Type,
			Details:       input.Body.Details,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		}
		if cmd.Type == "" {
			cmd.Type = trust.EventChased.String()
		}
		if input.Body.CommitmentID != "" {
			id, err := uuid.Parse(input.Body.CommitmentID)
			if err != nil {
				return nil, e.handleError(ctx, commitment.NewValidationError("invalid commitment id %q", input.Body.CommitmentID))
			}
			cmd.CommitmentID = &id
		}

		ev, err := e.h.LogTrustEvent.Handle(ctx, cmd)
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body queries.TrustEventDTO }{Body: queries.ToTrustEventDTO(ev, e.h.Location)}, nil
	})
}
