package api

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/infrastructure/calendar"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

const userHeader = "X-User-ID"

// Owner is embedded by every input that acts on a user's data.
type Owner struct {
	UserID string `header:"X-User-ID" required:"true" minLength:"1" doc:"Owner of the commitments"`
}

// CreateCommitmentRequest is the body of POST /v1/commitments.
type CreateCommitmentRequest struct {
	Who  string `json:"who" doc:"Who the promise was made to"`
	What string `json:"what" doc:"What was promised"`
	When string `json:"when" doc:"Free-text deadline, e.g. \"friday\" or \"tomorrow at 3pm\"" example:"tomorrow at 3pm"`
}

// UpdateCommitmentRequest is the body of PATCH /v1/commitments/{id}. Exactly
// one change is allowed per request.
type UpdateCommitmentRequest struct {
	Status            string `json:"status,omitempty" enum:"completed,rescheduled" required:"false"`
	RescheduledTo     string `json:"rescheduled_to,omitempty" required:"false" doc:"Free-text new deadline"`
	RescheduledReason string `json:"rescheduled_reason,omitempty" required:"false"`
	Snooze            bool   `json:"snooze,omitempty" required:"false"`
}

// CommitmentResponse is a commitment plus how its deadline was read.
type CommitmentResponse struct {
	queries.CommitmentDTO
	DeadlineStage string `json:"deadline_stage,omitempty"`
	DeadlineRule  string `json:"deadline_rule,omitempty"`
}

// UpdateCommitmentResponse carries the replacement when a commitment was rescheduled.
type UpdateCommitmentResponse struct {
	Commitment queries.CommitmentDTO  `json:"commitment"`
	Forwarded  *queries.CommitmentDTO `json:"forwarded,omitempty"`
}

type calendarOutput struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// CommitmentPath addresses one of the owner's commitments.
type CommitmentPath struct {
	Owner
	ID string `path:"id" format:"uuid"`
}

func (p CommitmentPath) parseID() (uuid.UUID, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, commitment.NewValidationError("invalid commitment id %q", p.ID)
	}
	return id, nil
}

func (e *endpoints) registerCommitments(api huma.API) {
	errs := []int{
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusUnprocessableEntity,
		http.StatusInternalServerError,
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-commitment",
		Method:        http.MethodPost,
		Path:          "/commitments",
		Summary:       "Record a promise",
		DefaultStatus: http.StatusCreated,
		Errors:        errs,
	}, func(ctx context.Context, input *struct {
		Owner
		Body CreateCommitmentRequest
	}) (*struct{ Body CommitmentResponse }, error) {
		res, err := e.h.CreateCommitment.Handle(ctx, commands.CreateCommitmentCommand{
			UserID:        input.UserID,
			Who:           input.Body.Who,
			What:          input.Body.What,
			When:          input.Body.When,
			CorrelationID: observability.CorrelationIDFromContext(ctx),
		})
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body CommitmentResponse }{Body: CommitmentResponse{
			CommitmentDTO: e.toDTO(res.Commitment),
			DeadlineStage: res.Resolution.Stage,
			DeadlineRule:  res.Resolution.Rule,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-commitments",
		Method:      http.MethodGet,
		Path:        "/commitments",
		Summary:     "List commitments, latest deadline first",
		Errors:      errs,
	}, func(ctx context.Context, input *struct {
		Owner
		Status string `query:"status" enum:"all,pending,completed,rescheduled" required:"false"`
	}) (*struct{ Body []queries.CommitmentDTO }, error) {
		list, err := e.h.ListCommitments.Handle(ctx, queries.ListCommitmentsQuery{UserID: input.UserID, Status: input.Status})
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body []queries.CommitmentDTO }{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "commitments-calendar",
		Method:      http.MethodGet,
		Path:        "/commitments/calendar.ics",
		Summary:     "Pending commitments as an iCalendar feed, 204 when there are none",
		Errors:      []int{http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct{ Owner }) (*calendarOutput, error) {
		now := time.Now()
		list, err := e.h.ListCommitments.Handle(ctx, queries.ListCommitmentsQuery{
			UserID: input.UserID,
			Status: string(commitment.StatusPending),
			Now:    now,
		})
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		if len(list) == 0 {
			return &calendarOutput{Status: http.StatusNoContent}, nil
		}
		var buf bytes.Buffer
		if err := calendar.Encode(&buf, list, now); err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &calendarOutput{Status: http.StatusOK, ContentType: calendar.ContentType, Body: buf.Bytes()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-commitment",
		Method:      http.MethodGet,
		Path:        "/commitments/{id}",
		Summary:     "Get a commitment",
		Errors:      errs,
	}, func(ctx context.Context, input *CommitmentPath) (*struct{ Body queries.CommitmentDTO }, error) {
		id, err := input.parseID()
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		dto, err := e.h.GetCommitment.Handle(ctx, queries.GetCommitmentQuery{ID: id, UserID: input.UserID})
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body queries.CommitmentDTO }{Body: *dto}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-commitment",
		Method:      http.MethodPatch,
		Path:        "/commitments/{id}",
		Summary:     "Complete, snooze or reschedule a commitment",
		Errors:      errs,
	}, func(ctx context.Context, input *struct {
		CommitmentPath
		Body UpdateCommitmentRequest
	}) (*struct{ Body UpdateCommitmentResponse }, error) {
		id, err := input.parseID()
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		resp, err := e.update(ctx, id, input.UserID, input.Body)
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body UpdateCommitmentResponse }{Body: *resp}, nil
	})
}

func (e *endpoints) update(ctx context.Context, id uuid.UUID, userID string, body UpdateCommitmentRequest) (*UpdateCommitmentResponse, error) {
	correlationID := observability.CorrelationIDFromContext(ctx)

	switch {
	case body.Snooze && body.Status == "" && body.RescheduledTo == "":
		c, err := e.h.SnoozeCommitment.Handle(ctx, commands.SnoozeCommitmentCommand{ID: id, UserID: userID, CorrelationID: correlationID})
		if err != nil {
			return nil, err
		}
		return &UpdateCommitmentResponse{Commitment: e.toDTO(c)}, nil

	case body.Status == string(commitment.StatusCompleted) && !body.Snooze && body.RescheduledTo == "":
		c, err := e.h.CompleteCommitment.Handle(ctx, commands.CompleteCommitmentCommand{ID: id, UserID: userID, CorrelationID: correlationID})
		if err != nil {
			return nil, err
		}
		return &UpdateCommitmentResponse{Commitment: e.toDTO(c)}, nil

	case body.Status == string(commitment.StatusRescheduled) && !body.Snooze:
		if strings.TrimSpace(body.RescheduledTo) == "" {
			return nil, commitment.NewValidationError("rescheduled_to is required")
		}
		res, err := e.h.RescheduleCommitment.Handle(ctx, commands.RescheduleCommitmentCommand{
			ID:            id,
			UserID:        userID,
			When:          body.RescheduledTo,
			Reason:        body.RescheduledReason,
			CorrelationID: correlationID,
		})
		if err != nil {
			return nil, err
		}
		forwarded := e.toDTO(res.Forwarded)
		return &UpdateCommitmentResponse{Commitment: e.toDTO(res.Original), Forwarded: &forwarded}, nil
	}

	return nil, commitment.NewValidationError("send exactly one of status=completed, status=rescheduled with rescheduled_to, or snooze=true")
}

func (e *endpoints) toDTO(c *commitment.Commitment) queries.CommitmentDTO {
	return queries.ToCommitmentDTO(c, time.Now(), e.h.Location)
}
