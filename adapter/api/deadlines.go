package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

// ResolveDeadlineRequest is the body of POST /v1/deadlines/resolve.
type ResolveDeadlineRequest struct {
	Text   string `json:"text" doc:"Free-text deadline" example:"next friday"`
	Strict bool   `json:"strict,omitempty" required:"false" doc:"Reject text the calendar rules cannot place instead of guessing"`
}

func (e *endpoints) registerDeadlines(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-deadline",
		Method:      http.MethodPost,
		Path:        "/deadlines/resolve",
		Summary:     "Preview how a deadline phrase would be read",
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body ResolveDeadlineRequest
	}) (*struct{ Body queries.ResolvedDeadlineDTO }, error) {
		res, err := e.h.ResolveDeadline.Handle(ctx, queries.ResolveDeadlineQuery{
			Text:   input.Body.Text,
			Strict: input.Body.Strict,
		})
		if err != nil {
			return nil, e.handleError(ctx, err)
		}
		return &struct{ Body queries.ResolvedDeadlineDTO }{Body: *res}, nil
	})
}
