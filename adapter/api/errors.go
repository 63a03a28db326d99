package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
)

type apiErrorBody struct {
	Code    string         `json:"code" example:"policy_blocked"`
	Message string         `json:"message" example:"you have 3 broken promises; fix those first"`
	Details map[string]any `json:"details,omitempty"`
}

// apiError is the error envelope every failure is rendered in.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message, Details: details}}
}

var envelopeOnce sync.Once

// installErrorEnvelope routes huma's own errors, such as request validation,
// through apiError.
func installErrorEnvelope() {
	envelopeOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			var details map[string]any
			if len(errs) > 0 {
				msgs := make([]string, 0, len(errs))
				for _, err := range errs {
					msgs = append(msgs, err.Error())
				}
				details = map[string]any{"errors": msgs}
			}
			return newAPIError(status, "", msg, details)
		}
	})
}

// handleError maps application errors to HTTP. Anything unrecognised is
// logged and reported as an opaque internal error.
func (e *endpoints) handleError(ctx context.Context, err error) huma.StatusError {
	var (
		verr    *commitment.ValidationError
		policy  *commitment.PolicyBlockedError
		illegal *commitment.IllegalTransitionError
	)
	switch {
	case errors.As(err, &verr):
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", verr.Reason, nil)
	case errors.As(err, &policy):
		return newAPIError(http.StatusConflict, "policy_blocked", policy.Error(),
			map[string]any{"overdue": policy.Overdue, "limit": policy.Limit})
	case errors.As(err, &illegal):
		return newAPIError(http.StatusConflict, "illegal_transition", illegal.Error(),
			map[string]any{"status": illegal.Status.String()})
	case errors.Is(err, commitment.ErrCommitmentNotFound):
		return newAPIError(http.StatusNotFound, "not_found", commitment.ErrCommitmentNotFound.Error(), nil)
	default:
		e.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		return newAPIError(http.StatusInternalServerError, "internal_error", commitment.ErrInternal.Error(), nil)
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
