package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// GetCommitmentQuery contains the parameters for getting a commitment.
type GetCommitmentQuery struct {
	ID     uuid.UUID
	UserID string
	Now    time.Time
}

// QueryName implements application.Query.
func (GetCommitmentQuery) QueryName() string { return "commitment.get" }

// GetCommitmentHandler handles the GetCommitmentQuery.
type GetCommitmentHandler struct {
	repo     commitment.Repository
	location *time.Location
}

// NewGetCommitmentHandler creates a new GetCommitmentHandler.
func NewGetCommitmentHandler(repo commitment.Repository, loc *time.Location) *GetCommitmentHandler {
	return &GetCommitmentHandler{repo: repo, location: loc}
}

// Handle executes the GetCommitmentQuery.
func (h *GetCommitmentHandler) Handle(ctx context.Context, query GetCommitmentQuery) (*CommitmentDTO, error) {
	c, err := h.repo.FindByID(ctx, query.ID, query.UserID)
	if err != nil {
		if errors.Is(err, commitment.ErrCommitmentNotFound) {
			return nil, err
		}
		return nil, internal(err)
	}

	dto := ToCommitmentDTO(c, nowOr(query.Now), h.location)
	return &dto, nil
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", commitment.ErrInternal, err)
}

func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

var _ sharedApplication.QueryHandler[GetCommitmentQuery, *CommitmentDTO] = (*GetCommitmentHandler)(nil)
