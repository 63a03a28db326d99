package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// ListCommitmentsQuery contains the parameters for listing commitments.
type ListCommitmentsQuery struct {
	UserID string
	Status string // empty or "all" for every status
	Now    time.Time
}

// QueryName implements application.Query.
func (ListCommitmentsQuery) QueryName() string { return "commitment.list" }

// ListCommitmentsHandler handles the ListCommitmentsQuery.
type ListCommitmentsHandler struct {
	repo     commitment.Repository
	location *time.Location
}

// NewListCommitmentsHandler creates a new ListCommitmentsHandler.
func NewListCommitmentsHandler(repo commitment.Repository, loc *time.Location) *ListCommitmentsHandler {
	return &ListCommitmentsHandler{repo: repo, location: loc}
}

// Handle executes the ListCommitmentsQuery. Latest deadline first.
func (h *ListCommitmentsHandler) Handle(ctx context.Context, query ListCommitmentsQuery) ([]CommitmentDTO, error) {
	var filter commitment.Status
	if query.Status != "" && query.Status != "all" {
		s, err := commitment.ParseStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter = s
	}

	cs, err := h.repo.ListByOwner(ctx, query.UserID)
	if err != nil {
		return nil, internal(err)
	}

	if filter != "" {
		kept := cs[:0]
		for _, c := range cs {
			if c.Status() == filter {
				kept = append(kept, c)
			}
		}
		cs = kept
	}

	return toCommitmentDTOs(cs, nowOr(query.Now), h.location), nil
}

var _ sharedApplication.QueryHandler[ListCommitmentsQuery, []CommitmentDTO] = (*ListCommitmentsHandler)(nil)
