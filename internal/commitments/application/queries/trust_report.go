package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	"github.com/felixgeelhaar/vouch/pkg/observability"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
)

// TopBrokenLimit is how many people the report ranks.
const TopBrokenLimit = 5

// WeekDTO summarises commitments created since the start of the week.
type WeekDTO struct {
	Since       time.Time `json:"since"`
	Total       int       `json:"total"`
	Kept        int       `json:"kept"`
	Rescheduled int       `json:"rescheduled"`
	Broken      int       `json:"broken"`
}

// PersonCountDTO is one row of the broken-promises ranking.
type PersonCountDTO struct {
	Who   string `json:"who"`
	Count int    `json:"count"`
}

// TrustReportDTO is the owner's reliability summary.
type TrustReportDTO struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	LastChased      *time.Time       `json:"last_chased,omitempty"`
	DaysSinceChased *int             `json:"days_since_chased,omitempty"`
	Week            WeekDTO          `json:"week"`
	BrokenByPerson  []PersonCountDTO `json:"broken_by_person"`
}

// ReportCache keeps recent reports per owner.
type ReportCache interface {
	Load(ctx context.Context, userID string) (*TrustReportDTO, bool)
	Store(ctx context.Context, userID string, report *TrustReportDTO)
}

// TrustReportQuery contains the parameters for the trust report.
type TrustReportQuery struct {
	UserID string
	Now    time.Time
}

// QueryName implements application.Query.
func (TrustReportQuery) QueryName() string { return "trust.report" }

// TrustReportHandler handles the TrustReportQuery.
type TrustReportHandler struct {
	commitments commitment.Repository
	events      trust.Repository
	cache       ReportCache
	location    *time.Location
	logger      *slog.Logger
}

// NewTrustReportHandler creates a new TrustReportHandler. cache may be nil.
func NewTrustReportHandler(
	commitments commitment.Repository,
	events trust.Repository,
	cache ReportCache,
	loc *time.Location,
	logger *slog.Logger,
) *TrustReportHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &TrustReportHandler{
		commitments: commitments,
		events:      events,
		cache:       cache,
		location:    loc,
		logger:      logger,
	}
}

// Handle executes the TrustReportQuery. Reports for the current time are
// served from the cache, so one may trail the clock by up to the cache TTL;
// every transition drops the owner's entry. A query pinned to Now always
// builds a fresh report and leaves the cache alone.
func (h *TrustReportHandler) Handle(ctx context.Context, query TrustReportQuery) (*TrustReportDTO, error) {
	cached := h.cache != nil && query.Now.IsZero()
	if cached {
		if report, ok := h.cache.Load(ctx, query.UserID); ok {
			return report, nil
		}
	}

	report, err := h.build(ctx, query.UserID, nowOr(query.Now).In(h.location))
	if err != nil {
		return nil, internal(err)
	}

	if cached {
		h.cache.Store(ctx, query.UserID, report)
	}
	h.logger.DebugContext(ctx, "trust report built", "user_id", query.UserID, "broken", report.Week.Broken)
	return report, nil
}

func (h *TrustReportHandler) build(ctx context.Context, userID string, now time.Time) (*TrustReportDTO, error) {
	report := &TrustReportDTO{GeneratedAt: now, BrokenByPerson: []PersonCountDTO{}}

	chased, err := h.events.LatestOfType(ctx, userID, trust.EventChased)
	if err != nil {
		return nil, err
	}
	if chased != nil {
		at := chased.EventDate().In(h.location)
		days := DaysOverdue(at, now)
		report.LastChased = &at
		report.DaysSinceChased = &days
	}

	since := deadline.WeekStart(now)
	stats, err := h.commitments.WeekStats(ctx, userID, since, now)
	if err != nil {
		return nil, err
	}
	report.Week = WeekDTO{
		Since:       since,
		Total:       stats.Total,
		Kept:        stats.Kept,
		Rescheduled: stats.Rescheduled,
		Broken:      stats.Broken,
	}

	top, err := h.commitments.TopOverdueWho(ctx, userID, now, TopBrokenLimit)
	if err != nil {
		return nil, err
	}
	for _, w := range top {
		report.BrokenByPerson = append(report.BrokenByPerson, PersonCountDTO{Who: w.Who, Count: w.Count})
	}
	return report, nil
}

var _ sharedApplication.QueryHandler[TrustReportQuery, *TrustReportDTO] = (*TrustReportHandler)(nil)
