package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// DefaultReportTTL bounds how stale a report may get between transitions.
const DefaultReportTTL = time.Minute

// ReportCache stores trust reports as JSON. Failures are logged and treated
// as misses, so a broken cache only costs a recomputation.
type ReportCache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewReportCache creates a new ReportCache.
func NewReportCache(store Store, ttl time.Duration, logger *slog.Logger) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &ReportCache{store: store, ttl: ttl, logger: logger}
}

func reportKey(userID string) string {
	return "trust_report:" + userID
}

// Load returns the cached report for userID.
func (c *ReportCache) Load(ctx context.Context, userID string) (*queries.TrustReportDTO, bool) {
	raw, err := c.store.Get(ctx, reportKey(userID))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.WarnContext(ctx, "trust report cache read failed", "user_id", userID, "error", err)
		}
		return nil, false
	}

	var report queries.TrustReportDTO
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable cached trust report", "user_id", userID, "error", err)
		return nil, false
	}
	return &report, true
}

// Store caches report for userID.
func (c *ReportCache) Store(ctx context.Context, userID string, report *queries.TrustReportDTO) {
	raw, err := json.Marshal(report)
	if err != nil {
		c.logger.WarnContext(ctx, "trust report not cacheable", "user_id", userID, "error", err)
		return
	}
	if err := c.store.Set(ctx, reportKey(userID), raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "trust report cache write failed", "user_id", userID, "error", err)
	}
}

// Invalidate drops the cached report for userID.
func (c *ReportCache) Invalidate(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, reportKey(userID))
}
