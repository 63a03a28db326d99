// Package resilience guards outbound model calls with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("deadline model circuit open")

// BreakerConfig configures the breaker.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state after which counts reset.
	Interval time.Duration

	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the defaults used when nothing is configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "anthropic",
		MaxRequests:      1,
		Interval:         time.Minute,
		Cooldown:         30 * time.Second,
		FailureThreshold: 3,
	}
}

// GuardedGenerator wraps a generator with a circuit breaker so a failing
// provider is skipped quickly instead of costing a timeout on every call.
type GuardedGenerator struct {
	next    deadline.TextGenerator
	breaker *gobreaker.CircuitBreaker[string]
	metrics observability.Metrics
	name    string
}

// NewGuardedGenerator wraps next.
func NewGuardedGenerator(next deadline.TextGenerator, cfg BreakerConfig, metrics observability.Metrics, logger *slog.Logger) *GuardedGenerator {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if cfg.Name == "" {
		cfg.Name = DefaultBreakerConfig().Name
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerState, 1,
				observability.T("breaker", name), observability.T("state", to.String()))
		},
	}

	return &GuardedGenerator{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		metrics: metrics,
		name:    cfg.Name,
	}
}

// Generate forwards the call unless the breaker is open.
func (g *GuardedGenerator) Generate(ctx context.Context, system, user string, opts deadline.GenerateOptions) (string, error) {
	answer, err := g.breaker.Execute(func() (string, error) {
		return g.next.Generate(ctx, system, user, opts)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.metrics.Counter(observability.MetricModelCalls, 1, observability.T("outcome", "rejected"))
		return "", ErrCircuitOpen
	case err != nil:
		g.metrics.Counter(observability.MetricModelCalls, 1, observability.T("outcome", "error"))
		return "", err
	}
	g.metrics.Counter(observability.MetricModelCalls, 1, observability.T("outcome", "ok"))
	return answer, nil
}

// State reports the breaker state, for health checks.
func (g *GuardedGenerator) State() string {
	return g.breaker.State().String()
}
