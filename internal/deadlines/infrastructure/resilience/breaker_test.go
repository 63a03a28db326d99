package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

type scriptedGenerator struct {
	calls int
	err   error
}

func (g *scriptedGenerator) Generate(context.Context, string, string, deadline.GenerateOptions) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "2024-01-12T18:00:00Z", nil
}

func TestGuardedGenerator_PassesThrough(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	g := NewGuardedGenerator(&scriptedGenerator{}, DefaultBreakerConfig(), metrics, nil)

	got, err := g.Generate(context.Background(), "system", "eow", deadline.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "2024-01-12T18:00:00Z", got)
	assert.Equal(t, "closed", g.State())
	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricModelCalls, observability.T("outcome", "ok")))
}

func TestGuardedGenerator_TripsAfterConsecutiveFailures(t *testing.T) {
	inner := &scriptedGenerator{err: errors.New("503")}
	metrics := observability.NewInMemoryMetrics()
	cfg := BreakerConfig{Name: "test", MaxRequests: 1, Cooldown: time.Minute, FailureThreshold: 2}
	g := NewGuardedGenerator(inner, cfg, metrics, nil)

	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), "s", "u", deadline.GenerateOptions{})
		assert.EqualError(t, err, "503")
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Generate(context.Background(), "s", "u", deadline.GenerateOptions{})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls, "open breaker must not reach the provider")
	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricBreakerState,
		observability.T("breaker", "test"), observability.T("state", "open")))
	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricModelCalls, observability.T("outcome", "rejected")))
}
