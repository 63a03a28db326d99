package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

var wed = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func endOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, time.UTC)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string, opts deadline.GenerateOptions) (string, error) {
	args := m.Called(ctx, system, user, opts)
	return args.String(0), args.Error(1)
}

// blockingGenerator ignores cancellation until released.
type blockingGenerator struct {
	release chan struct{}
}

func (g *blockingGenerator) Generate(context.Context, string, string, deadline.GenerateOptions) (string, error) {
	<-g.release
	return "2024-01-12T18:00:00Z", nil
}

type panicStage struct{}

func (panicStage) Name() string { return "broken" }

func (panicStage) Resolve(context.Context, string, time.Time) (deadline.Result, error) {
	panic("boom")
}

func newResolver(gen deadline.TextGenerator) *DeadlineResolver {
	return NewDeadlineResolver(gen, ResolverConfig{Location: time.UTC, AITimeout: time.Second, AIMaxTokens: 150}, nil, nil)
}

func TestDeadlineResolver_RuleStagesSkipModel(t *testing.T) {
	gen := new(mockGenerator)
	r := newResolver(gen)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"today", endOf(2024, time.January, 10)},
		{"tomorrow", endOf(2024, time.January, 11)},
		{"EOD", time.Date(2024, time.January, 10, 18, 0, 0, 0, time.UTC)},
		{"next week", endOf(2024, time.January, 15)},
		{"Friday", endOf(2024, time.January, 12)},
		{"by Monday", endOf(2024, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := r.Resolve(context.Background(), tt.input, wed)
			assert.Equal(t, tt.want, got.At)
		})
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeadlineResolver_NextWeekOnMonday(t *testing.T) {
	monday := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	got := newResolver(nil).Resolve(context.Background(), "next week", monday)
	assert.Equal(t, endOf(2024, time.January, 22), got.At)
}

func TestDeadlineResolver_WorkCalendarUsesModel(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, deadline.SystemPrompt(wed), "by EOW",
		deadline.GenerateOptions{Temperature: 0, MaxTokens: 150}).
		Return("2024-01-12T18:00:00", nil).Once()

	got := newResolver(gen).Resolve(context.Background(), "by EOW", wed)

	assert.Equal(t, deadline.StageAI, got.Stage)
	assert.Equal(t, time.Date(2024, time.January, 12, 18, 0, 0, 0, time.UTC), got.At)
	gen.AssertExpectations(t)
}

func TestDeadlineResolver_UnparsedTextUsesModel(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, "whenever the report lands", mock.Anything).
		Return("2024-01-11T23:59:00Z", nil).Once()

	got := newResolver(gen).Resolve(context.Background(), "whenever the report lands", wed)

	assert.Equal(t, deadline.StageAI, got.Stage)
	assert.Equal(t, time.Date(2024, time.January, 11, 23, 59, 0, 0, time.UTC), got.At)
}

func TestDeadlineResolver_ModelFailuresFallThrough(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		answer string
		err    error
		want   time.Time
	}{
		{"transport error", "COB today", "", errors.New("connection reset"), endOf(2024, time.January, 10)},
		{"malformed answer", "eow", "Friday at 6pm", nil, endOf(2024, time.January, 10)},
		{"chatty answer", "workday tomorrow", "Sure! 2024-01-11T18:00:00", nil, endOf(2024, time.January, 11)},
		{"eod keyword", "end of day workday", "", errors.New("rate limited"), time.Date(2024, time.January, 10, 18, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			gen.On("Generate", mock.Anything, mock.Anything, tt.input, mock.Anything).Return(tt.answer, tt.err)

			got := newResolver(gen).Resolve(context.Background(), tt.input, wed)

			assert.Equal(t, deadline.StageLastResort, got.Stage)
			assert.Equal(t, tt.want, got.At)
		})
	}
}

func TestDeadlineResolver_ModelTimeout(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{})}
	defer close(gen.release)

	r := NewDeadlineResolver(gen, ResolverConfig{Location: time.UTC, AITimeout: 20 * time.Millisecond}, nil, nil)

	start := time.Now()
	got := r.Resolve(context.Background(), "eom", wed)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, deadline.StageLastResort, got.Stage)
	assert.Equal(t, endOf(2024, time.January, 10), got.At)
}

func TestDeadlineResolver_Totality(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("down"))
	r := newResolver(gen)

	inputs := []string{
		"", " ", "\x00", "by", "99/99/9999", "the 45th", "in 0 days", "2024-13-45",
		"🙂 tomorrow", "next next next", "at 99", "25:61", "feb 30", "midnight tomorrow",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			require.NotPanics(t, func() {
				got := r.Resolve(context.Background(), input, wed)
				assert.True(t, got.Resolved)
				assert.False(t, got.At.IsZero())
			})
		})
	}
}

func TestDeadlineResolver_RecoversPanickingStage(t *testing.T) {
	r := newResolver(nil)
	r.stages = append([]Stage{panicStage{}}, r.stages...)

	got := r.Resolve(context.Background(), "tomorrow", wed)

	assert.Equal(t, endOf(2024, time.January, 11), got.At)
}

func TestDeadlineResolver_ResolveStrict(t *testing.T) {
	gen := new(mockGenerator)
	r := newResolver(gen)

	got, err := r.ResolveStrict(context.Background(), "Friday", wed)
	require.NoError(t, err)
	assert.Equal(t, endOf(2024, time.January, 12), got.At)

	for _, input := range []string{"by EOW", "whenever", ""} {
		_, err := r.ResolveStrict(context.Background(), input, wed)
		assert.ErrorIs(t, err, deadline.ErrNoMatch, input)
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeadlineResolver_UsesConfiguredLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	r := NewDeadlineResolver(nil, ResolverConfig{Location: berlin}, nil, nil)

	// 23:30 UTC on the 10th is already the 11th in Berlin.
	got := r.Resolve(context.Background(), "today", time.Date(2024, time.January, 10, 23, 30, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, time.January, 11, 23, 59, 59, 999_000_000, berlin), got.At)
}

func TestDeadlineResolver_RecordsStageSpans(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	tracer := observability.NewTracer(nil, metrics)
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("down"))

	r := NewDeadlineResolver(gen, ResolverConfig{Location: time.UTC}, tracer, nil)
	r.Resolve(context.Background(), "eow", wed)

	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSpans,
		observability.T("span", "deadline.stage.phrase"), observability.T("outcome", "no_match")))
	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSpans,
		observability.T("span", "deadline.stage.ai"), observability.T("outcome", "error")))
	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSpans,
		observability.T("span", "deadline.stage.last_resort"), observability.T("outcome", "resolved")))
	assert.Equal(t, int64(1), metrics.CounterValue(observability.MetricSpans,
		observability.T("span", "deadline.resolve"), observability.T("outcome", "resolved")))
}
