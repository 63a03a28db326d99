package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Tracer starts spans that are reported through the logger and metrics.
type Tracer struct {
	logger  *slog.Logger
	metrics Metrics
	now     func() time.Time
}

// NewTracer creates a tracer. Nil collaborators are replaced with no-ops.
func NewTracer(logger *slog.Logger, metrics Metrics) *Tracer {
	if logger == nil {
		logger = DiscardLogger()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Tracer{logger: logger, metrics: metrics, now: time.Now}
}

// Span is one timed unit of work.
type Span struct {
	tracer *Tracer
	ctx    context.Context
	name   string
	parent string
	start  time.Time

	mu    sync.Mutex
	attrs []slog.Attr
	ended bool
}

type spanCtxKey struct{}

// Start opens a span named name as a child of any span already in ctx.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...slog.Attr) (context.Context, *Span) {
	s := &Span{tracer: t, name: name, start: t.now(), attrs: attrs}
	if parent := SpanFromContext(ctx); parent != nil {
		s.parent = parent.name
	}
	s.ctx = context.WithValue(ctx, spanCtxKey{}, s)
	return s.ctx, s
}

// SpanFromContext returns the innermost span in ctx.
func SpanFromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanCtxKey{}).(*Span)
	return s
}

// Name returns the span name.
func (s *Span) Name() string { return s.name }

// SetAttr adds an attribute reported when the span ends.
func (s *Span) SetAttr(attr slog.Attr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attr)
}

// End closes the span with an outcome label. Only the first call is reported.
func (s *Span) End(outcome string) time.Duration {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return 0
	}
	s.ended = true
	attrs := append([]slog.Attr(nil), s.attrs...)
	s.mu.Unlock()

	d := s.tracer.now().Sub(s.start)
	args := []any{
		slog.String("span", s.name),
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", d.Milliseconds()),
	}
	if s.parent != "" {
		args = append(args, slog.String("parent", s.parent))
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	s.tracer.logger.DebugContext(s.ctx, "span ended", args...)

	tags := []Tag{T("span", s.name), T("outcome", outcome)}
	s.tracer.metrics.Counter(MetricSpans, 1, tags...)
	s.tracer.metrics.Timing(MetricSpanDuration, d, T("span", s.name))
	return d
}
