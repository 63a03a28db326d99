package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// ResolverConfig configures the cascade.
type ResolverConfig struct {
	// Location is the zone calendar rules use. Defaults to time.Local.
	Location *time.Location

	// AITimeout bounds each model call.
	AITimeout time.Duration

	// AIMaxTokens bounds the model's answer.
	AIMaxTokens int
}

// DeadlineResolver turns free text into an instant by trying each stage in order.
type DeadlineResolver struct {
	stages   []Stage
	strict   Stage
	location *time.Location
	tracer   *observability.Tracer
	logger   *slog.Logger
}

// NewDeadlineResolver builds the cascade. A nil generator leaves the model stage out.
func NewDeadlineResolver(
	generator deadline.TextGenerator,
	cfg ResolverConfig,
	tracer *observability.Tracer,
	logger *slog.Logger,
) *DeadlineResolver {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	if tracer == nil {
		tracer = observability.NewTracer(logger, nil)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	phrase := phraseStage{phrase: deadline.NewPhraseResolver(deadline.NewRuleBasedResolver())}
	stages := []Stage{phrase}
	if generator != nil {
		stages = append(stages, NewAIFallbackResolver(generator, cfg.AITimeout, cfg.AIMaxTokens))
	}
	stages = append(stages, lastResortStage{})

	return &DeadlineResolver{
		stages:   stages,
		strict:   phrase,
		location: cfg.Location,
		tracer:   tracer,
		logger:   logger,
	}
}

// Resolve always returns an instant. Stage failures are logged and skipped;
// the end of today is the floor.
func (r *DeadlineResolver) Resolve(ctx context.Context, text string, now time.Time) deadline.Result {
	now = now.In(r.location)
	ctx, span := r.tracer.Start(ctx, "deadline.resolve")

	for _, stage := range r.stages {
		res, err := r.run(ctx, stage, text, now)
		if err != nil {
			r.logger.WarnContext(ctx, "deadline stage failed",
				"stage", stage.Name(),
				"error", err,
			)
			continue
		}
		if res.Resolved {
			span.SetAttr(slog.String("stage", res.Stage))
			span.End("resolved")
			return res
		}
	}

	span.End("floor")
	return deadline.Resolved(deadline.StageLastResort, deadline.EndOfDay(now))
}

// ResolveStrict runs the rule stages only. Text they cannot place yields
// deadline.ErrNoMatch.
func (r *DeadlineResolver) ResolveStrict(ctx context.Context, text string, now time.Time) (deadline.Result, error) {
	now = now.In(r.location)

	res, err := r.run(ctx, r.strict, text, now)
	if err != nil {
		return deadline.Result{}, fmt.Errorf("resolve %q: %w", text, err)
	}
	if !res.Resolved {
		return deadline.Result{}, deadline.ErrNoMatch
	}
	return res, nil
}

// Location returns the zone the resolver evaluates calendar rules in.
func (r *DeadlineResolver) Location() *time.Location {
	return r.location
}

func (r *DeadlineResolver) run(ctx context.Context, stage Stage, text string, now time.Time) (res deadline.Result, err error) {
	ctx, span := r.tracer.Start(ctx, "deadline.stage."+stage.Name())
	defer func() {
		if p := recover(); p != nil {
			res, err = deadline.NoMatch(stage.Name()), fmt.Errorf("stage %s panicked: %v", stage.Name(), p)
		}
		switch {
		case err != nil:
			span.End("error")
		case res.Resolved:
			span.End("resolved")
		default:
			span.End("no_match")
		}
	}()
	return stage.Resolve(ctx, text, now)
}
