// Package services composes the deadline stages into the resolution cascade.
package services

import (
	"context"
	"time"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
)

// Stage is one step of the cascade. A stage that cannot decide returns an
// unresolved result; an error means the stage failed and is skipped.
type Stage interface {
	Name() string
	Resolve(ctx context.Context, text string, now time.Time) (deadline.Result, error)
}

type phraseStage struct {
	phrase *deadline.PhraseResolver
}

func (phraseStage) Name() string { return deadline.StagePhrase }

func (s phraseStage) Resolve(_ context.Context, text string, now time.Time) (deadline.Result, error) {
	return s.phrase.Resolve(text, now), nil
}

type lastResortStage struct{}

func (lastResortStage) Name() string { return deadline.StageLastResort }

func (lastResortStage) Resolve(_ context.Context, text string, now time.Time) (deadline.Result, error) {
	return deadline.LastResort(text, now), nil
}
