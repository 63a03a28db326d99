package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
)

// ProviderTransientError is a failed, timed out or unusable model call.
// The cascade absorbs it and moves on to the next stage.
type ProviderTransientError struct {
	Err error
}

func (e *ProviderTransientError) Error() string {
	return "deadline model unavailable: " + e.Err.Error()
}

func (e *ProviderTransientError) Unwrap() error {
	return e.Err
}

var errMalformedAnswer = errors.New("malformed answer")

// AIFallbackResolver asks a language model to apply the work-calendar rule table.
type AIFallbackResolver struct {
	generator deadline.TextGenerator
	timeout   time.Duration
	maxTokens int
}

// NewAIFallbackResolver creates the model stage. Every call is bounded by timeout.
func NewAIFallbackResolver(generator deadline.TextGenerator, timeout time.Duration, maxTokens int) *AIFallbackResolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 150
	}
	return &AIFallbackResolver{generator: generator, timeout: timeout, maxTokens: maxTokens}
}

// Name returns the stage name.
func (a *AIFallbackResolver) Name() string { return deadline.StageAI }

type reply struct {
	text string
	err  error
}

// Resolve returns the model's answer as an instant. The caller waits at most
// the configured timeout even if the generator ignores cancellation.
func (a *AIFallbackResolver) Resolve(ctx context.Context, text string, now time.Time) (deadline.Result, error) {
	if strings.TrimSpace(text) == "" {
		return deadline.NoMatch(deadline.StageAI), nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	opts := deadline.GenerateOptions{Temperature: 0, MaxTokens: a.maxTokens}
	system := deadline.SystemPrompt(now)

	done := make(chan reply, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- reply{err: fmt.Errorf("generator panicked: %v", p)}
			}
		}()
		answer, err := a.generator.Generate(ctx, system, text, opts)
		done <- reply{text: answer, err: err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return deadline.NoMatch(deadline.StageAI), &ProviderTransientError{Err: ctx.Err()}
	case r = <-done:
	}

	if r.err != nil {
		return deadline.NoMatch(deadline.StageAI), &ProviderTransientError{Err: r.err}
	}
	at, ok := deadline.ParseAnswer(r.text, now)
	if !ok {
		return deadline.NoMatch(deadline.StageAI), &ProviderTransientError{Err: fmt.Errorf("%w: %q", errMalformedAnswer, r.text)}
	}
	return deadline.Resolved(deadline.StageAI, at), nil
}
