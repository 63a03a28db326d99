package deadline

import "context"

// GenerateOptions bounds a single text-generation call.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// TextGenerator produces a completion for a system context and a user message.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string, opts GenerateOptions) (string, error)
}
