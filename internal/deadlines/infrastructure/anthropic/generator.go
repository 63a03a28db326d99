// Package anthropic implements the deadline text generator on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
)

// DefaultModel is a small, fast model; the answers are a single timestamp.
const DefaultModel = "claude-3-haiku-20240307"

// ErrEmptyAnswer is returned when the response holds no text block.
var ErrEmptyAnswer = errors.New("anthropic: response has no text")

// Generator calls the Messages API.
type Generator struct {
	client sdk.Client
	model  string
}

// NewGenerator creates a generator. Extra options override the defaults,
// which is how tests point it at a local server.
func NewGenerator(apiKey, model string, opts ...option.RequestOption) *Generator {
	if model == "" {
		model = DefaultModel
	}
	all := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}, opts...)
	return &Generator{client: sdk.NewClient(all...), model: model}
}

// Generate sends one user turn under the system context and returns the first text block.
func (g *Generator) Generate(ctx context.Context, system, user string, opts deadline.GenerateOptions) (string, error) {
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 150
	}

	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(g.model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(opts.Temperature),
		System:      []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", ErrEmptyAnswer
}
