package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

type deadlineResolveInput struct {
	Text   string `json:"text" jsonschema:"required"`
	Strict bool   `json:"strict,omitempty"`
}

func registerDeadlineTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("deadline.resolve").
		Description("Preview the instant a plain-language deadline resolves to, and which stage read it").
		Handler(func(ctx context.Context, input deadlineResolveInput) (*queries.ResolvedDeadlineDTO, error) {
			if app.ResolveDeadlineHandler == nil {
				return nil, errors.New("deadline resolution is not configured")
			}
			return app.ResolveDeadlineHandler.Handle(ctx, queries.ResolveDeadlineQuery{
				Text:   input.Text,
				Strict: input.Strict,
			})
		})

	return nil
}
