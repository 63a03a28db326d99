package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
)

// RegisterResources registers MCP resources that expose commitment data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("vouch://commitments").
		Name("Commitments").
		Description("All commitments for the current user").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			return listResource(ctx, deps, uri, "all")
		})

	srv.Resource("vouch://commitments/pending").
		Name("Pending commitments").
		Description("Promises not yet kept or rescheduled").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			return listResource(ctx, deps, uri, "pending")
		})

	srv.Resource("vouch://trust/report").
		Name("Trust report").
		Description("This week's promises made, kept, rescheduled and broken").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.TrustReportHandler == nil {
				return nil, fmt.Errorf("trust report requires database connection")
			}
			report, err := app.TrustReportHandler.Handle(ctx, queries.TrustReportQuery{UserID: app.CurrentUserID})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, report)
		})

	return nil
}

func listResource(ctx context.Context, deps ToolDependencies, uri, status string) (*mcp.ResourceContent, error) {
	app := deps.App
	if app == nil || app.ListCommitmentsHandler == nil {
		return nil, fmt.Errorf("commitment listing requires database connection")
	}
	list, err := app.ListCommitmentsHandler.Handle(ctx, queries.ListCommitmentsQuery{
		UserID: app.CurrentUserID,
		Status: status,
	})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, list)
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
