package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("weekly_trust_review").
		Description("Review the promises you made this week and decide what to do about the ones you are behind on.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Weekly Trust Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me review the promises I made this week.

1. Read my trust report from the vouch://trust/report resource
2. Read my pending commitments from the vouch://commitments/pending resource

Then:
- Tell me who I have kept waiting longest
- For each overdue commitment, suggest whether to complete it now or reschedule it with commitment.reschedule
- Point out if I am relying on snoozes instead of setting honest deadlines`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("capture_promise").
		Description("Turn a sentence like 'I told Sam I'd send the notes by Friday' into a recorded commitment.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			sentence := args["sentence"]
			return &mcp.PromptResult{
				Description: "Capture a Promise",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Extract who I promised, what I promised and when it is due from this sentence, check the deadline with deadline.resolve, then record it with commitment.create:

%s`, sentence),
						},
					},
				},
			}, nil
		})

	return nil
}
