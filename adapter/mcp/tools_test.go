package mcp

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	"github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

func setupApp(t *testing.T) *cli.App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                "test",
		SQLitePath:            filepath.Join(t.TempDir(), "vouch.db"),
		Timezone:              "UTC",
		MaxOverdueCommitments: 3,
		DeadlineAITimeout:     time.Second,
		TrustReportCacheTTL:   time.Minute,
		OutboxBatchSize:       10,
	}
	require.NoError(t, cfg.Validate())

	container, err := app.NewContainer(context.Background(), cfg, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	return cli.NewApp(container, "mcp-user")
}

func TestRegisterCLITools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	require.NoError(t, RegisterCLITools(srv, ToolDependencies{App: &cli.App{}}))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		if name, ok := tool["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{
		"commitment.create",
		"commitment.list",
		"commitment.complete",
		"commitment.snooze",
		"commitment.reschedule",
		"trust.report",
		"trust.log_chased",
		"deadline.resolve",
	} {
		assert.True(t, names[want], "%s should be registered", want)
	}
}

func TestRegisterCLITools_RequiresApp(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterCLITools(srv, ToolDependencies{}))
	assert.Error(t, RegisterCLITools(nil, ToolDependencies{App: &cli.App{}}))
}

func TestCommitmentTools_Lifecycle(t *testing.T) {
	a := setupApp(t)
	tools := commitmentTools{app: a, now: time.Now}
	ctx := context.Background()

	created, err := tools.create(ctx, commitmentCreateInput{Who: "Sam", What: "send the notes", When: "tomorrow"})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Commitment.Status)

	snoozed, err := tools.snooze(ctx, commitmentIDInput{CommitmentID: created.Commitment.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, snoozed.SnoozeCount)

	moved, err := tools.reschedule(ctx, commitmentRescheduleInput{
		CommitmentID: created.Commitment.ID.String(),
		To:           "next week",
		Reason:       "blocked on review",
	})
	require.NoError(t, err)
	assert.Equal(t, "rescheduled", moved.Original.Status)
	assert.Equal(t, "pending", moved.Forwarded.Status)

	_, err = tools.complete(ctx, commitmentIDInput{CommitmentID: created.Commitment.ID.String()})
	var illegal *commitment.IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)

	done, err := tools.complete(ctx, commitmentIDInput{CommitmentID: moved.Forwarded.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)

	list, err := tools.list(ctx, commitmentListInput{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, moved.Forwarded.ID, list[0].ID)

	_, err = tools.complete(ctx, commitmentIDInput{CommitmentID: "nope"})
	assert.Error(t, err)
}

func TestTrustTools(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()
	tools := trustTools{app: a}

	ev, err := tools.logChased(ctx, trustChasedInput{Details: "asked twice"})
	require.NoError(t, err)
	assert.Equal(t, "chased", ev.Type)
	assert.Nil(t, ev.CommitmentID)

	report, err := tools.report(ctx, trustReportInput{})
	require.NoError(t, err)
	require.NotNil(t, report.DaysSinceChased)
	assert.Equal(t, 0, *report.DaysSinceChased)

	_, err = tools.logChased(ctx, trustChasedInput{CommitmentID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestCommitmentTools_NotConfigured(t *testing.T) {
	tools := commitmentTools{app: &cli.App{}, now: time.Now}

	_, err := tools.create(context.Background(), commitmentCreateInput{Who: "a", What: "b", When: "today"})
	assert.Error(t, err)
}
