package trust

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/adapter/cli"
	internalApp "github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

func setupApp(t *testing.T) *cli.App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                "test",
		SQLitePath:            filepath.Join(t.TempDir(), "test.db"),
		Timezone:              "UTC",
		MaxOverdueCommitments: 3,
		DeadlineAITimeout:     time.Second,
		TrustReportCacheTTL:   time.Minute,
		OutboxBatchSize:       10,
	}
	require.NoError(t, cfg.Validate())

	container, err := internalApp.NewContainer(context.Background(), cfg, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	a := cli.NewApp(container, "trust-user")
	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })
	return a
}

func run(t *testing.T, cmd *cobra.Command) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, nil)
	return out.String(), err
}

func TestReportCmd(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	_, err := a.CreateCommitmentHandler.Handle(ctx, commands.CreateCommitmentCommand{
		UserID: a.CurrentUserID, Who: "Dana", What: "share notes", When: "tomorrow",
	})
	require.NoError(t, err)

	asJSON = false
	out, err := run(t, reportCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Never chased.")
	assert.Contains(t, out, "MADE")

	asJSON = true
	defer func() { asJSON = false }()
	out, err = run(t, reportCmd)
	require.NoError(t, err)
	var report queries.TrustReportDTO
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Week.Total)
	assert.Nil(t, report.LastChased)
}

func TestChasedCmd(t *testing.T) {
	a := setupApp(t)

	details, commitmentID = "reminded at standup", ""
	out, err := run(t, chasedCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged: chased on")

	report, err := a.TrustReportHandler.Handle(context.Background(), queries.TrustReportQuery{UserID: a.CurrentUserID})
	require.NoError(t, err)
	require.NotNil(t, report.DaysSinceChased)
	assert.Equal(t, 0, *report.DaysSinceChased)

	commitmentID = "bogus"
	defer func() { commitmentID = "" }()
	_, err = run(t, chasedCmd)
	assert.ErrorContains(t, err, "invalid commitment ID")
}
