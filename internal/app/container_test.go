package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

func setupLocalContainer(t *testing.T) *Container {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                "development",
		SQLitePath:            filepath.Join(t.TempDir(), "vouch.db"),
		Timezone:              "UTC",
		MaxOverdueCommitments: 3,
		DeadlineAITimeout:     time.Second,
		TrustReportCacheTTL:   time.Minute,
		OutboxBatchSize:       10,
	}
	require.NoError(t, cfg.Validate())

	c, err := NewContainer(context.Background(), cfg, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewContainer_LocalMode(t *testing.T) {
	c := setupLocalContainer(t)

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.Breaker, "no API key means no model stage")
	assert.NotNil(t, c.DeadlineResolver)
	assert.NotNil(t, c.CreateCommitmentHandler)
	assert.NotNil(t, c.TrustReportHandler)

	report := c.Health.Check(context.Background())
	assert.Equal(t, "ok", report.Status)
}

func TestContainer_CommitmentWorkflow(t *testing.T) {
	c := setupLocalContainer(t)
	ctx := context.Background()
	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

	created, err := c.CreateCommitmentHandler.Handle(ctx, commands.CreateCommitmentCommand{
		UserID: "local", Who: "Alice", What: "send the deck", When: "friday", Now: now,
	})
	require.NoError(t, err)

	report, err := c.TrustReportHandler.Handle(ctx, queries.TrustReportQuery{UserID: "local", Now: now})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Week.Total)
	assert.Equal(t, 0, report.Week.Kept)

	_, err = c.CompleteCommitmentHandler.Handle(ctx, commands.CompleteCommitmentCommand{
		ID: created.Commitment.ID(), UserID: "local", Now: now,
	})
	require.NoError(t, err)

	report, err = c.TrustReportHandler.Handle(ctx, queries.TrustReportQuery{UserID: "local", Now: now})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Week.Kept, "completing busts the cached report")

	list, err := c.ListCommitmentsHandler.Handle(ctx, queries.ListCommitmentsQuery{UserID: "local", Now: now})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "completed", list[0].Status)

	t.Run("outbox drains to the development bus", func(t *testing.T) {
		publisher, err := c.NewEventPublisher()
		require.NoError(t, err)
		bus, ok := publisher.(*eventbus.MemoryBus)
		require.True(t, ok)

		require.NoError(t, c.NewOutboxProcessor(publisher).ProcessOnce(ctx))

		var keys []string
		for _, env := range bus.Published() {
			keys = append(keys, env.RoutingKey)
		}
		assert.ElementsMatch(t, []string{
			"commitments.commitment.created",
			"commitments.commitment.completed",
			"commitments.trust.event_logged",
		}, keys)
	})
}
