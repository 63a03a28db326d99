package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"commitments.commitment.completed", "commitments.commitment.completed", true},
		{"commitments.commitment.*", "commitments.commitment.snoozed", true},
		{"commitments.*", "commitments.commitment.snoozed", false},
		{"commitments.#", "commitments.commitment.snoozed", true},
		{"commitments.#", "commitments", true},
		{"#.rescheduled", "commitments.commitment.rescheduled", true},
		{"#", "anything.at.all", true},
		{"commitments.trust.*", "commitments.commitment.created", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.pattern, tt.key))
		})
	}
}

func TestMemoryBus(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus(nil)

	var completed, all int
	bus.Subscribe("commitments.commitment.completed", func(context.Context, Envelope) error {
		completed++
		return nil
	})
	bus.Subscribe("commitments.#", func(context.Context, Envelope) error {
		all++
		return errors.New("subscriber failure is swallowed")
	})

	require.NoError(t, bus.Publish(ctx, Envelope{MessageID: uuid.New(), RoutingKey: "commitments.commitment.completed"}))
	require.NoError(t, bus.Publish(ctx, Envelope{MessageID: uuid.New(), RoutingKey: "commitments.commitment.snoozed"}))

	assert.Equal(t, 1, completed)
	assert.Equal(t, 2, all)
	assert.Len(t, bus.Published(), 2)
	assert.NoError(t, bus.Close())
}
