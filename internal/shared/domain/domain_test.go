package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/vouch/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

type testEvent struct {
	domain.BaseEvent
}

var fixedNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func TestBaseEntity(t *testing.T) {
	t.Run("stamps both timestamps with the given clock", func(t *testing.T) {
		e := domain.NewBaseEntity(fixedNow)

		assert.NotEqual(t, uuid.Nil, e.ID())
		assert.Equal(t, fixedNow, e.CreatedAt())
		assert.Equal(t, fixedNow, e.UpdatedAt())
	})

	t.Run("touch only moves updatedAt", func(t *testing.T) {
		e := domain.NewBaseEntity(fixedNow)
		later := fixedNow.Add(time.Hour)

		e.Touch(later)

		assert.Equal(t, fixedNow, e.CreatedAt())
		assert.Equal(t, later, e.UpdatedAt())
	})

	t.Run("normalizes to UTC", func(t *testing.T) {
		loc := time.FixedZone("CET", 3600)
		e := domain.NewBaseEntity(fixedNow.In(loc))

		assert.Equal(t, time.UTC, e.CreatedAt().Location())
	})

	t.Run("same identity", func(t *testing.T) {
		id := uuid.New()
		a := domain.NewBaseEntityWithID(id, fixedNow)
		b := domain.RehydrateBaseEntity(id, fixedNow, fixedNow.Add(time.Minute))

		assert.True(t, domain.SameIdentity(a, b))
		assert.False(t, domain.SameIdentity(a, domain.NewBaseEntity(fixedNow)))
		assert.False(t, domain.SameIdentity(a, nil))
	})
}

func TestBaseAggregateRoot(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(fixedNow))}
	assert.Empty(t, agg.DomainEvents())

	agg.AddDomainEvent(testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Test", "test.created", fixedNow)})
	agg.AddDomainEvent(testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Test", "test.updated", fixedNow)})

	events := agg.DomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, "test.created", events[0].RoutingKey())
	assert.Equal(t, "test.updated", events[1].RoutingKey())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	event := domain.NewBaseEvent(aggregateID, "Commitment", "commitments.commitment.created", fixedNow)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Commitment", event.AggregateType())
	assert.Equal(t, fixedNow, event.OccurredAt())
	assert.Empty(t, event.Metadata().UserID)

	event.SetMetadata(domain.EventMetadata{UserID: "user-1"})
	assert.Equal(t, "user-1", event.Metadata().UserID)
}
