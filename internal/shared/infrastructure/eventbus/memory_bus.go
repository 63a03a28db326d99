package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

type subscription struct {
	pattern string
	handler Handler
}

// MemoryBus delivers envelopes synchronously to in-process subscribers.
// It stands in for RabbitMQ in local mode and keeps a copy of every envelope.
type MemoryBus struct {
	mu            sync.Mutex
	subscriptions []subscription
	published     []Envelope
	logger        *slog.Logger
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBus{logger: logger}
}

// Subscribe registers handler for routing keys matching pattern.
func (b *MemoryBus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = append(b.subscriptions, subscription{pattern: pattern, handler: handler})
}

// Publish records env and dispatches it. Handler failures are logged, not returned,
// so a broken subscriber never blocks the outbox.
func (b *MemoryBus) Publish(ctx context.Context, env Envelope) error {
	b.mu.Lock()
	b.published = append(b.published, env)
	var targets []Handler
	for _, s := range b.subscriptions {
		if Matches(s.pattern, env.RoutingKey) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range targets {
		if err := h(ctx, env); err != nil {
			b.logger.Error("event handler failed", "routing_key", env.RoutingKey, "message_id", env.MessageID, "error", err)
		}
	}
	return nil
}

// Published returns a copy of every envelope seen so far.
func (b *MemoryBus) Published() []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Envelope(nil), b.published...)
}

func (b *MemoryBus) Close() error { return nil }
