package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/pkg/observability"
)

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseUUID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// toolContext gives every tool call its own correlation id.
func toolContext(ctx context.Context, userID string) (context.Context, string) {
	ctx = observability.NewRequestContext(ctx, "")
	ctx = observability.WithUserID(ctx, userID)
	return ctx, observability.CorrelationIDFromContext(ctx)
}
