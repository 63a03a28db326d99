package application

import "context"

// Command represents a request that modifies system state.
type Command interface {
	CommandName() string
}

// Query represents a read-only request.
type Query interface {
	QueryName() string
}

// CommandHandler handles a command and returns its result.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// QueryHandler handles a query and returns its result.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
