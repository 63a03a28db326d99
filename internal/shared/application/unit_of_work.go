package application

import "context"

// UnitOfWork provides transactional support for aggregating multiple operations.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// WithUnitOfWork executes fn within a unit of work, rolling back on error.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn func(ctx context.Context) error) error {
	_, err := WithUnitOfWorkResult(ctx, uow, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// WithUnitOfWorkResult is WithUnitOfWork for functions that produce a value.
// The zero value is returned whenever the unit of work does not commit.
func WithUnitOfWorkResult[T any](ctx context.Context, uow UnitOfWork, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return zero, err
	}

	result, err := fn(txCtx)
	if err != nil {
		_ = uow.Rollback(txCtx)
		return zero, err
	}

	if err := uow.Commit(txCtx); err != nil {
		return zero, err
	}
	return result, nil
}
