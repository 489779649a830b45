package services

import (
	"context"

	"skillswap/internal/utils"
)

// retryRead runs an idempotent read, retrying once on a storage failure. Domain errors such as
// NotFound are returned without a retry.
func retryRead[T any](ctx context.Context, read func(context.Context) (T, error)) (T, error) {
	result, err := read(ctx)
	if err == nil || utils.KindOf(err) != "" || ctx.Err() != nil {
		return result, err
	}
	return read(ctx)
}

type listPage[T any] struct {
	items []T
	total int64
}

// retryList is retryRead for paginated listings.
func retryList[T any](ctx context.Context, list func(context.Context) ([]T, int64, error)) ([]T, int64, error) {
	result, err := retryRead(ctx, func(ctx context.Context) (listPage[T], error) {
		items, total, err := list(ctx)
		return listPage[T]{items: items, total: total}, err
	})
	if err == nil && result.items == nil {
		result.items = []T{}
	}
	return result.items, result.total, err
}
