package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Concurrent runs f over every element of array with at most concurrency
// goroutines in flight, and returns the first error. f receives the element
// index so results can be stored in place.
func Concurrent[T any](ctx context.Context, array []T, concurrency int, f func(ctx context.Context, elem T, idx int) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}

	for idx, elem := range array {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return f(groupCtx, elem, idx)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
