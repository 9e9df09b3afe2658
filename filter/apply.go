package filter

import (
	"context"
	"iter"
	"runtime"
	"slices"

	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

// ApplySeq lazily yields the entities of seq that match, in order. The
// predicate runs once per entity, and nothing more is pulled from seq once
// the consumer stops.
func ApplySeq[T any](seq iter.Seq[T], match Predicate[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for entity := range seq {
			if match(entity) && !yield(entity) {
				return
			}
		}
	}
}

// ApplySeq2 is ApplySeq for sources that can fail mid-stream. Errors are
// passed through unfiltered.
func ApplySeq2[T any](seq iter.Seq2[T, error], match Predicate[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for entity, err := range seq {
			if err != nil {
				if !yield(entity, err) {
					return
				}
				continue
			}
			if match(entity) && !yield(entity, nil) {
				return
			}
		}
	}
}

// Apply lazily filters an in-memory slice.
func Apply[T any](entities []T, match Predicate[T]) iter.Seq[T] {
	return ApplySeq(slices.Values(entities), match)
}

// ApplyConcurrent evaluates match over entities in parallel and returns the
// matches in input order. concurrency < 1 means GOMAXPROCS.
func ApplyConcurrent[T any](ctx context.Context, entities []T, match Predicate[T], concurrency int) ([]T, error) {
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	logger.Debugf("[ApplyConcurrent] entities=%d concurrency=%d", len(entities), concurrency)

	keep := make([]bool, len(entities))
	err := utils.Concurrent(ctx, entities, concurrency, func(_ context.Context, entity T, idx int) error {
		keep[idx] = match(entity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	filtered := make([]T, 0, len(entities))
	for idx, ok := range keep {
		if ok {
			filtered = append(filtered, entities[idx])
		}
	}

	logger.Debugf("[ApplyConcurrent] finished: input=%d output=%d", len(entities), len(filtered))
	return filtered, nil
}

// CompileAndApply parses filter, binds it and returns the lazily filtered
// sequence. It fails as a whole: either every term compiles or nothing is
// filtered.
func CompileAndApply[T any](filter string, entities iter.Seq[T], binder Binder[T], opts ...Option) (iter.Seq[T], error) {
	match, err := Build(filter, binder, opts...)
	if err != nil {
		return nil, err
	}
	return ApplySeq(entities, match), nil
}

// Build parses and compiles filter.
func Build[T any](filter string, binder Binder[T], opts ...Option) (Predicate[T], error) {
	terms, err := Parse(filter)
	if err != nil {
		return nil, err
	}
	return Compile(terms, binder, opts...)
}
