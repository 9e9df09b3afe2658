package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrent(t *testing.T) {
	input := make([]int, 200)
	for i := range input {
		input[i] = i
	}
	squares := make([]int, len(input))

	var inFlight, peak atomic.Int64
	err := Concurrent(context.Background(), input, 4, func(_ context.Context, elem int, idx int) error {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			seen := peak.Load()
			if current <= seen || peak.CompareAndSwap(seen, current) {
				break
			}
		}
		squares[idx] = elem * elem
		return nil
	})
	require.NoError(t, err)

	for i, sq := range squares {
		assert.Equal(t, i*i, sq)
	}
	assert.LessOrEqual(t, peak.Load(), int64(4))
}

func TestConcurrentError(t *testing.T) {
	failure := errors.New("boom")
	err := Concurrent(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, elem int, _ int) error {
		if elem == 2 {
			return failure
		}
		return nil
	})
	assert.ErrorIs(t, err, failure)
}

func TestConcurrentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	err := Concurrent(ctx, []int{1, 2, 3}, 2, func(context.Context, int, int) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
