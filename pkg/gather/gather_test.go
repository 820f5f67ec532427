package gather

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScatterPreservesIndexOrder(t *testing.T) {
	// Randomized per-task latency: completion order must not matter
	results, err := Scatter(context.Background(), 20, 4, func(ctx context.Context, i int) (int, error) {
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
		return i * 10, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, v := range results {
		assert.Equal(t, i*10, v)
	}
}

func TestScatterBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	_, err := Scatter(context.Background(), 30, 3, func(ctx context.Context, i int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestScatterFailureDiscardsBatch(t *testing.T) {
	wantErr := errors.New("boom")

	results, err := Scatter(context.Background(), 5, 2, func(ctx context.Context, i int) (string, error) {
		if i == 2 {
			return "", wantErr
		}
		return fmt.Sprintf("ok-%d", i), nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, results)
}

func TestScatterCancelsRemainingTasks(t *testing.T) {
	var started atomic.Int32

	_, err := Scatter(context.Background(), 50, 1, func(ctx context.Context, i int) (int, error) {
		started.Add(1)
		if i == 0 {
			return 0, errors.New("first task fails")
		}
		return i, nil
	})
	require.Error(t, err)
	// With a single worker and an immediate failure, later tasks bail out
	// via the cancelled context instead of running.
	assert.Less(t, started.Load(), int32(50))
}

func TestScatterEmpty(t *testing.T) {
	results, err := Scatter(context.Background(), 0, 4, func(ctx context.Context, i int) (int, error) {
		t.Fatal("task should not run")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScatterRespectsParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scatter(ctx, 3, 2, func(ctx context.Context, i int) (int, error) {
		return 0, ctx.Err()
	})
	require.Error(t, err)
}
