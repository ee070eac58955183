package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewExportLimiter(2, time.Second)
	ctx := context.Background()

	assert.Equal(t, 0, limiter.ActiveCount())
	assert.Equal(t, 2, limiter.Available())

	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	assert.Equal(t, 2, limiter.ActiveCount())
	assert.Equal(t, 0, limiter.Available())

	limiter.Release()
	assert.Equal(t, 1, limiter.ActiveCount())
	assert.Equal(t, 1, limiter.Available())

	limiter.Release()
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestExportLimiter_RejectsWhenFull(t *testing.T) {
	limiter := NewExportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Acquire(ctx))
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	assert.ErrorIs(t, err, ErrTooManyExports)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestExportLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewExportLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			maxObserved = max(maxObserved, limiter.ActiveCount())
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxObserved, maxConcurrent)
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestExportLimiter_TryAcquire(t *testing.T) {
	limiter := NewExportLimiter(1, time.Second)

	require.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire(), "second TryAcquire should fail without blocking")

	limiter.Release()
	require.True(t, limiter.TryAcquire())
	limiter.Release()
}

func TestExportLimiter_ContextCancellation(t *testing.T) {
	limiter := NewExportLimiter(1, 5*time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after context cancellation")
	}
}

func TestExportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewExportLimiter(2, time.Second)
	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))

	drained := make(chan error, 1)
	go func() { drained <- limiter.WaitForDrain(context.Background()) }()

	limiter.Release()
	select {
	case <-drained:
		t.Fatal("WaitForDrain returned with one export still running")
	case <-time.After(150 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-drained:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not complete after all released")
	}
}

func TestExportLimiter_WaitForDrainCancelled(t *testing.T) {
	limiter := NewExportLimiter(1, time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, limiter.WaitForDrain(ctx), context.DeadlineExceeded)
}

func TestExportLimiter_Status(t *testing.T) {
	limiter := NewExportLimiter(3, time.Second)
	assert.Equal(t, LimiterStatus{Active: 0, Available: 3, MaxConcurrent: 3}, limiter.Status())

	require.True(t, limiter.TryAcquire())
	require.True(t, limiter.TryAcquire())
	assert.Equal(t, LimiterStatus{Active: 2, Available: 1, MaxConcurrent: 3}, limiter.Status())

	limiter.Release()
	limiter.Release()
}

func TestExportLimiter_DefaultValues(t *testing.T) {
	limiter := NewExportLimiter(0, 0)
	assert.Equal(t, DefaultMaxConcurrentExports, limiter.MaxConcurrent())
}

func TestExportLimiter_WaitForDrainIdle(t *testing.T) {
	limiter := NewExportLimiter(1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nothing running: drained even with a dead context.
	assert.NoError(t, limiter.WaitForDrain(ctx))

	require.True(t, limiter.TryAcquire())
	assert.ErrorIs(t, limiter.WaitForDrain(ctx), context.Canceled)
	limiter.Release()
	assert.NoError(t, limiter.WaitForDrain(ctx))
}
