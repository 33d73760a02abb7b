package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.Equal(t, 4, cap(New(4).sem))
	assert.Equal(t, 1, cap(New(0).sem))
}

func TestSubmit_ExecutesFunction(t *testing.T) {
	pool := New(2)
	var called atomic.Bool

	require.NoError(t, pool.Submit(context.Background(), func() { called.Store(true) }))
	pool.Wait()

	assert.True(t, called.Load())
}

func TestSubmit_CancelledWhileWaiting(t *testing.T) {
	pool := New(1)
	release := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	pool.Wait()
}

func TestTrySubmit_FullPool(t *testing.T) {
	pool := New(1)
	release := make(chan struct{})
	require.NoError(t, pool.TrySubmit(func() { <-release }))

	assert.ErrorIs(t, pool.TrySubmit(func() {}), ErrPoolFull)

	close(release)
	pool.Wait()
	assert.NoError(t, pool.TrySubmit(func() {}))
	pool.Wait()
}

func TestRun_RecoversPanicAndReleasesSlot(t *testing.T) {
	pool := New(1)
	require.NoError(t, pool.TrySubmit(func() { panic("boom") }))
	pool.Wait()

	var ran atomic.Bool
	require.NoError(t, pool.TrySubmit(func() { ran.Store(true) }))
	pool.Wait()
	assert.True(t, ran.Load())
}

func TestSubmit_BoundsConcurrency(t *testing.T) {
	pool := New(2)
	var running, peak atomic.Int32
	for i := 0; i < 6; i++ {
		require.NoError(t, pool.Submit(context.Background(), func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}))
	}
	pool.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
