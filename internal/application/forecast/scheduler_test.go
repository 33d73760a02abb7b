package forecast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-iot-telemetry/internal/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// claimStore mimics the conditional write: a serialized check-and-set.
type claimStore struct {
	mu   sync.Mutex
	last map[string]time.Time
	err  error
}

func newClaimStore() *claimStore { return &claimStore{last: map[string]time.Time{}} }

func (c *claimStore) ClaimTraining(_ context.Context, userID string, now time.Time, interval time.Duration) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var last *time.Time
	if t, ok := c.last[userID]; ok {
		last = &t
	}
	if !ShouldRetrain(last, now, interval) {
		return false, nil
	}
	c.last[userID] = now
	return true, nil
}

type countingTrainer struct {
	calls atomic.Int32
	gate  chan struct{}
	seen  chan taskState
}

type taskState struct {
	err         error
	hasDeadline bool
}

func (t *countingTrainer) TrainAll(ctx context.Context, _ string) error {
	t.calls.Add(1)
	if t.gate != nil {
		<-t.gate
	}
	if t.seen != nil {
		_, ok := ctx.Deadline()
		t.seen <- taskState{err: ctx.Err(), hasDeadline: ok}
	}
	return nil
}

type fullPool struct{}

func (fullPool) TrySubmit(func()) error { return workerpool.ErrPoolFull }

func newTestScheduler(claims trainingClaimer, pool taskRunner, tr userTrainer) *Scheduler {
	return NewScheduler(SchedulerDeps{
		Claims:   claims,
		Pool:     pool,
		Trainer:  tr,
		Interval: time.Minute,
		Timeout:  time.Second,
	})
}

func TestShouldRetrain(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(-d); return &v }
	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{"never trained", nil, true},
		{"just trained", at(0), false},
		{"59s ago", at(59 * time.Second), false},
		{"exactly 60s ago", at(60 * time.Second), true},
		{"long ago", at(time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetrain(tt.last, now, time.Minute))
		})
	}
}

func TestShouldRetrain_ComparesInUTC(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-30 * time.Second).In(time.FixedZone("ICT", 7*3600))
	assert.False(t, ShouldRetrain(&last, now, time.Minute))
}

func TestMaybeSchedule_ConcurrentCallersDispatchOnce(t *testing.T) {
	pool := workerpool.New(4)
	tr := &countingTrainer{}
	s := newTestScheduler(newClaimStore(), pool, tr)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	const callers = 50
	var dispatched atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.MaybeSchedule(context.Background(), "u1", now)
			assert.NoError(t, err)
			if ok {
				dispatched.Add(1)
			}
		}()
	}
	wg.Wait()
	pool.Wait()

	assert.Equal(t, int32(1), dispatched.Load())
	assert.Equal(t, int32(1), tr.calls.Load())
}

func TestMaybeSchedule_NextWindow(t *testing.T) {
	pool := workerpool.New(1)
	tr := &countingTrainer{}
	s := newTestScheduler(newClaimStore(), pool, tr)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	ok, err := s.MaybeSchedule(ctx, "u1", now)
	require.NoError(t, err)
	assert.True(t, ok)
	pool.Wait()

	ok, err = s.MaybeSchedule(ctx, "u1", now.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.MaybeSchedule(ctx, "u1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	pool.Wait()

	ok, err = s.MaybeSchedule(ctx, "u2", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	pool.Wait()

	assert.Equal(t, int32(3), tr.calls.Load())
}

func TestMaybeSchedule_ClaimError(t *testing.T) {
	claims := newClaimStore()
	claims.err = errors.New("throttled")
	tr := &countingTrainer{}
	s := newTestScheduler(claims, workerpool.New(1), tr)

	ok, err := s.MaybeSchedule(context.Background(), "u1", time.Now())

	assert.False(t, ok)
	assert.ErrorContains(t, err, "throttled")
	assert.Equal(t, int32(0), tr.calls.Load())
}

func TestMaybeSchedule_PoolFullKeepsClaim(t *testing.T) {
	claims := newClaimStore()
	s := newTestScheduler(claims, fullPool{}, &countingTrainer{})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	ok, err := s.MaybeSchedule(context.Background(), "u1", now)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, now, claims.last["u1"])
}

func TestMaybeSchedule_TaskOutlivesRequestContext(t *testing.T) {
	pool := workerpool.New(1)
	tr := &countingTrainer{gate: make(chan struct{}), seen: make(chan taskState, 1)}
	s := newTestScheduler(newClaimStore(), pool, tr)

	reqCtx, cancel := context.WithCancel(context.Background())
	ok, err := s.MaybeSchedule(reqCtx, "u1", time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	cancel()
	close(tr.gate)

	state := <-tr.seen
	pool.Wait()
	assert.NoError(t, state.err)
	assert.True(t, state.hasDeadline)
}
