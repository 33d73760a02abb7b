package forecast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-iot-telemetry/internal/pkg/workerpool"
)

type trainingClaimer interface {
	ClaimTraining(ctx context.Context, userID string, now time.Time, interval time.Duration) (bool, error)
}

type taskRunner interface {
	TrySubmit(fn func()) error
}

type userTrainer interface {
	TrainAll(ctx context.Context, userID string) error
}

// ShouldRetrain reports whether a user last trained at last is due again at now.
func ShouldRetrain(last *time.Time, now time.Time, interval time.Duration) bool {
	if last == nil {
		return true
	}
	return now.UTC().Sub(last.UTC()) >= interval
}

// Scheduler dispatches at most one background retrain per user per interval.
type Scheduler struct {
	claims   trainingClaimer
	pool     taskRunner
	trainer  userTrainer
	interval time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	recent map[string]time.Time
}

type SchedulerDeps struct {
	Claims   trainingClaimer
	Pool     taskRunner
	Trainer  userTrainer
	Interval time.Duration
	Timeout  time.Duration
}

func NewScheduler(deps SchedulerDeps) *Scheduler {
	return &Scheduler{
		claims:   deps.Claims,
		pool:     deps.Pool,
		trainer:  deps.Trainer,
		interval: deps.Interval,
		timeout:  deps.Timeout,
		recent:   map[string]time.Time{},
	}
}

// MaybeSchedule claims the user's training window and, if the claim wins,
// hands a retrain to the pool. The stored claim is the source of truth; the
// in-process cache only saves a round trip for windows this process already
// claimed. It reports whether a task was dispatched.
func (s *Scheduler) MaybeSchedule(ctx context.Context, userID string, now time.Time) (bool, error) {
	now = now.UTC()
	if !s.dueLocally(userID, now) {
		return false, nil
	}

	claimed, err := s.claims.ClaimTraining(ctx, userID, now, s.interval)
	if err != nil {
		return false, err
	}
	if !claimed {
		slog.Debug("training skipped", "user_id", userID, "reason", "window already claimed")
		return false, nil
	}
	s.remember(userID, now)

	base := context.WithoutCancel(ctx)
	err = s.pool.TrySubmit(func() {
		taskCtx, cancel := context.WithTimeout(base, s.timeout)
		defer cancel()
		if err := s.trainer.TrainAll(taskCtx, userID); err != nil {
			slog.Error("training failed", "user_id", userID, "err", err)
		}
	})
	if errors.Is(err, workerpool.ErrPoolFull) {
		slog.Warn("training dropped", "user_id", userID, "reason", "worker pool full")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	slog.Info("training scheduled", "user_id", userID)
	return true, nil
}

func (s *Scheduler) dueLocally(userID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.recent[userID]
	if !ok {
		return true
	}
	return ShouldRetrain(&last, now, s.interval)
}

func (s *Scheduler) remember(userID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent[userID] = now
}
