package workerpool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrPoolFull is returned by TrySubmit when every worker is busy.
var ErrPoolFull = errors.New("worker pool full")

// Pool bounds concurrent background tasks with a semaphore channel.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a pool with the given max concurrent workers.
func New(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{sem: make(chan struct{}, maxWorkers)}
}

// Submit runs fn in the pool, blocking if all workers are busy.
// Returns ctx.Err() if ctx is cancelled while waiting.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
		p.run(fn)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit runs fn if a worker is free and returns ErrPoolFull otherwise.
func (p *Pool) TrySubmit(fn func()) error {
	select {
	case p.sem <- struct{}{}:
		p.run(fn)
		return nil
	default:
		return ErrPoolFull
	}
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("background task panicked", "panic", r)
			}
		}()
		fn()
	}()
}
