package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Pool bounds how many blocking calls run at once across all consultations.
type Pool struct {
	slots chan struct{}

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Task is the join point of a submitted job.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the job finishes or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	default:
	}

	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit runs fn on the pool. A job that is still queued when ctx ends
// finishes with ctx.Err() without running.
func Submit[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		t.err = ErrPoolClosed
		close(t.done)
		return t
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	go func() {
		defer p.wg.Done()
		defer close(t.done)

		if err := ctx.Err(); err != nil {
			t.err = err
			return
		}
		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			t.err = ctx.Err()
			return
		}
		defer func() { <-p.slots }()

		t.value, t.err = fn(ctx)
	}()

	return t
}

// Close rejects new jobs and waits for the accepted ones.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}
