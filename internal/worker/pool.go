package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit after Close has been called.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool runs CPU-bound tasks on a fixed set of workers with a bounded queue.
// Submit blocks while the queue is full, so back-pressure propagates to the
// callers instead of spawning unbounded goroutines.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool starts a pool with the given number of workers and queue capacity.
// Both values must be positive.
func NewPool(workers, queueSize int) *Pool {
	p := &Pool{
		tasks: make(chan func(), queueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()

	for task := range p.tasks {
		task()
	}
}

// Submit enqueues a task, blocking while the queue is full. It returns the
// context error if ctx is done before the task is accepted. A task that has
// been accepted always runs to completion; there is no cancellation of
// in-flight work.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for queued and running tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
