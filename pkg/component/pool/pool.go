// Package pool wraps ants with task statistics and a safe fallback.
package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Config defines the configuration for a worker pool.
type Config struct {
	// Capacity is the maximum number of concurrent workers.
	Capacity int
	// ExpiryDuration is how long an idle worker lives before cleanup.
	ExpiryDuration time.Duration
	// Nonblocking makes Submit return ants.ErrPoolOverload when the
	// pool is full instead of blocking.
	Nonblocking bool
	// MaxBlockingTasks caps queued tasks when Nonblocking is false.
	MaxBlockingTasks int
}

// BackgroundConfig returns a configuration suited for background work
// such as document ingestion.
func BackgroundConfig() *Config {
	return &Config{
		Capacity:         50,
		ExpiryDuration:   60 * time.Second,
		Nonblocking:      true,
		MaxBlockingTasks: 100,
	}
}

// Stats is an atomic snapshot of pool counters.
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
	Fallbacks int64
	Panics    int64
}

// Pool is a named worker pool.
type Pool struct {
	name string
	pool *ants.Pool

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	fallbacks atomic.Int64
	panics    atomic.Int64

	closed   atomic.Bool
	closedMu sync.Mutex
}

// New creates a worker pool with the given configuration.
func New(name string, config *Config) (*Pool, error) {
	if config == nil {
		config = BackgroundConfig()
	}

	p := &Pool{name: name}

	opts := []ants.Option{
		ants.WithExpiryDuration(config.ExpiryDuration),
		ants.WithNonblocking(config.Nonblocking),
		ants.WithMaxBlockingTasks(config.MaxBlockingTasks),
		ants.WithPanicHandler(func(r interface{}) {
			p.panics.Add(1)
			logger.Errorw("Worker panic recovered", "pool", name, "panic", r)
		}),
	}

	antsPool, err := ants.NewPool(config.Capacity, opts...)
	if err != nil {
		return nil, err
	}
	p.pool = antsPool

	logger.Infow("Worker pool created", "name", name, "capacity", config.Capacity)
	return p, nil
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Running returns the number of running workers.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Submit runs the task on the pool. When the pool is overloaded the task
// falls back to a plain goroutine so callers never lose work.
func (p *Pool) Submit(task func()) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.submitted.Add(1)
	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				p.failed.Add(1)
				panic(r)
			}
			p.completed.Add(1)
		}()
		task()
	}

	err := p.pool.Submit(wrapped)
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			p.fallbacks.Add(1)
			logger.Warnw("Worker pool overloaded, falling back to goroutine", "pool", p.name)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						p.panics.Add(1)
						p.failed.Add(1)
						logger.Errorw("Fallback goroutine panic recovered", "pool", p.name, "panic", r)
						return
					}
					p.completed.Add(1)
				}()
				task()
			}()
			return nil
		}
		p.failed.Add(1)
		return err
	}
	return nil
}

// Release closes the pool and releases its workers. Safe to call twice.
func (p *Pool) Release() {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return
	}
	p.closed.Store(true)
	p.pool.Release()
	logger.Infow("Worker pool released", "name", p.name)
}

// ReleaseTimeout closes the pool, waiting for running tasks up to timeout.
func (p *Pool) ReleaseTimeout(timeout time.Duration) error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()

	if p.closed.Load() {
		return nil
	}
	p.closed.Store(true)
	return p.pool.ReleaseTimeout(timeout)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Fallbacks: p.fallbacks.Load(),
		Panics:    p.panics.Load(),
	}
}
