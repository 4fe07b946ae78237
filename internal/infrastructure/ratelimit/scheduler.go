// Package ratelimit serializes outbound calls to a fixed cadence.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSchedulerClosed is returned when scheduling after Close
var ErrSchedulerClosed = errors.New("ratelimit: scheduler closed")

// Clock abstracts time so the scheduler can be tested without real
// delays
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

type task struct {
	ctx  context.Context
	call func() error
	done chan error
}

// Scheduler executes calls strictly one at a time with at least
// minInterval between the start of consecutive calls, in FIFO order.
// Enqueuing never blocks other enqueuers; each caller waits only for
// its own result.
type Scheduler struct {
	minInterval time.Duration
	clock       Clock

	mu     sync.Mutex
	queue  []*task
	wake   chan struct{}
	closed bool

	wg sync.WaitGroup
}

// Option is a functional option for Scheduler configuration
type Option func(*Scheduler)

// WithClock injects a clock, used by tests to avoid real sleeps
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// NewScheduler creates a scheduler with the given minimum interval
// between call starts and starts its dispatch loop
func NewScheduler(minInterval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		minInterval: minInterval,
		clock:       realClock{},
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.dispatch()

	return s
}

// Schedule enqueues a call and blocks until the call has run or ctx is
// cancelled. A cancelled context abandons the caller's wait; if the
// call was already dequeued it still runs, but its result is
// discarded.
func (s *Scheduler) Schedule(ctx context.Context, call func() error) error {
	t := &task{ctx: ctx, call: call, done: make(chan error, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.queue = append(s.queue, t)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new calls, runs the calls already queued and
// waits for the dispatcher to finish
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.wg.Wait()
}

func (s *Scheduler) dispatch() {
	defer s.wg.Done()

	var lastStart time.Time
	started := false

	for {
		t := s.pop()
		if t == nil {
			s.mu.Lock()
			closed := s.closed
			empty := len(s.queue) == 0
			s.mu.Unlock()
			if closed && empty {
				return
			}
			<-s.wake
			continue
		}

		// Skip calls whose caller already gave up
		if t.ctx.Err() != nil {
			t.done <- t.ctx.Err()
			continue
		}

		if started {
			if gap := s.clock.Now().Sub(lastStart); gap < s.minInterval {
				s.clock.Sleep(s.minInterval - gap)
			}
		}
		lastStart = s.clock.Now()
		started = true

		t.done <- t.call()
	}
}

func (s *Scheduler) pop() *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	t := s.queue[0]
	s.queue = s.queue[1:]
	return t
}
