package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances instantly on Sleep and records requested delays
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) sleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

func TestScheduler(t *testing.T) {
	t.Run("Runs calls in FIFO order", func(t *testing.T) {
		clock := newFakeClock()
		s := NewScheduler(time.Second, WithClock(clock))
		defer s.Close()

		var (
			mu    sync.Mutex
			order []int
		)
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Stagger enqueues so queue order is deterministic
				time.Sleep(time.Duration(i) * 20 * time.Millisecond)
				err := s.Schedule(context.Background(), func() error {
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	})

	t.Run("Enforces the minimum interval between call starts", func(t *testing.T) {
		clock := newFakeClock()
		s := NewScheduler(time.Second, WithClock(clock))
		defer s.Close()

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Schedule(context.Background(), func() error { return nil }))
		}

		// First call starts immediately, the next two each wait a full
		// interval on the fake clock
		assert.Equal(t, 2, clock.sleepCount())
	})

	t.Run("Propagates the call error to its caller only", func(t *testing.T) {
		s := NewScheduler(0)
		defer s.Close()

		boom := errors.New("boom")
		err := s.Schedule(context.Background(), func() error { return boom })
		assert.ErrorIs(t, err, boom)

		err = s.Schedule(context.Background(), func() error { return nil })
		assert.NoError(t, err)
	})

	t.Run("Cancelled context abandons the wait", func(t *testing.T) {
		s := NewScheduler(0)
		defer s.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Schedule(ctx, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Schedule after Close is rejected", func(t *testing.T) {
		s := NewScheduler(0)
		s.Close()

		err := s.Schedule(context.Background(), func() error { return nil })
		assert.ErrorIs(t, err, ErrSchedulerClosed)
	})

	t.Run("Close drains the queued calls", func(t *testing.T) {
		s := NewScheduler(0)

		var (
			mu  sync.Mutex
			ran int
		)
		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Schedule(context.Background(), func() error {
					mu.Lock()
					ran++
					mu.Unlock()
					return nil
				})
			}()
		}
		wg.Wait()
		s.Close()

		assert.Equal(t, 3, ran)
	})
}
