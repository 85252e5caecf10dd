package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Task is one unit of background work, typically a workflow invocation.
type Task func(ctx context.Context) error

// ErrClosed is returned by Go once Wait has been called.
var ErrClosed = errors.New("supervisor closed")

// Supervisor runs tasks in the background, detached from whatever request started
// them, and logs their failures.
type Supervisor struct {
	log *slog.Logger
	ctx context.Context

	mu       sync.Mutex
	closed   bool
	inflight int
	wg       sync.WaitGroup
}

// NewSupervisor returns a Supervisor whose tasks run under context.Background.
// Tasks are never cancelled once started.
func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log, ctx: context.Background()}
}

// Go starts task on its own goroutine. It does not wait for the task to finish.
func (s *Supervisor) Go(name string, task Task) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Warn("supervisor closed, task dropped", slog.String("task", name))
		return ErrClosed
	}
	s.inflight++
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.done()
		if err := s.run(task); err != nil {
			s.log.Error("background task failed", slog.String("task", name), slog.Any("err", err))
		}
	}()
	return nil
}

// InFlight reports how many tasks are currently running.
func (s *Supervisor) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Wait stops accepting tasks and blocks until running tasks finish or ctx expires.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for %d background tasks: %w", s.InFlight(), ctx.Err())
	}
}

func (s *Supervisor) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(s.ctx)
}

func (s *Supervisor) done() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.wg.Done()
}
