package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires a Task on a five-field cron expression. Ticks that arrive while a
// previous run is still going start another run.
type Scheduler struct {
	log   *slog.Logger
	cron  *cron.Cron
	entry cron.EntryID
	expr  string
}

// NewScheduler parses expr (minute hour day month weekday) in the given location and
// hands task to sup on every tick.
func NewScheduler(log *slog.Logger, expr string, loc *time.Location, sup *Supervisor, task Task) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	id, err := c.AddFunc(expr, func() {
		log.Info("scheduled event triggered")
		if err := sup.Go("scheduled", task); err != nil {
			log.Warn("scheduled run not started", slog.Any("err", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expr, err)
	}

	return &Scheduler{log: log, cron: c, entry: id, expr: expr}, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", slog.String("cron", s.expr), slog.Time("next", s.Next()))
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop prevents further ticks and waits for the tick callbacks in progress, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
