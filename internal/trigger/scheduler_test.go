package trigger

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSchedulerRejectsInvalidExpression(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	for _, expr := range []string{"", "not a cron", "61 7 * * 1-5", "0 7 * * 1-5 2024"} {
		_, err := NewScheduler(testLogger(&logs), expr, time.UTC, sup, func(ctx context.Context) error { return nil })
		require.Error(t, err, expr)
	}
}

func TestSchedulerTickHandsTaskToSupervisor(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))
	var calls atomic.Int32

	s, err := NewScheduler(testLogger(&logs), "0 7 * * 1-5", time.UTC, sup, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	s.cron.Entry(s.entry).Job.Run()
	s.cron.Entry(s.entry).Job.Run()

	require.NoError(t, sup.Wait(context.Background()))
	require.Equal(t, int32(2), calls.Load())
	require.Contains(t, logs.String(), "scheduled event triggered")
}

func TestSchedulerStartComputesNextWeekdayRun(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	s, err := NewScheduler(testLogger(&logs), "0 7 * * 1-5", time.UTC, sup, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	s.Start()
	next := s.Next().UTC()
	require.NoError(t, s.Stop(context.Background()))

	require.False(t, next.IsZero())
	require.Equal(t, 7, next.Hour())
	require.Equal(t, 0, next.Minute())
	require.NotEqual(t, time.Saturday, next.Weekday())
	require.NotEqual(t, time.Sunday, next.Weekday())
}

func TestSchedulerTickAfterSupervisorClosed(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))
	var calls atomic.Int32

	s, err := NewScheduler(testLogger(&logs), "0 7 * * 1-5", time.UTC, sup, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, sup.Wait(context.Background()))

	s.cron.Entry(s.entry).Job.Run()

	require.Equal(t, int32(0), calls.Load())
	require.Contains(t, logs.String(), "scheduled run not started")
}
