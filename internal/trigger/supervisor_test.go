package trigger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// syncBuffer lets tests read logs written from background goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger(buf *syncBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestSupervisorRunsTaskInBackground(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, sup.Go("slow", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))

	<-started
	require.Equal(t, 1, sup.InFlight())

	close(release)
	require.NoError(t, sup.Wait(context.Background()))
	require.Equal(t, 0, sup.InFlight())
}

func TestSupervisorLogsTaskError(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	require.NoError(t, sup.Go("failing", func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, sup.Wait(context.Background()))

	out := logs.String()
	require.Contains(t, out, "background task failed")
	require.Contains(t, out, "task=failing")
	require.Contains(t, out, "boom")
}

func TestSupervisorRecoversPanic(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	require.NoError(t, sup.Go("panicky", func(ctx context.Context) error {
		panic("unexpected")
	}))
	require.NoError(t, sup.Wait(context.Background()))
	require.Contains(t, logs.String(), "panic: unexpected")
}

func TestSupervisorTaskContextIsNotCancelled(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	var taskErr error
	require.NoError(t, sup.Go("ctx", func(ctx context.Context) error {
		taskErr = ctx.Err()
		return nil
	}))
	require.NoError(t, sup.Wait(context.Background()))
	require.NoError(t, taskErr)
}

func TestSupervisorWaitTimeoutAndClose(t *testing.T) {
	var logs syncBuffer
	sup := NewSupervisor(testLogger(&logs))

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, sup.Go("stuck", func(ctx context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := sup.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.ErrorIs(t, sup.Go("late", func(ctx context.Context) error { return nil }), ErrClosed)
}
