package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	s := New("test", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, nil)

	s.Start()
	assert.True(t, s.Running())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestScheduler_RunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New("test", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, nil)

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := New("scan", time.Hour, func(ctx context.Context) error { return nil }, log.New(&buf, "", 0))

	s.Stop()
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.Contains(t, buf.String(), "Scheduler scan already running")
	assert.False(t, s.Running())
}

func TestScheduler_LogsErrors(t *testing.T) {
	var buf bytes.Buffer
	var runs atomic.Int32
	s := New("scan", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}, log.New(&buf, "", 0))

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Contains(t, buf.String(), "Error running scan: boom")
}
