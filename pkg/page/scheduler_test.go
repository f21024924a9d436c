package page

import (
	"context"
	"testing"
	"time"

	"github.com/foomo/gitpages/pkg/git/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSchedulerRunsPasses(t *testing.T) {
	r, err := NewRegistry(zaptest.NewLogger(t), testConfigs("/"))
	require.NoError(t, err)

	fetcher := mock.NewFetcher(mock.Snapshot("c1", mock.File("index.html", "hi")))
	s := NewScheduler(zaptest.NewLogger(t), r, fetcher,
		SchedulerWithInterval(10*time.Millisecond),
		SchedulerWithTempDir(t.TempDir()),
	)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return fetcher.Calls() >= 3
	}, 5*time.Second, time.Millisecond, "scheduler should keep triggering passes")
	assert.True(t, r.Loaded())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestSchedulerStopsWithoutPass(t *testing.T) {
	r, err := NewRegistry(zaptest.NewLogger(t), testConfigs("/"))
	require.NoError(t, err)

	fetcher := mock.NewFetcher(mock.Snapshot("c1", mock.File("index.html", "hi")))
	s := NewScheduler(zaptest.NewLogger(t), r, fetcher,
		SchedulerWithInterval(time.Hour),
		SchedulerWithTempDir(t.TempDir()),
	)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	// initial pass runs right away, the next one only after the interval
	require.Eventually(t, func() bool {
		return fetcher.Calls() == 1
	}, 5*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
	assert.Equal(t, 1, fetcher.Calls())
}
