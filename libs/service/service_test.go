package service

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

type testService struct {
	BaseService

	onStartErr error
	stops      int
}

func newTestService(startErr error) *testService {
	ts := &testService{onStartErr: startErr}
	ts.BaseService = *NewBaseService(nil, "TestService", ts)
	return ts
}

func (ts *testService) OnStart(context.Context) error { return ts.onStartErr }
func (ts *testService) OnStop() { ts.stops++ }

func TestBaseServiceWait(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := newTestService(nil)
	require.NoError(t, ts.Start(ctx))
	require.True(t, ts.IsRunning())

	waitFinished := make(chan struct{})
	go func() {
		ts.Wait()
		close(waitFinished)
	}()

	go ts.Stop() //nolint:errcheck // ignore for tests

	select {
	case <-waitFinished:
		// all good
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected Wait() to finish within 100 ms.")
	}
	require.False(t, ts.IsRunning())
	require.Equal(t, 1, ts.stops)
}

func TestBaseServiceStopsOnContextCancel(t *testing.T) {
	t.Cleanup(leaktest.Check(t))

	ctx, cancel := context.WithCancel(context.Background())
	ts := newTestService(nil)
	require.NoError(t, ts.Start(ctx))

	cancel()

	select {
	case <-ts.Quit():
	case <-time.After(time.Second):
		t.Fatal("service did not stop after context cancellation")
	}
	require.ErrorIs(t, ts.Stop(), ErrAlreadyStopped)
}

func TestBaseServiceLifecycleErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := newTestService(nil)
	require.ErrorIs(t, ts.Stop(), ErrNotStarted)

	require.NoError(t, ts.Start(ctx))
	require.ErrorIs(t, ts.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, ts.Stop())
	require.ErrorIs(t, ts.Stop(), ErrAlreadyStopped)
	require.Equal(t, "TestService", ts.String())
}

func TestBaseServiceStartFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErr := context.DeadlineExceeded
	ts := newTestService(startErr)
	require.ErrorIs(t, ts.Start(ctx), startErr)
	require.False(t, ts.IsRunning())

	ts.onStartErr = nil
	require.NoError(t, ts.Start(ctx))
	require.NoError(t, ts.Stop())
}
