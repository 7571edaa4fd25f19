package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
	once    sync.Once
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *blockingRunner) RefreshAll(ctx context.Context, input usecase.RefreshInput) (usecase.RefreshResult, error) {
	r.calls.Add(1)
	r.once.Do(func() { close(r.started) })
	select {
	case <-r.release:
	case <-ctx.Done():
		return usecase.RefreshResult{}, ctx.Err()
	}
	if r.err != nil {
		return usecase.RefreshResult{}, r.err
	}
	return usecase.RefreshResult{Gameweek: 7, Total: 21, Succeeded: 21}, nil
}

func TestScheduler_TriggerCoalescesWhileRunning(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	s, err := New(runner, Config{}, nil)
	require.NoError(t, err)

	first := make(chan TriggerResult, 1)
	go func() {
		res, err := s.Trigger(context.Background())
		assert.NoError(t, err)
		first <- res
	}()

	<-runner.started
	assert.Equal(t, StateRunning, s.State())

	second, err := s.Trigger(t.Context())
	require.NoError(t, err)
	assert.True(t, second.Coalesced)
	assert.Nil(t, second.Result)

	close(runner.release)
	res := <-first
	assert.False(t, res.Coalesced)
	require.NotNil(t, res.Result)
	assert.Equal(t, 7, res.Result.Gameweek)

	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, StateIdle, s.State())
}

func TestScheduler_RunsAgainAfterIdle(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	close(runner.release)
	s, err := New(runner, Config{}, nil)
	require.NoError(t, err)

	for range 2 {
		res, err := s.Trigger(t.Context())
		require.NoError(t, err)
		assert.False(t, res.Coalesced)
	}
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestScheduler_RunnerErrorReturnsToIdle(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	runner.err = errors.New("bootstrap down")
	close(runner.release)
	s, err := New(runner, Config{}, nil)
	require.NoError(t, err)

	_, err = s.Trigger(t.Context())
	require.ErrorContains(t, err, "bootstrap down")
	assert.Equal(t, StateIdle, s.State())
}

func TestScheduler_StopCancelsRunAfterDeadline(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	s, err := New(runner, Config{}, nil)
	require.NoError(t, err)
	s.Start()

	triggerErr := make(chan error, 1)
	go func() {
		_, err := s.Trigger(context.Background())
		triggerErr <- err
	}()
	<-runner.started

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
	require.ErrorIs(t, <-triggerErr, context.Canceled)
}

func TestNew_ValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(newBlockingRunner(), Config{Location: "Mars/Olympus"}, nil)
	require.Error(t, err)

	_, err = New(newBlockingRunner(), Config{Specs: []string{"not a spec"}}, nil)
	require.Error(t, err)

	s, err := New(newBlockingRunner(), Config{}, nil)
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop(t.Context()) }()

	next := s.NextRun()
	require.False(t, next.IsZero())
	london, _ := time.LoadLocation(DefaultLocation)
	hour := next.In(london).Hour()
	assert.Contains(t, []int{0, 17}, hour)
}
