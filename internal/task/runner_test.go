package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/artquiz-api/internal/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func countingJob(name string, n *atomic.Int32, err error) Job {
	return NewJob(name, func(context.Context) error {
		n.Add(1)
		return err
	})
}

func TestRunner_RunsJobsPeriodically(t *testing.T) {
	t.Parallel()

	runner := NewRunner(DefaultRunnerConfig(), discardLogger())
	var runs atomic.Int32
	require.NoError(t, runner.Register(countingJob("tick", &runs, nil), 5*time.Millisecond))
	require.NoError(t, runner.Start())

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	runner.Stop()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "jobs must not run after Stop")
}

func TestRunner_Register(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{}, nil)
	var runs atomic.Int32

	t.Run("invalid interval", func(t *testing.T) {
		err := runner.Register(countingJob("bad", &runs, nil), 0)
		assert.Error(t, err)
	})

	t.Run("after start", func(t *testing.T) {
		require.NoError(t, runner.Start())
		defer runner.Stop()

		err := runner.Register(countingJob("late", &runs, nil), time.Second)
		assert.ErrorIs(t, err, ErrRunnerStarted)
		assert.ErrorIs(t, runner.Start(), ErrRunnerStarted)
	})
}

func TestRunner_ErrorHandler(t *testing.T) {
	t.Parallel()

	runner := NewRunner(DefaultRunnerConfig(), discardLogger())
	jobErr := errors.New("flush failed")

	var (
		mu     sync.Mutex
		failed []string
	)
	runner.SetErrorHandler(func(job Job, err error) {
		mu.Lock()
		defer mu.Unlock()
		if errors.Is(err, jobErr) {
			failed = append(failed, job.Name())
		}
	})

	var runs atomic.Int32
	require.NoError(t, runner.Register(countingJob("failing", &runs, jobErr), 5*time.Millisecond))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failed) > 0
	}, time.Second, time.Millisecond)
}

func TestRunner_PanickingJobKeepsRunning(t *testing.T) {
	t.Parallel()

	runner := NewRunner(DefaultRunnerConfig(), discardLogger())
	var runs atomic.Int32
	var handled atomic.Int32
	runner.SetErrorHandler(func(Job, error) { handled.Add(1) })

	require.NoError(t, runner.Register(NewJob("panics", func(context.Context) error {
		runs.Add(1)
		panic("boom")
	}), 5*time.Millisecond))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 && handled.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestRunner_StopRunsShutdownJobsOnce(t *testing.T) {
	t.Parallel()

	runner := NewRunner(DefaultRunnerConfig(), discardLogger())
	var order []string
	runner.OnStop(NewJob("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	}))
	runner.OnStop(NewJob("second", func(context.Context) error {
		order = append(order, "second")
		return errors.New("ignored")
	}))

	require.NoError(t, runner.Start())
	runner.Stop()
	runner.Stop()

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRunner_RunNow(t *testing.T) {
	t.Parallel()

	runner := NewRunner(DefaultRunnerConfig(), discardLogger())
	var runs atomic.Int32
	require.NoError(t, runner.Register(countingJob(JobOptimizeSchedule, &runs, nil), time.Hour))

	require.NoError(t, runner.RunNow(context.Background(), JobOptimizeSchedule))
	assert.Equal(t, int32(1), runs.Load())

	assert.Error(t, runner.RunNow(context.Background(), "missing"))
}

type fakeQuizJobs struct {
	views, submissions counter.FlushResult
	optimizeErr        error
	refreshed          atomic.Int32
	closed             atomic.Bool
}

func (f *fakeQuizJobs) FlushViews(context.Context) counter.FlushResult       { return f.views }
func (f *fakeQuizJobs) FlushSubmissions(context.Context) counter.FlushResult { return f.submissions }
func (f *fakeQuizJobs) OptimizeSchedule(context.Context) error              { return f.optimizeErr }
func (f *fakeQuizJobs) Close()                                              { f.closed.Store(true) }

func (f *fakeQuizJobs) RefreshFixedContexts(context.Context) (bool, error) {
	f.refreshed.Add(1)
	return true, nil
}

func TestJobs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := &fakeQuizJobs{
		views:       counter.FlushResult{Drained: 4, Persisted: 4},
		submissions: counter.FlushResult{Drained: 3, Persisted: 1, Failed: 2},
		optimizeErr: errors.New("busy"),
	}

	views := NewFlushViewsJob(f)
	assert.Equal(t, JobFlushViews, views.Name())
	assert.NoError(t, views.Execute(ctx))

	subs := NewFlushSubmissionsJob(f)
	err := subs.Execute(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")

	assert.ErrorIs(t, NewOptimizeJob(f).Execute(ctx), f.optimizeErr)

	assert.NoError(t, NewRefreshFixedJob(f).Execute(ctx))
	assert.Equal(t, int32(1), f.refreshed.Load())

	assert.NoError(t, NewCloseJob(JobCloseTagBatcher, f).Execute(ctx))
	assert.True(t, f.closed.Load())
}
