package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Name string
}

func byName(r request) string {
	return "name:" + strings.ToLower(r.Name)
}

// recorder is a ProcessFunc that records the keys of every call.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) process(_ context.Context, items map[string]request) map[string]Outcome[string] {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(items))
	out := make(map[string]Outcome[string], len(items))
	for key, item := range items {
		keys = append(keys, key)
		out[key] = Outcome[string]{Value: "created " + item.Name}
	}
	r.calls = append(r.calls, keys)
	return out
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestSameKeyCallersShareOneCall(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher[request, string](Config{Name: "create tag", Window: 50 * time.Millisecond}, byName, rec.process, nil)
	defer b.Close()

	const callers = 5
	results := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = b.Add(context.Background(), request{Name: "Sunset"})
		}()
	}
	wg.Wait()

	require.Equal(t, 1, rec.callCount())
	assert.Equal(t, []string{"name:sunset"}, rec.calls[0])
	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
}

func TestDistinctKeysShareOneWindow(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher[request, string](Config{Window: 50 * time.Millisecond}, byName, rec.process, nil)
	defer b.Close()

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := b.Add(context.Background(), request{Name: name})
			assert.NoError(t, err)
			assert.Equal(t, "created "+name, got)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, rec.callCount())
	assert.ElementsMatch(t, []string{"name:a", "name:b", "name:c"}, rec.calls[0])
}

func TestQueueLimitProcessesImmediately(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher[request, string](Config{QueueLimit: 2, Window: time.Hour}, byName, rec.process, nil)
	defer b.Close()

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Add(context.Background(), request{Name: name})
			assert.NoError(t, err)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue limit did not trigger processing")
	}
	assert.Equal(t, 1, rec.callCount())
}

func TestMissingOutcome(t *testing.T) {
	b := NewBatcher[request, string](Config{Name: "create tag", Window: 10 * time.Millisecond}, byName,
		func(context.Context, map[string]request) map[string]Outcome[string] {
			return map[string]Outcome[string]{}
		}, nil)
	defer b.Close()

	_, err := b.Add(context.Background(), request{Name: "a"})

	assert.ErrorIs(t, err, ErrNoOutcome)
}

func TestOutcomeErrorReachesEveryWaiter(t *testing.T) {
	exists := errors.New("exists")
	b := NewBatcher[request, string](Config{Window: 30 * time.Millisecond}, byName,
		func(_ context.Context, items map[string]request) map[string]Outcome[string] {
			out := make(map[string]Outcome[string])
			for key := range items {
				out[key] = Outcome[string]{Err: exists}
			}
			return out
		}, nil)
	defer b.Close()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Add(context.Background(), request{Name: "a"})
			assert.ErrorIs(t, err, exists)
		}()
	}
	wg.Wait()
}

func TestPanickingProcessFailsWindow(t *testing.T) {
	b := NewBatcher[request, string](Config{Window: 10 * time.Millisecond}, byName,
		func(context.Context, map[string]request) map[string]Outcome[string] {
			panic("storage driver bug")
		}, nil)
	defer b.Close()

	_, err := b.Add(context.Background(), request{Name: "a"})

	assert.ErrorIs(t, err, ErrBatchFailed)
}

func TestAddRespectsCallerContext(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher[request, string](Config{Window: time.Hour}, byName, rec.process, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := b.Add(ctx, request{Name: "a"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The queued item is still processed on Close.
	b.Close()
	assert.Equal(t, 1, rec.callCount())
}

func TestCloseFlushesAndRejects(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher[request, string](Config{Window: time.Hour}, byName, rec.process, nil)

	var got atomic.Value
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := b.Add(context.Background(), request{Name: "a"})
		assert.NoError(t, err)
		got.Store(v)
	}()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.queue) == 1
	}, time.Second, time.Millisecond)

	b.Close()
	wg.Wait()

	assert.Equal(t, "created a", got.Load())
	_, err := b.Add(context.Background(), request{Name: "b"})
	assert.ErrorIs(t, err, ErrClosed)
}
