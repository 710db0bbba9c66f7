package counter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records persisted deltas and fails when told to.
type fakeStore struct {
	mu        sync.Mutex
	persisted map[uuid.UUID]Views
	fail      func(id uuid.UUID) bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{persisted: make(map[uuid.UUID]Views)}
}

func (s *fakeStore) persist(_ context.Context, id uuid.UUID, d Views) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil && s.fail(id) {
		return errors.New("storage down")
	}
	s.persisted[id] += d
	return nil
}

func (s *fakeStore) get(id uuid.UUID) Views {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted[id]
}

func TestSubmissionMerge(t *testing.T) {
	d := SubmissionFor(true).Merge(SubmissionFor(false)).Merge(SubmissionFor(true))

	assert.Equal(t, Submission{Correct: 2, Incorrect: 1}, d)
}

func TestIncrementCoalesces(t *testing.T) {
	b := NewBuffer[Views](Config{Name: "views"}, newFakeStore().persist, nil)
	id := uuid.New()

	assert.True(t, b.IsEmpty())
	for i := 0; i < 4; i++ {
		b.Increment(id, 1)
	}

	d, ok := b.Pending(id)
	assert.True(t, ok)
	assert.Equal(t, Views(4), d)
	assert.Equal(t, 1, b.Len())
}

func TestFlushPersistsAndDrains(t *testing.T) {
	store := newFakeStore()
	log, _ := logger.GetTestLogger(t)
	b := NewBuffer[Views](Config{Name: "views", GroupSize: 2}, store.persist, log)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		b.Increment(id, Views(i+1))
	}

	result := b.Flush(context.Background())

	assert.Equal(t, FlushResult{Drained: 3, Persisted: 3}, result)
	assert.True(t, b.IsEmpty())
	for i, id := range ids {
		assert.Equal(t, Views(i+1), store.get(id))
	}
}

func TestFlushEmpty(t *testing.T) {
	calls := 0
	b := NewBuffer[Views](Config{}, func(context.Context, uuid.UUID, Views) error {
		calls++
		return nil
	}, nil)

	assert.Equal(t, FlushResult{}, b.Flush(context.Background()))
	assert.Zero(t, calls)
}

func TestFlushRebuffersFailures(t *testing.T) {
	store := newFakeStore()
	log, buf := logger.GetTestLogger(t)
	b := NewBuffer[Views](Config{Name: "views"}, store.persist, log)
	good, bad := uuid.New(), uuid.New()
	store.fail = func(id uuid.UUID) bool { return id == bad }

	b.Increment(good, 2)
	b.Increment(bad, 3)
	result := b.Flush(context.Background())

	assert.Equal(t, FlushResult{Drained: 2, Persisted: 1, Failed: 1}, result)
	pending, ok := b.Pending(bad)
	require.True(t, ok)
	assert.Equal(t, Views(3), pending)
	assert.NotEmpty(t, buf.EntriesWithMessage("failed to persist counter, will retry"))

	// Increments that arrive after the failure merge with the retried value.
	b.Increment(bad, 1)
	store.fail = nil
	result = b.Flush(context.Background())

	assert.Equal(t, FlushResult{Drained: 1, Persisted: 1}, result)
	assert.Equal(t, Views(4), store.get(bad))
	assert.Equal(t, Views(2), store.get(good))
}

func TestFlushRecoversPanickingPersist(t *testing.T) {
	b := NewBuffer[Views](Config{}, func(context.Context, uuid.UUID, Views) error {
		panic("driver bug")
	}, nil)
	id := uuid.New()
	b.Increment(id, 1)

	result := b.Flush(context.Background())

	assert.Equal(t, 1, result.Failed)
	d, ok := b.Pending(id)
	assert.True(t, ok)
	assert.Equal(t, Views(1), d)
}

func TestFlushBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	b := NewBuffer[Views](Config{GroupSize: 3}, func(context.Context, uuid.UUID, Views) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}, nil)
	for i := 0; i < 10; i++ {
		b.Increment(uuid.New(), 1)
	}

	result := b.Flush(context.Background())

	assert.Equal(t, 10, result.Persisted)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestConservationUnderConcurrentIncrementsAndFailures(t *testing.T) {
	store := newFakeStore()
	var attempts atomic.Int64
	store.fail = func(uuid.UUID) bool { return attempts.Add(1)%3 == 0 }
	b := NewBuffer[Views](Config{Name: "views", GroupSize: 4}, store.persist, nil)

	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
	}

	const perWorker = 200
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b.Increment(ids[i%len(ids)], 1)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

flushing:
	for {
		select {
		case <-done:
			break flushing
		default:
			b.Flush(context.Background())
		}
	}

	var total Views
	for _, id := range ids {
		pending, _ := b.Pending(id)
		total += store.get(id) + pending
	}
	assert.Equal(t, Views(4*perWorker), total)

	store.fail = nil
	for !b.IsEmpty() {
		b.Flush(context.Background())
	}
	total = 0
	for _, id := range ids {
		total += store.get(id)
	}
	assert.Equal(t, Views(4*perWorker), total)
}
