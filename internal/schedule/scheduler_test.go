package schedule

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, capacity int) *Scheduler {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return NewScheduler(Config{Capacity: capacity, LockTimeout: time.Second},
		logger.NewAsserter(log, true), log)
}

func artists(n int) []domain.QuizContext {
	contexts := make([]domain.QuizContext, n)
	for i := range contexts {
		contexts[i] = domain.QuizContext{Artist: fmt.Sprintf("artist-%d", i)}
	}
	return contexts
}

func report(t *testing.T, s *Scheduler) Status {
	t.Helper()
	status, err := s.Report(context.Background())
	require.NoError(t, err)
	return status
}

func countOf(t *testing.T, s *Scheduler, c domain.QuizContext) uint64 {
	t.Helper()
	for _, n := range report(t, s).Nodes {
		if n.Key == c.Key() {
			return n.ScheduleCount
		}
	}
	t.Fatalf("context %q not registered", c.Key())
	return 0
}

func TestNewSchedulerDefaults(t *testing.T) {
	s := NewScheduler(Config{}, nil, nil)

	assert.Equal(t, DefaultCapacity, s.Capacity())
	assert.Equal(t, DefaultLockTimeout, s.lockTimeout)
	assert.Equal(t, DefaultCapacity-1, s.pointer)
}

func TestScheduleSingleFixedContext(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, 10)
	monet := domain.QuizContext{Artist: "Monet", Page: 0}

	require.NoError(t, s.Initialize(ctx, []domain.QuizContext{monet}))

	for i := 0; i < 3; i++ {
		got, err := s.Schedule(ctx)
		require.NoError(t, err)
		assert.Equal(t, monet, got)
	}
	assert.Equal(t, uint64(3), countOf(t, s, monet))
}

func TestScheduleEmpty(t *testing.T) {
	s := newTestScheduler(t, 4)

	_, err := s.Schedule(context.Background())

	assert.ErrorIs(t, err, ErrNoContextAvailable)
}

func TestScheduleRoundRobin(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, 10)
	contexts := artists(10)

	ok, err := s.RequestAddContext(ctx, contexts, false)
	require.NoError(t, err)
	require.True(t, ok)

	seen := make(map[domain.ContextKey]int)
	var first domain.QuizContext
	for i := 0; i < 10; i++ {
		got, err := s.Schedule(ctx)
		require.NoError(t, err)
		if i == 0 {
			first = got
		}
		seen[got.Key()]++
	}

	assert.Len(t, seen, 10)
	for key, n := range seen {
		assert.Equal(t, 1, n, "context %s visited %d times", key, n)
	}

	next, err := s.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, next, "rotation should start over")
}

func TestScheduleSkipsEmptySlots(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, 5)
	contexts := artists(3)

	_, err := s.RequestAddContext(ctx, contexts, false)
	require.NoError(t, err)
	ok, err := s.RequestDeleteContext(ctx, contexts[1])
	require.NoError(t, err)
	require.True(t, ok)

	var got []domain.QuizContext
	for i := 0; i < 4; i++ {
		c, err := s.Schedule(ctx)
		require.NoError(t, err)
		got = append(got, c)
	}

	assert.Equal(t, []domain.QuizContext{contexts[0], contexts[2], contexts[0], contexts[2]}, got)
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("too many contexts", func(t *testing.T) {
		s := newTestScheduler(t, 3)
		err := s.Initialize(ctx, artists(4))
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, 0, report(t, s).Occupied)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		s := newTestScheduler(t, 3)
		in := append(artists(3), domain.QuizContext{Artist: " artist-0 "})
		require.NoError(t, s.Initialize(ctx, in))

		status := report(t, s)
		assert.Equal(t, 3, status.Occupied)
		assert.Equal(t, 3, status.FixedCount)
	})

	t.Run("negative page", func(t *testing.T) {
		s := newTestScheduler(t, 3)
		err := s.Initialize(ctx, []domain.QuizContext{{Artist: "Monet", Page: -1}})
		assert.ErrorIs(t, err, domain.ErrInvalidPage)
	})
}

func TestRequestAddContext(t *testing.T) {
	ctx := context.Background()

	t.Run("full table rejects new context", func(t *testing.T) {
		s := newTestScheduler(t, 10)
		ok, err := s.RequestAddContext(ctx, artists(10), false)
		require.NoError(t, err)
		require.True(t, ok)
		before := report(t, s)

		ok, err = s.RequestAddContext(ctx, []domain.QuizContext{{Artist: "Klimt"}}, false)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, report(t, s))
	})

	t.Run("existing contexts count as added", func(t *testing.T) {
		s := newTestScheduler(t, 2)
		contexts := artists(2)
		_, err := s.RequestAddContext(ctx, contexts, false)
		require.NoError(t, err)

		ok, err := s.RequestAddContext(ctx, contexts, false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, report(t, s).Occupied)
	})

	t.Run("fixed flag applies to present contexts", func(t *testing.T) {
		s := newTestScheduler(t, 2)
		contexts := artists(1)
		_, err := s.RequestAddContext(ctx, contexts, false)
		require.NoError(t, err)

		ok, err := s.RequestAddContext(ctx, contexts, true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, report(t, s).FixedCount)
	})

	t.Run("failure mid insert rolls back", func(t *testing.T) {
		s := newTestScheduler(t, 10)
		_, err := s.RequestAddContext(ctx, artists(2), false)
		require.NoError(t, err)
		before := report(t, s)

		inserted := 0
		s.beforeInsert = func(domain.QuizContext) error {
			inserted++
			if inserted == 3 {
				return errors.New("injected")
			}
			return nil
		}
		more := []domain.QuizContext{{Tag: "a"}, {Tag: "b"}, {Tag: "c"}, {Tag: "d"}}
		ok, err := s.RequestAddContext(ctx, more, false)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, report(t, s))
	})

	t.Run("panic mid insert rolls back", func(t *testing.T) {
		s := newTestScheduler(t, 10)
		before := report(t, s)
		s.beforeInsert = func(c domain.QuizContext) error {
			if c.Tag == "b" {
				panic("boom")
			}
			return nil
		}

		ok, err := s.RequestAddContext(ctx, []domain.QuizContext{{Tag: "a"}, {Tag: "b"}}, false)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, report(t, s))
	})
}

func TestRequestDeleteContext(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, 3)
	contexts := artists(2)
	_, err := s.RequestAddContext(ctx, contexts, false)
	require.NoError(t, err)

	ok, err := s.RequestDeleteContext(ctx, contexts[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RequestDeleteContext(ctx, contexts[0])
	require.NoError(t, err)
	assert.False(t, ok)

	status := report(t, s)
	assert.Equal(t, 1, status.Occupied)
	assert.Equal(t, Empty, status.Slots[0])
	assert.Empty(t, status.InvariantError)
}

func TestOptimize(t *testing.T) {
	ctx := context.Background()

	t.Run("evicts least scheduled context visited last", func(t *testing.T) {
		s := newTestScheduler(t, 10)
		contexts := artists(10)
		_, err := s.RequestAddContext(ctx, contexts, false)
		require.NoError(t, err)

		// One full rotation plus three steps: slots 0-2 have count 2,
		// slots 3-9 count 1, pointer on slot 2.
		for i := 0; i < 13; i++ {
			_, err := s.Schedule(ctx)
			require.NoError(t, err)
		}

		require.NoError(t, s.Optimize(ctx))

		status := report(t, s)
		assert.Equal(t, 9, status.Occupied)
		assert.Equal(t, Empty, status.Slots[9])
	})

	t.Run("evicts globally lowest count", func(t *testing.T) {
		s := newTestScheduler(t, 4)
		contexts := artists(4)
		_, err := s.RequestAddContext(ctx, contexts, false)
		require.NoError(t, err)
		for i, c := range contexts {
			s.nodes[c.Key()].scheduleCount = uint64(10 - i)
		}

		require.NoError(t, s.Optimize(ctx))

		status := report(t, s)
		assert.Equal(t, Empty, status.Slots[3])
		assert.Equal(t, 3, status.Occupied)
	})

	t.Run("never evicts fixed contexts", func(t *testing.T) {
		s := newTestScheduler(t, 3)
		contexts := artists(3)
		require.NoError(t, s.Initialize(ctx, contexts[:1]))
		_, err := s.RequestAddContext(ctx, contexts[1:], false)
		require.NoError(t, err)
		s.nodes[contexts[1].Key()].scheduleCount = 5
		s.nodes[contexts[2].Key()].scheduleCount = 7

		require.NoError(t, s.Optimize(ctx))

		status := report(t, s)
		assert.Equal(t, contexts[0].Key(), status.Slots[0])
		assert.Equal(t, Empty, status.Slots[1])
	})

	t.Run("all fixed leaves table untouched", func(t *testing.T) {
		s := newTestScheduler(t, 2)
		require.NoError(t, s.Initialize(ctx, artists(2)))
		before := report(t, s)

		require.NoError(t, s.Optimize(ctx))

		assert.Equal(t, before, report(t, s))
	})

	t.Run("table with room is untouched", func(t *testing.T) {
		s := newTestScheduler(t, 3)
		_, err := s.RequestAddContext(ctx, artists(2), false)
		require.NoError(t, err)

		require.NoError(t, s.Optimize(ctx))

		assert.Equal(t, 2, report(t, s).Occupied)
	})
}

func TestRequestUpdateFixedQuiz(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Scheduler, domain.QuizContext, []domain.QuizContext) {
		s := newTestScheduler(t, 10)
		fixed := domain.QuizContext{Artist: "Monet"}
		require.NoError(t, s.Initialize(ctx, []domain.QuizContext{fixed}))
		regular := artists(9)
		ok, err := s.RequestAddContext(ctx, regular, false)
		require.NoError(t, err)
		require.True(t, ok)
		s.nodes[fixed.Key()].scheduleCount = 100
		for i, c := range regular {
			s.nodes[c.Key()].scheduleCount = uint64(i + 1)
		}
		return s, fixed, regular
	}

	t.Run("evicts lowest regular contexts for missing ones", func(t *testing.T) {
		s, fixed, regular := setup(t)
		klimt := domain.QuizContext{Artist: "Klimt"}
		dali := domain.QuizContext{Artist: "Dali"}

		ok, err := s.RequestUpdateFixedQuiz(ctx, []domain.QuizContext{fixed, klimt, dali})
		require.NoError(t, err)
		require.True(t, ok)

		status := report(t, s)
		assert.Empty(t, status.InvariantError)
		assert.Equal(t, 10, status.Occupied)
		assert.Equal(t, 3, status.FixedCount)
		keys := make(map[domain.ContextKey]bool)
		for _, n := range status.Nodes {
			keys[n.Key] = n.IsFixed
		}
		assert.NotContains(t, keys, regular[0].Key())
		assert.NotContains(t, keys, regular[1].Key())
		assert.True(t, keys[klimt.Key()])
		assert.True(t, keys[dali.Key()])
		assert.True(t, keys[fixed.Key()])
	})

	t.Run("previous fixed contexts become regular", func(t *testing.T) {
		s, fixed, regular := setup(t)

		ok, err := s.RequestUpdateFixedQuiz(ctx, regular[8:])
		require.NoError(t, err)
		require.True(t, ok)

		status := report(t, s)
		assert.Equal(t, 10, status.Occupied)
		assert.Equal(t, 1, status.FixedCount)
		for _, n := range status.Nodes {
			if n.Key == fixed.Key() {
				assert.False(t, n.IsFixed)
			}
		}
	})

	t.Run("rejects empty and oversized sets", func(t *testing.T) {
		s, _, _ := setup(t)
		before := report(t, s)

		ok, err := s.RequestUpdateFixedQuiz(ctx, nil)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.RequestUpdateFixedQuiz(ctx, artists(11))
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, before, report(t, s))
	})

	t.Run("failure restores previous state", func(t *testing.T) {
		s, fixed, _ := setup(t)
		before := report(t, s)
		s.beforeInsert = func(c domain.QuizContext) error {
			if c.Artist == "Dali" {
				return errors.New("injected")
			}
			return nil
		}

		ok, err := s.RequestUpdateFixedQuiz(ctx, []domain.QuizContext{
			fixed, {Artist: "Klimt"}, {Artist: "Dali"},
		})

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, report(t, s))
	})
}

func TestLockTimeout(t *testing.T) {
	s := newTestScheduler(t, 3)
	s.lockTimeout = 20 * time.Millisecond
	require.NoError(t, s.sem.Acquire(context.Background(), 1))
	defer s.sem.Release(1)

	_, err := s.Schedule(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.RequestAddContext(context.Background(), artists(1), false)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, s.Optimize(context.Background()), ErrUnavailable)
}

func TestHelpersRequireLock(t *testing.T) {
	s := newTestScheduler(t, 3)

	assert.Panics(t, func() {
		_ = s.insertLocked(domain.QuizContext{Artist: "Monet"}, false)
	})
}

func TestHelpersRefuseWithoutLockInProduction(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	s := NewScheduler(Config{Capacity: 3}, logger.NewAsserter(log, false), log)

	err := s.insertLocked(domain.QuizContext{Artist: "Monet"}, false)

	assert.Error(t, err)
	assert.Empty(t, s.nodes)
	assert.Contains(t, buf.String(), "scheduler lock not held")
}

func TestSnapshotRestoreSharesNoState(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, 4)
	require.NoError(t, s.Initialize(ctx, artists(2)))
	_, err := s.Schedule(ctx)
	require.NoError(t, err)

	release, err := s.acquire(ctx, "test")
	require.NoError(t, err)
	defer release()

	snap := s.snapshotLocked()
	slots := append([]domain.ContextKey(nil), s.slots...)
	pointer := s.pointer
	first := artists(1)[0].Key()
	count := s.nodes[first].scheduleCount

	s.slots[0] = ""
	s.nodes[first].scheduleCount += 10
	s.pointer = 3

	s.restoreLocked(snap)
	assert.Equal(t, slots, s.slots)
	assert.Equal(t, pointer, s.pointer)
	assert.Equal(t, count, s.nodes[first].scheduleCount)

	s.nodes[first].scheduleCount += 5
	s.slots[1] = ""
	assert.Equal(t, count, snap.nodes[first].scheduleCount)
	assert.Equal(t, slots, snap.slots)
}

func TestInvariantsHoldUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, 6)
	rng := rand.New(rand.NewSource(42))
	pool := artists(12)

	for i := 0; i < 500; i++ {
		switch rng.Intn(5) {
		case 0:
			n := rng.Intn(3) + 1
			batch := make([]domain.QuizContext, n)
			for j := range batch {
				batch[j] = pool[rng.Intn(len(pool))]
			}
			_, err := s.RequestAddContext(ctx, batch, rng.Intn(4) == 0)
			require.NoError(t, err)
		case 1:
			_, err := s.RequestDeleteContext(ctx, pool[rng.Intn(len(pool))])
			require.NoError(t, err)
		case 2:
			_, err := s.Schedule(ctx)
			if err != nil {
				require.ErrorIs(t, err, ErrNoContextAvailable)
			}
		case 3:
			require.NoError(t, s.Optimize(ctx))
		case 4:
			start := rng.Intn(len(pool))
			_, err := s.RequestUpdateFixedQuiz(ctx, pool[start:min(start+rng.Intn(3)+1, len(pool))])
			require.NoError(t, err)
		}

		require.NoError(t, s.CheckInvariants(ctx), "iteration %d", i)
	}
}
