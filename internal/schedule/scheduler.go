package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"golang.org/x/sync/semaphore"
)

// Empty marks an unoccupied slot.
const Empty domain.ContextKey = ""

const (
	// DefaultCapacity is the slot table size used when none is configured.
	DefaultCapacity = 10

	// DefaultLockTimeout bounds how long an operation waits for the lock.
	DefaultLockTimeout = 10 * time.Second
)

// Config holds the scheduler settings.
type Config struct {
	Capacity    int
	LockTimeout time.Duration
}

type node struct {
	key           domain.ContextKey
	context       domain.QuizContext
	slotIndex     int
	scheduleCount uint64
	isFixed       bool
}

// Scheduler hands out quiz contexts in round-robin order.
type Scheduler struct {
	capacity    int
	lockTimeout time.Duration
	sem         *semaphore.Weighted
	locked      atomic.Bool

	slots   []domain.ContextKey
	nodes   map[domain.ContextKey]*node
	pointer int

	asserter *logger.Asserter
	logger   *slog.Logger

	// beforeInsert is called before a context takes a slot. Tests use it to
	// inject failures into multi-step mutations.
	beforeInsert func(domain.QuizContext) error
}

// NewScheduler creates an empty Scheduler.
// Capacity and lock timeout fall back to their defaults when not positive.
func NewScheduler(cfg Config, asserter *logger.Asserter, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if asserter == nil {
		asserter = logger.NewAsserter(log, false)
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}

	return &Scheduler{
		capacity:    cfg.Capacity,
		lockTimeout: cfg.LockTimeout,
		sem:         semaphore.NewWeighted(1),
		slots:       make([]domain.ContextKey, cfg.Capacity),
		nodes:       make(map[domain.ContextKey]*node, cfg.Capacity),
		// The first Schedule call starts at slot 0.
		pointer:  cfg.Capacity - 1,
		asserter: asserter,
		logger:   log.With("component", "context_scheduler"),
	}
}

// Capacity returns the number of slots.
func (s *Scheduler) Capacity() int {
	return s.capacity
}

// acquire takes the scheduler lock, giving up after the lock timeout.
func (s *Scheduler) acquire(ctx context.Context, op string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.logger.ErrorContext(ctx, "failed to acquire scheduler lock",
			"operation", op,
			"timeout", s.lockTimeout,
			"error", err)
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	s.locked.Store(true)

	return func() {
		s.locked.Store(false)
		s.sem.Release(1)
	}, nil
}

func (s *Scheduler) requireLock(op string) bool {
	return s.asserter.AssertOrLog(s.locked.Load(), "scheduler lock not held", "operation", op)
}

// Initialize registers the given contexts as fixed.
func (s *Scheduler) Initialize(ctx context.Context, fixed []domain.QuizContext) error {
	for _, c := range fixed {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	unique := domain.UniqueContexts(fixed)
	if len(unique) > s.capacity {
		return fmt.Errorf("initialize with %d contexts: %w", len(unique), ErrCapacityExceeded)
	}

	release, err := s.acquire(ctx, "initialize")
	if err != nil {
		return err
	}
	defer release()

	fresh := s.missingLocked(unique)
	if len(fresh) > s.emptySlotCountLocked() {
		return fmt.Errorf("initialize with %d new contexts: %w", len(fresh), ErrCapacityExceeded)
	}

	snap := s.snapshotLocked()
	err = s.mutate(func() error {
		for _, c := range unique {
			if n, ok := s.nodes[c.Key()]; ok {
				n.isFixed = true
			}
		}
		for _, c := range fresh {
			if err := s.insertLocked(c, true); err != nil {
				return err
			}
		}
		return s.checkInvariantsLocked()
	})
	if err != nil {
		s.restoreLocked(snap)
		s.logger.ErrorContext(ctx, "initialize rolled back", "error", err)
		return err
	}

	if len(unique) > 0 {
		s.asserter.AssertOrLog(len(s.nodes) > 0, "slot table empty after initialize",
			"requested", len(unique))
	}

	s.logger.InfoContext(ctx, "scheduler initialized",
		"fixed_contexts", len(unique),
		"occupied", len(s.nodes))
	return nil
}

// Schedule returns the next occupied context after the pointer and counts
// the visit.
func (s *Scheduler) Schedule(ctx context.Context) (domain.QuizContext, error) {
	release, err := s.acquire(ctx, "schedule")
	if err != nil {
		return domain.QuizContext{}, err
	}
	defer release()

	for step := 1; step <= s.capacity; step++ {
		idx := (s.pointer + step) % s.capacity
		key := s.slots[idx]
		if key == Empty {
			continue
		}
		n, ok := s.nodes[key]
		if !s.asserter.AssertOrLog(ok, "slot holds unregistered key", "slot", idx, "key", key) {
			continue
		}

		s.pointer = idx
		n.scheduleCount++
		return n.context, nil
	}

	return domain.QuizContext{}, ErrNoContextAvailable
}

// RequestAddContext registers contexts that are not yet present. Contexts
// already registered count as added. It returns false without changing
// anything when there are fewer free slots than new contexts; Optimize frees
// a slot.
func (s *Scheduler) RequestAddContext(ctx context.Context, contexts []domain.QuizContext, isFixed bool) (bool, error) {
	for _, c := range contexts {
		if err := c.Validate(); err != nil {
			return false, err
		}
	}
	unique := domain.UniqueContexts(contexts)

	release, err := s.acquire(ctx, "request add context")
	if err != nil {
		return false, err
	}
	defer release()

	fresh := s.missingLocked(unique)
	if free := s.emptySlotCountLocked(); len(fresh) > free {
		s.logger.InfoContext(ctx, "not enough free slots, optimize first",
			"new_contexts", len(fresh),
			"free_slots", free)
		return false, nil
	}

	snap := s.snapshotLocked()
	err = s.mutate(func() error {
		if isFixed {
			for _, c := range unique {
				if n, ok := s.nodes[c.Key()]; ok {
					n.isFixed = true
				}
			}
		}
		for _, c := range fresh {
			if err := s.insertLocked(c, isFixed); err != nil {
				return err
			}
		}
		return s.checkInvariantsLocked()
	})
	if err != nil {
		s.restoreLocked(snap)
		s.logger.ErrorContext(ctx, "add context rolled back", "error", err)
		return false, nil
	}

	s.logger.DebugContext(ctx, "contexts added",
		"added", len(fresh),
		"already_present", len(unique)-len(fresh),
		"is_fixed", isFixed)
	return true, nil
}

// RequestDeleteContext removes c and frees its slot. It returns false when c
// is not registered.
func (s *Scheduler) RequestDeleteContext(ctx context.Context, c domain.QuizContext) (bool, error) {
	release, err := s.acquire(ctx, "request delete context")
	if err != nil {
		return false, err
	}
	defer release()

	key := c.Key()
	if _, ok := s.nodes[key]; !ok {
		return false, nil
	}
	if !s.removeLocked(key) {
		return false, nil
	}

	s.logger.DebugContext(ctx, "context deleted", "key", key)
	return true, nil
}

// RequestUpdateFixedQuiz replaces the fixed set. Contexts leaving the set
// stay registered as regular contexts; regular contexts are evicted when the
// new ones do not fit. On any failure the previous state is restored and
// false is returned.
func (s *Scheduler) RequestUpdateFixedQuiz(ctx context.Context, fixed []domain.QuizContext) (bool, error) {
	for _, c := range fixed {
		if err := c.Validate(); err != nil {
			return false, err
		}
	}
	unique := domain.UniqueContexts(fixed)
	if len(unique) == 0 || len(unique) > s.capacity {
		s.logger.InfoContext(ctx, "fixed set rejected", "size", len(unique), "capacity", s.capacity)
		return false, nil
	}

	release, err := s.acquire(ctx, "request update fixed quiz")
	if err != nil {
		return false, err
	}
	defer release()

	snap := s.snapshotLocked()
	var evicted int
	err = s.mutate(func() error {
		for _, n := range s.nodes {
			n.isFixed = false
		}

		var missing []domain.QuizContext
		for _, c := range unique {
			if n, ok := s.nodes[c.Key()]; ok {
				n.isFixed = true
				continue
			}
			missing = append(missing, c)
		}

		evicted = len(missing) - s.emptySlotCountLocked()
		if evicted > 0 {
			if err := s.evictLocked(evicted); err != nil {
				return err
			}
		}

		for _, c := range missing {
			if err := s.insertLocked(c, true); err != nil {
				return err
			}
		}
		return s.checkInvariantsLocked()
	})
	if err != nil {
		s.restoreLocked(snap)
		s.logger.ErrorContext(ctx, "fixed set update rolled back", "error", err)
		return false, nil
	}

	s.logger.InfoContext(ctx, "fixed set updated",
		"fixed", len(unique),
		"evicted", max(evicted, 0))
	return true, nil
}

// Optimize frees one slot when the table is full by evicting the regular
// context first in eviction order, then logs the scheduler status.
func (s *Scheduler) Optimize(ctx context.Context) error {
	release, err := s.acquire(ctx, "optimize")
	if err != nil {
		return err
	}
	defer release()

	if s.emptySlotCountLocked() == 0 {
		order := s.evictionOrderLocked()
		if len(order) == 0 {
			s.logger.InfoContext(ctx, "all contexts are fixed, nothing to evict")
		} else {
			victim := order[0]
			s.removeLocked(victim.key)
			s.logger.InfoContext(ctx, "context evicted",
				"key", victim.key,
				"schedule_count", victim.scheduleCount)
		}
	}

	status := s.reportLocked()
	s.logger.InfoContext(ctx, "scheduler status",
		"capacity", status.Capacity,
		"occupied", status.Occupied,
		"fixed", status.FixedCount,
		"pointer", status.Pointer,
		"slots", status.Slots)
	if status.InvariantError != "" {
		s.logger.ErrorContext(ctx, "scheduler invariants broken", "error", status.InvariantError)
	}
	return nil
}

// Report returns a copy of the current state.
func (s *Scheduler) Report(ctx context.Context) (Status, error) {
	release, err := s.acquire(ctx, "report")
	if err != nil {
		return Status{}, err
	}
	defer release()

	return s.reportLocked(), nil
}

// CheckInvariants verifies that occupied slots and registered contexts
// correspond one to one.
func (s *Scheduler) CheckInvariants(ctx context.Context) error {
	release, err := s.acquire(ctx, "check invariants")
	if err != nil {
		return err
	}
	defer release()

	return s.checkInvariantsLocked()
}

// mutate runs fn, turning a panic into an error so the caller can roll back.
func (s *Scheduler) mutate(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvariant, r)
		}
	}()
	return fn()
}

func (s *Scheduler) missingLocked(contexts []domain.QuizContext) []domain.QuizContext {
	var missing []domain.QuizContext
	for _, c := range contexts {
		if _, ok := s.nodes[c.Key()]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func (s *Scheduler) emptySlotCountLocked() int {
	return s.capacity - len(s.nodes)
}

func (s *Scheduler) insertLocked(c domain.QuizContext, isFixed bool) error {
	if !s.requireLock("insert") {
		return fmt.Errorf("insert: %w", ErrUnavailable)
	}
	if s.beforeInsert != nil {
		if err := s.beforeInsert(c); err != nil {
			return err
		}
	}

	key := c.Key()
	if _, ok := s.nodes[key]; ok {
		return fmt.Errorf("insert %q: %w: key already registered", key, ErrInvariant)
	}

	for idx, slot := range s.slots {
		if slot != Empty {
			continue
		}
		s.slots[idx] = key
		s.nodes[key] = &node{
			key:       key,
			context:   c.Normalize(),
			slotIndex: idx,
			isFixed:   isFixed,
		}
		return nil
	}
	return fmt.Errorf("insert %q: %w", key, ErrCapacityExceeded)
}

func (s *Scheduler) removeLocked(key domain.ContextKey) bool {
	if !s.requireLock("remove") {
		return false
	}
	n, ok := s.nodes[key]
	if !s.asserter.AssertOrLog(ok, "removing unregistered context", "key", key) {
		return false
	}
	if !s.asserter.AssertOrLog(s.slots[n.slotIndex] == key, "slot does not hold context",
		"key", key, "slot", n.slotIndex) {
		return false
	}

	s.slots[n.slotIndex] = Empty
	delete(s.nodes, key)
	return true
}

func (s *Scheduler) evictLocked(count int) error {
	order := s.evictionOrderLocked()
	if len(order) < count {
		return fmt.Errorf("evict %d of %d regular contexts: %w", count, len(order), ErrNoEvictable)
	}
	for _, n := range order[:count] {
		if !s.removeLocked(n.key) {
			return fmt.Errorf("evict %q: %w", n.key, ErrInvariant)
		}
		s.logger.Debug("context evicted", "key", n.key, "schedule_count", n.scheduleCount)
	}
	return nil
}

// evictionOrderLocked lists regular contexts, least scheduled first. Among
// equal counts the context the pointer reaches last comes first.
func (s *Scheduler) evictionOrderLocked() []*node {
	order := make([]*node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if !n.isFixed {
			order = append(order, n)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.scheduleCount != b.scheduleCount {
			return a.scheduleCount < b.scheduleCount
		}
		return s.distanceLocked(a.slotIndex) > s.distanceLocked(b.slotIndex)
	})
	return order
}

// distanceLocked is the number of steps after the next one before Schedule
// reaches slot.
func (s *Scheduler) distanceLocked(slot int) int {
	return (slot - s.pointer - 1 + s.capacity) % s.capacity
}

func (s *Scheduler) checkInvariantsLocked() error {
	if len(s.nodes) > s.capacity {
		return fmt.Errorf("%w: %d contexts for %d slots", ErrInvariant, len(s.nodes), s.capacity)
	}

	occupied := 0
	for idx, key := range s.slots {
		if key == Empty {
			continue
		}
		occupied++
		n, ok := s.nodes[key]
		if !ok {
			return fmt.Errorf("%w: slot %d holds unregistered key %q", ErrInvariant, idx, key)
		}
		if n.slotIndex != idx {
			return fmt.Errorf("%w: key %q in slot %d points at slot %d", ErrInvariant, key, idx, n.slotIndex)
		}
	}
	if occupied != len(s.nodes) {
		return fmt.Errorf("%w: %d occupied slots for %d contexts", ErrInvariant, occupied, len(s.nodes))
	}
	return nil
}
