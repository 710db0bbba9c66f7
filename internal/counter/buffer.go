package counter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultGroupSize is the number of entries persisted concurrently.
const DefaultGroupSize = 5

// PersistFunc writes one coalesced delta to storage.
type PersistFunc[D any] func(ctx context.Context, id uuid.UUID, delta D) error

// Config holds the buffer settings.
type Config struct {
	// Name identifies the buffer in logs.
	Name      string
	GroupSize int
}

// FlushResult summarizes one Flush call.
type FlushResult struct {
	Drained   int `json:"drained"`
	Persisted int `json:"persisted"`
	Failed    int `json:"failed"`
}

// Buffer accumulates deltas per id until they are flushed.
type Buffer[D Delta[D]] struct {
	mu      sync.Mutex
	pending map[uuid.UUID]D

	// flushMu keeps flushes from overlapping.
	flushMu sync.Mutex

	persist   PersistFunc[D]
	groupSize int
	logger    *slog.Logger
}

// NewBuffer creates an empty Buffer that writes through persist.
func NewBuffer[D Delta[D]](cfg Config, persist PersistFunc[D], logger *slog.Logger) *Buffer[D] {
	if persist == nil {
		panic("persist function cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = DefaultGroupSize
	}

	return &Buffer[D]{
		pending:   make(map[uuid.UUID]D),
		persist:   persist,
		groupSize: cfg.GroupSize,
		logger:    logger.With("component", "counter_buffer", "buffer", cfg.Name),
	}
}

// Increment merges delta into the pending value for id.
func (b *Buffer[D]) Increment(id uuid.UUID, delta D) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current, ok := b.pending[id]; ok {
		b.pending[id] = current.Merge(delta)
		return
	}
	b.pending[id] = delta
}

// IsEmpty reports whether nothing is waiting to be flushed.
func (b *Buffer[D]) IsEmpty() bool {
	return b.Len() == 0
}

// Len returns the number of ids with pending deltas.
func (b *Buffer[D]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Pending returns the buffered delta for id.
func (b *Buffer[D]) Pending(id uuid.UUID) (D, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.pending[id]
	return d, ok
}

type entry[D any] struct {
	id    uuid.UUID
	delta D
}

// Flush persists all pending deltas. Entries that fail to persist are merged
// back into the buffer. Increment is never blocked by storage calls.
func (b *Buffer[D]) Flush(ctx context.Context) FlushResult {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	snapshot := b.pending
	b.pending = make(map[uuid.UUID]D)
	b.mu.Unlock()

	result := FlushResult{Drained: len(snapshot)}
	if len(snapshot) == 0 {
		return result
	}

	entries := make([]entry[D], 0, len(snapshot))
	for id, d := range snapshot {
		entries = append(entries, entry[D]{id: id, delta: d})
	}

	var (
		failedMu sync.Mutex
		failed   = make(map[uuid.UUID]D)
	)

	for start := 0; start < len(entries); start += b.groupSize {
		group := entries[start:min(start+b.groupSize, len(entries))]

		// A plain Group so one failure does not cancel the rest of the group.
		var g errgroup.Group
		for _, e := range group {
			g.Go(func() error {
				if err := b.persistOne(ctx, e); err != nil {
					failedMu.Lock()
					failed[e.id] = e.delta
					failedMu.Unlock()

					b.logger.WarnContext(ctx, "failed to persist counter, will retry",
						"id", e.id,
						"error", err)
					return err
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	if len(failed) > 0 {
		b.mu.Lock()
		for id, d := range failed {
			if current, ok := b.pending[id]; ok {
				b.pending[id] = current.Merge(d)
			} else {
				b.pending[id] = d
			}
		}
		b.mu.Unlock()
	}

	result.Failed = len(failed)
	result.Persisted = result.Drained - result.Failed

	b.logger.InfoContext(ctx, "counter buffer flushed",
		"drained", result.Drained,
		"persisted", result.Persisted,
		"failed", result.Failed)
	return result
}

func (b *Buffer[D]) persistOne(ctx context.Context, e entry[D]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("persist panicked: %v", r)
		}
	}()
	return b.persist(ctx, e.id, e.delta)
}
