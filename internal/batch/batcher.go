package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultQueueLimit is the number of unique keys that triggers immediate processing.
	DefaultQueueLimit = 40

	// DefaultWindow is how long the first request of a window waits for company.
	DefaultWindow = 4 * time.Second

	// DefaultProcessTimeout bounds a single process call.
	DefaultProcessTimeout = 30 * time.Second
)

// Outcome is the result delivered to every waiter of one key.
type Outcome[R any] struct {
	Value R
	Err   error
}

// KeyFunc derives the deduplication key of a request.
type KeyFunc[D any] func(D) string

// ProcessFunc handles every unique request of a window and returns one
// outcome per key.
type ProcessFunc[D any, R any] func(ctx context.Context, items map[string]D) map[string]Outcome[R]

// Config holds the batcher settings.
type Config struct {
	// Name labels the operation in logs.
	Name           string
	QueueLimit     int
	Window         time.Duration
	ProcessTimeout time.Duration
}

type pending[D any, R any] struct {
	item    D
	waiters []chan Outcome[R]
}

// Batcher groups requests by key and processes them once per window.
type Batcher[D any, R any] struct {
	cfg     Config
	key     KeyFunc[D]
	process ProcessFunc[D, R]
	logger  *slog.Logger

	mu         sync.Mutex
	queue      map[string]*pending[D, R]
	timer      *time.Timer
	generation uint64
	closed     bool

	inflight sync.WaitGroup
}

// NewBatcher creates a Batcher. Zero config values fall back to the defaults.
func NewBatcher[D any, R any](cfg Config, key KeyFunc[D], process ProcessFunc[D, R], logger *slog.Logger) *Batcher[D, R] {
	if key == nil || process == nil {
		panic("key and process functions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = DefaultQueueLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = DefaultProcessTimeout
	}

	return &Batcher[D, R]{
		cfg:     cfg,
		key:     key,
		process: process,
		logger:  logger.With("component", "batcher", "operation", cfg.Name),
		queue:   make(map[string]*pending[D, R]),
	}
}

// Add queues item and waits for the outcome of its key. Items sharing a key
// with one already queued in the current window are not processed again.
func (b *Batcher[D, R]) Add(ctx context.Context, item D) (R, error) {
	var zero R
	key := b.key(item)
	ch := make(chan Outcome[R], 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return zero, ErrClosed
	}

	p, ok := b.queue[key]
	if !ok {
		p = &pending[D, R]{item: item}
		b.queue[key] = p
	}
	p.waiters = append(p.waiters, ch)

	if len(b.queue) == 1 && !ok {
		gen := b.generation
		b.timer = time.AfterFunc(b.cfg.Window, func() { b.onWindowElapsed(gen) })
	}

	if len(b.queue) >= b.cfg.QueueLimit {
		batch := b.takeLocked()
		b.inflight.Add(1)
		go b.run(batch, "queue limit")
	}
	b.mu.Unlock()

	select {
	case out := <-ch:
		return out.Value, out.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close processes the queued window and waits for running windows to finish.
// Add returns ErrClosed afterwards.
func (b *Batcher[D, R]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.inflight.Wait()
		return
	}
	b.closed = true
	var batch map[string]*pending[D, R]
	if len(b.queue) > 0 {
		batch = b.takeLocked()
		b.inflight.Add(1)
	}
	b.mu.Unlock()

	if batch != nil {
		b.run(batch, "close")
	}
	b.inflight.Wait()
}

func (b *Batcher[D, R]) onWindowElapsed(gen uint64) {
	b.mu.Lock()
	// The window was already taken by the queue limit or Close.
	if gen != b.generation || len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.takeLocked()
	b.inflight.Add(1)
	b.mu.Unlock()

	b.run(batch, "window elapsed")
}

// takeLocked ends the current window and returns its queue.
func (b *Batcher[D, R]) takeLocked() map[string]*pending[D, R] {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.generation++
	batch := b.queue
	b.queue = make(map[string]*pending[D, R])
	return batch
}

func (b *Batcher[D, R]) run(batch map[string]*pending[D, R], trigger string) {
	defer b.inflight.Done()

	items := make(map[string]D, len(batch))
	waiters := 0
	for key, p := range batch {
		items[key] = p.item
		waiters += len(p.waiters)
	}

	b.logger.Debug("processing batch",
		"trigger", trigger,
		"keys", len(items),
		"waiters", waiters)

	outcomes, err := b.invoke(items)
	if err != nil {
		b.logger.Error("batch processing failed", "keys", len(items), "error", err)
	}

	for key, p := range batch {
		var out Outcome[R]
		switch {
		case err != nil:
			out.Err = err
		default:
			o, ok := outcomes[key]
			if !ok {
				b.logger.Warn("no outcome for key", "key", key)
				o.Err = fmt.Errorf("%s %q: %w", b.cfg.Name, key, ErrNoOutcome)
			}
			out = o
		}
		for _, ch := range p.waiters {
			ch <- out
		}
	}
}

func (b *Batcher[D, R]) invoke(items map[string]D) (outcomes map[string]Outcome[R], err error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.ProcessTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", b.cfg.Name, ErrBatchFailed, r)
		}
	}()
	return b.process(ctx, items), nil
}
