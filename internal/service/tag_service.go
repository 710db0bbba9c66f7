package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/artquiz-api/internal/batch"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// TagService creates tags. Concurrent requests for the same name within one
// batching window share a single insert and its outcome.
type TagService interface {
	// CreateTag creates a tag named name.
	// Returns ErrTagExists when the name is already taken.
	CreateTag(ctx context.Context, name string) (*domain.Tag, error)

	// Close processes queued requests and stops accepting new ones.
	Close()
}

// TagServiceConfig holds the batching settings of the tag service.
type TagServiceConfig struct {
	QueueLimit int
	Window     time.Duration
}

// tagServiceImpl implements the TagService interface
type tagServiceImpl struct {
	tagRepo TagRepository
	batcher *batch.Batcher[*domain.Tag, *domain.Tag]
	logger  *slog.Logger
}

// NewTagService creates a new TagService.
// It returns an error if the repository is nil.
func NewTagService(tagRepo TagRepository, cfg TagServiceConfig, logger *slog.Logger) (TagService, error) {
	if tagRepo == nil {
		return nil, domain.NewValidationError("tagRepo", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &tagServiceImpl{
		tagRepo: tagRepo,
		logger:  logger.With(slog.String("component", "tag_service")),
	}
	s.batcher = batch.NewBatcher[*domain.Tag, *domain.Tag](
		batch.Config{Name: "create tag", QueueLimit: cfg.QueueLimit, Window: cfg.Window},
		tagKey, s.createBatch, logger)
	return s, nil
}

func tagKey(t *domain.Tag) string {
	return "name:" + t.Name
}

// CreateTag implements TagService.CreateTag
func (s *tagServiceImpl) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	tag, err := domain.NewTag(name)
	if err != nil {
		return nil, err
	}
	return s.batcher.Add(ctx, tag)
}

// Close implements TagService.Close
func (s *tagServiceImpl) Close() {
	s.batcher.Close()
}

// createBatch stores one window of tag requests. Names that already exist
// fail individually; the rest are inserted in one transaction, so a storage
// failure is reported to every remaining waiter.
func (s *tagServiceImpl) createBatch(ctx context.Context, items map[string]*domain.Tag) map[string]batch.Outcome[*domain.Tag] {
	log := logger.FromContextOrDefault(ctx, s.logger)
	out := make(map[string]batch.Outcome[*domain.Tag], len(items))

	names := make([]string, 0, len(items))
	for _, t := range items {
		names = append(names, t.Name)
	}

	existing, err := s.tagRepo.FindByNames(ctx, names)
	if err != nil {
		log.Error("failed to look up existing tags",
			slog.String("error", err.Error()),
			slog.Int("tag_count", len(names)))
		failAll(out, items, fmt.Errorf("%w: %v", ErrTagCreateFailed, err))
		return out
	}

	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[strings.TrimSpace(t.Name)] = true
	}

	toCreate := make([]*domain.Tag, 0, len(items))
	for key, t := range items {
		if taken[t.Name] {
			out[key] = batch.Outcome[*domain.Tag]{Err: fmt.Errorf("%w: %q", ErrTagExists, t.Name)}
			continue
		}
		toCreate = append(toCreate, t)
	}
	if len(toCreate) == 0 {
		return out
	}

	err = store.RunInTransaction(ctx, s.tagRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.tagRepo.WithTx(tx).CreateMultiple(ctx, toCreate)
	})
	if err != nil {
		log.Error("failed to create tags in transaction",
			slog.String("error", err.Error()),
			slog.Int("tag_count", len(toCreate)))

		// The insert is all or nothing, so a name that lost a race with
		// another writer fails the whole batch and no waiter is told its
		// tag already exists.
		failure := fmt.Errorf("%w: %v", ErrTagCreateFailed, err)
		for _, t := range toCreate {
			out[tagKey(t)] = batch.Outcome[*domain.Tag]{Err: failure}
		}
		return out
	}

	for _, t := range toCreate {
		out[tagKey(t)] = batch.Outcome[*domain.Tag]{Value: t}
	}
	log.Info("created tags", slog.Int("tag_count", len(toCreate)))
	return out
}

func failAll(out map[string]batch.Outcome[*domain.Tag], items map[string]*domain.Tag, err error) {
	for key := range items {
		out[key] = batch.Outcome[*domain.Tag]{Err: err}
	}
}
