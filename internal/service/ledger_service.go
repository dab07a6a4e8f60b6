package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

// RecordStore loads and saves the whole challenge document.
type RecordStore interface {
	Load(ctx context.Context) (models.Dataset, error)
	Save(ctx context.Context, dataset models.Dataset) error
}

// Mutation edits a freshly loaded dataset in place. It reports whether anything
// changed; unchanged datasets are not written back.
type Mutation func(dataset models.Dataset) (bool, error)

// CommitResult describes a completed read-modify-write cycle.
type CommitResult struct {
	Changed   bool
	Persisted bool
}

// LedgerService owns the record store. Every mutation loads the whole document,
// edits it and writes it back in full. Writers inside this process are serialised;
// writers in other processes race with last write winning.
type LedgerService struct {
	store   RecordStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	mu      sync.Mutex

	afterCommit []func()
}

// NewLedgerService constructs a ledger over store.
func NewLedgerService(store RecordStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// OnCommit registers fn to run after every persisted change. Hooks run while the
// commit lock is held and must not block.
func (s *LedgerService) OnCommit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterCommit = append(s.afterCommit, fn)
}

// Snapshot loads the current dataset for read paths. A failed load is logged and
// an empty dataset returned so leaderboards render "no data" instead of failing.
func (s *LedgerService) Snapshot(ctx context.Context) models.Dataset {
	dataset, _ := s.snapshot(ctx)
	return dataset
}

// Ping reports whether the record store can currently be read.
func (s *LedgerService) Ping(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

func (s *LedgerService) snapshot(ctx context.Context) (models.Dataset, bool) {
	dataset, err := s.load(ctx)
	if err != nil {
		s.logger.Error("record store load failed", zap.String("operation", "snapshot"), zap.Error(err))
		return models.Dataset{}, false
	}
	return dataset, true
}

// Commit runs mutate against a fresh snapshot and saves the result. A failed load
// aborts with STORE_UNAVAILABLE so a partial view never overwrites the document.
// A failed save is logged and reported through CommitResult.Persisted.
func (s *LedgerService) Commit(ctx context.Context, operation string, mutate Mutation) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataset, err := s.load(ctx)
	if err != nil {
		s.logger.Error("record store load failed", zap.String("operation", operation), zap.Error(err))
		return CommitResult{}, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status,
			"Unable to reach the challenge records. Please try again.")
	}

	changed, err := mutate(dataset)
	if err != nil {
		return CommitResult{}, err
	}
	if !changed {
		return CommitResult{Persisted: true}, nil
	}

	start := time.Now()
	err = s.store.Save(ctx, dataset)
	s.metrics.ObserveStoreOperation("save", time.Since(start), err)
	if err != nil {
		s.logger.Error("record store save failed", zap.String("operation", operation), zap.Error(err))
		return CommitResult{Changed: true}, nil
	}

	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("leaderboard cache clear failed", zap.String("operation", operation), zap.Error(err))
	}
	for _, fn := range s.afterCommit {
		fn()
	}
	return CommitResult{Changed: true, Persisted: true}, nil
}

// Audit reports every record whose running total or date list disagrees with its day entries.
func (s *LedgerService) Audit(ctx context.Context) []models.LedgerDrift {
	dataset := s.Snapshot(ctx)
	drifts := make([]models.LedgerDrift, 0)
	for _, id := range dataset.IDs() {
		if drift := CheckLedger(id, dataset[id]); drift != nil {
			drifts = append(drifts, *drift)
		}
	}
	return drifts
}

func (s *LedgerService) load(ctx context.Context) (models.Dataset, error) {
	start := time.Now()
	dataset, err := s.store.Load(ctx)
	s.metrics.ObserveStoreOperation("load", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		dataset = models.Dataset{}
	}
	return dataset, nil
}
