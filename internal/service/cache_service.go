package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

// BoardCache stores computed leaderboards by board name.
type BoardCache interface {
	Fetch(ctx context.Context, board string, dest interface{}) error
	StoreAll(ctx context.Context, boards map[string]interface{}, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// CacheService fronts the board cache. A nil or disabled service behaves as an
// always-missing cache, and cache failures never fail a read.
//
// Every Clear starts a new generation. Boards computed from a snapshot taken in an
// earlier generation are dropped by StoreIfCurrent, so a slow reader cannot put a
// pre-commit board back after the commit cleared the cache.
type CacheService struct {
	boards  BoardCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool

	mu         sync.Mutex
	generation uint64
}

// NewCacheService constructs a cache service writing boards with the given ttl.
func NewCacheService(boards BoardCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{boards: boards, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled reports whether boards are being cached.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.boards != nil
}

// Lookup decodes a cached board into dest and reports whether it was found.
func (s *CacheService) Lookup(ctx context.Context, board string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.boards.Fetch(ctx, board, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("board cache fetch failed", zap.String("board", board), zap.Error(err))
	}
	return err == nil
}

// Generation identifies the current cache epoch. Read it before loading the
// snapshot a board is computed from.
func (s *CacheService) Generation() uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// StoreIfCurrent writes boards only while generation is still current. It reports
// whether the boards were written.
func (s *CacheService) StoreIfCurrent(ctx context.Context, generation uint64, boards map[string]interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debug("dropping boards from a cleared generation",
			zap.Uint64("generation", generation), zap.Uint64("current", s.generation))
		return false, nil
	}
	if err := s.store(ctx, boards); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheService) store(ctx context.Context, boards map[string]interface{}) error {
	start := time.Now()
	err := s.boards.StoreAll(ctx, boards, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("board cache store failed", zap.Int("boards", len(boards)), zap.Error(err))
	}
	return err
}

// Clear drops every cached board and starts a new generation. The generation
// advances even when the backend clear fails.
func (s *CacheService) Clear(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if err := s.boards.Clear(ctx); err != nil {
		s.logger.Warn("board cache clear failed", zap.Error(err))
		return err
	}
	return nil
}
