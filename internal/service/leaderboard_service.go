package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

const (
	overallBoard = "overall"
	campusBoard  = "campuses"
	statsBoard   = "stats"
)

func sessionBoard(session models.Session) string {
	return "session:" + string(session)
}

// LeaderboardService serves the rankings, reading through the board cache when enabled.
type LeaderboardService struct {
	ledger *LedgerService
	cache  *CacheService
	size   int
	logger *zap.Logger
}

// NewLeaderboardService constructs a LeaderboardService showing size rows per student board.
func NewLeaderboardService(ledger *LedgerService, cache *CacheService, size int, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &LeaderboardService{ledger: ledger, cache: cache, size: size, logger: logger}
}

// Overall returns the top students across every session. The bool reports a cache hit.
func (s *LeaderboardService) Overall(ctx context.Context) (models.StudentLeaderboard, bool) {
	return cached(ctx, s, overallBoard, func(dataset models.Dataset) models.StudentLeaderboard {
		return TopStudents(dataset, "", s.size)
	})
}

// BySession returns the top students of one session.
func (s *LeaderboardService) BySession(ctx context.Context, session models.Session) (models.StudentLeaderboard, bool) {
	return cached(ctx, s, sessionBoard(session), func(dataset models.Dataset) models.StudentLeaderboard {
		return TopStudents(dataset, session, s.size)
	})
}

// Campuses returns every campus ranked by Bayesian average.
func (s *LeaderboardService) Campuses(ctx context.Context) (models.CampusLeaderboard, bool) {
	return cached(ctx, s, campusBoard, RankCampuses)
}

// Stats returns the challenge summary numbers.
func (s *LeaderboardService) Stats(ctx context.Context) (models.ChallengeStats, bool) {
	return cached(ctx, s, statsBoard, SummarizeDataset)
}

var errDegradedSnapshot = errors.New("record store unavailable")

// Warm recomputes every board from one snapshot and stores them together. It
// fails when the snapshot is degraded so the caller can retry later.
func (s *LeaderboardService) Warm(ctx context.Context) error {
	if !s.cache.Enabled() {
		return nil
	}
	generation := s.cache.Generation()
	dataset, healthy := s.ledger.snapshot(ctx)
	if !healthy {
		return errDegradedSnapshot
	}

	boards := map[string]interface{}{
		overallBoard: TopStudents(dataset, "", s.size),
		campusBoard:  RankCampuses(dataset),
		statsBoard:   SummarizeDataset(dataset),
	}
	for _, session := range models.Sessions {
		boards[sessionBoard(session)] = TopStudents(dataset, session, s.size)
	}

	stored, err := s.cache.StoreIfCurrent(ctx, generation, boards)
	if err != nil {
		return err
	}
	if !stored {
		// The commit that advanced the generation queued its own refresh.
		return nil
	}
	s.cache.metrics.RecordRefresh()
	s.logger.Debug("leaderboards warmed", zap.Int("boards", len(boards)), zap.Int("students", len(dataset)))
	return nil
}

// cached serves board from the cache or computes it from a fresh snapshot.
// Boards computed from a degraded snapshot, or from one a commit has since
// superseded, are not cached.
func cached[T any](ctx context.Context, s *LeaderboardService, board string, compute func(models.Dataset) T) (T, bool) {
	var value T
	if s.cache.Lookup(ctx, board, &value) {
		return value, true
	}

	generation := s.cache.Generation()
	dataset, healthy := s.ledger.snapshot(ctx)
	value = compute(dataset)
	if healthy {
		_, _ = s.cache.StoreIfCurrent(ctx, generation, map[string]interface{}{board: value})
	}
	return value, false
}
