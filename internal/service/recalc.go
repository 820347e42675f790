package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padel-tracker/internal/constants"
	"padel-tracker/internal/domain"
	"padel-tracker/internal/elo"
	"padel-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RecalcService deterministically rebuilds a quarter's rating state: every
// match's annotations and every participant's current rating, replayed in
// order from the quarter baselines. It also carries the full system reset.
type RecalcService struct {
	db           *sql.DB
	playerRepo   *repository.PlayerRepository
	matchRepo    *repository.MatchRepository
	baselineRepo *repository.BaselineRepository
	playerSvc    *PlayerService
	group        singleflight.Group
	logger       zerolog.Logger
}

func NewRecalcService(sqlDB *sql.DB, playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, baselineRepo *repository.BaselineRepository, playerSvc *PlayerService, logger zerolog.Logger) *RecalcService {
	return &RecalcService{
		db:           sqlDB,
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		baselineRepo: baselineRepo,
		playerSvc:    playerSvc,
		logger:       logger,
	}
}

// RecalculateQuarter replays every match of the quarter in (created_at, seq)
// order from the stored baselines, overwriting each match's rating annotations
// and each participant's current rating. Concurrent calls for the same quarter
// coalesce into a single run; the whole replay commits or rolls back as one
// transaction.
func (s *RecalcService) RecalculateQuarter(ctx context.Context, year, quarter int) error {
	key := fmt.Sprintf("%d-%d", year, quarter)
	_, err, _ := s.group.Do(key, func() (any, error) {
		return nil, s.recalculate(ctx, year, quarter)
	})
	return err
}

func (s *RecalcService) recalculate(ctx context.Context, year, quarter int) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RecalcTimeout)
	defer cancel()

	start := time.Now()
	q := domain.Quarter{Year: year, Index: quarter}

	matches, err := s.matchRepo.ListWindow(ctx, q.Start(), q.End())
	if err != nil {
		return fmt.Errorf("failed to load quarter matches: %w", err)
	}
	if len(matches) == 0 {
		s.logger.Info().Int("year", year).Int("quarter", quarter).Msg("no matches in quarter, nothing to recalculate")
		return nil
	}

	stored, err := s.baselineRepo.MapQuarter(ctx, year, quarter)
	if err != nil {
		return fmt.Errorf("failed to load quarter baselines: %w", err)
	}

	// Only participants are reset and replayed; everyone else is untouched.
	// A participant without a baseline starts from the default rating.
	baselines := make(map[string]int)
	replayInput := make([]elo.ReplayMatch, len(matches))
	for i, m := range matches {
		rm := elo.ReplayMatch{
			ID:    m.ID,
			TeamA: m.TeamPlayers("A"),
			TeamB: m.TeamPlayers("B"),
			Score: elo.Score{A: m.ScoreA, B: m.ScoreB},
		}
		replayInput[i] = rm
		for _, id := range []string{rm.TeamA[0], rm.TeamA[1], rm.TeamB[0], rm.TeamB[1]} {
			if _, ok := baselines[id]; !ok {
				if r, ok := stored[id]; ok {
					baselines[id] = r
				} else {
					baselines[id] = elo.DefaultRating
				}
			}
		}
	}

	replayed, final := elo.Replay(baselines, replayInput)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rm := range replayed {
		if err := ctx.Err(); err != nil {
			return err
		}
		sides := sidesFromResult(rm.ID, rm.Result)
		if err := s.matchRepo.UpdateAnnotations(ctx, tx, rm.ID, rm.Result.TeamRatingA, rm.Result.TeamRatingB, sides); err != nil {
			s.logger.Error().Err(err).Str("match_id", rm.ID).Msg("recalculation aborted")
			return err
		}
	}
	for id, rating := range final {
		if err := s.playerRepo.SetRating(ctx, tx, id, rating); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recalculation: %w", err)
	}

	s.playerSvc.rebuildLeaderboard(ctx)

	s.logger.Info().
		Int("year", year).
		Int("quarter", quarter).
		Int("matches", len(replayed)).
		Int("players", len(final)).
		Dur("took", time.Since(start)).
		Msg("quarter recalculated")
	return nil
}

// ResetSystem wipes the season: every non-admin player back to the default
// rating, all matches gone, all baselines gone. No replay.
func (s *RecalcService) ResetSystem(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RecalcTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.DeleteAll(ctx, tx); err != nil {
		return err
	}
	if err := s.baselineRepo.DeleteAll(ctx, tx); err != nil {
		return err
	}
	if err := s.playerRepo.ResetRatings(ctx, tx, elo.DefaultRating); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	s.playerSvc.rebuildLeaderboard(ctx)

	s.logger.Warn().Msg("system reset: ratings restored to default, matches and baselines deleted")
	return nil
}
