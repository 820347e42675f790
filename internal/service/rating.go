package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padel-tracker/internal/cache"
	"padel-tracker/internal/constants"
	"padel-tracker/internal/domain"
	"padel-tracker/internal/elo"
	"padel-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// MaxScore is the highest valid set score, per the padel house rules.
const MaxScore = 7

// MatchInput is a completed match as reported by its players.
type MatchInput struct {
	TeamA     [2]string
	TeamB     [2]string
	ScoreA    int
	ScoreB    int
	CreatedBy string    // defaults to the first team A player
	PlayedAt  time.Time // zero means now; buckets the match into its quarter
}

// RatingService runs the normal match entry path: validate, lock the four
// players, ensure baselines, compute ratings, persist everything in one
// transaction.
type RatingService struct {
	db          *sql.DB
	playerRepo  *repository.PlayerRepository
	matchRepo   *repository.MatchRepository
	ledger      *LedgerService
	leaderboard *cache.Leaderboard
	locks       *playerLocks
	logger      zerolog.Logger
}

func NewRatingService(sqlDB *sql.DB, playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, ledger *LedgerService, leaderboard *cache.Leaderboard, logger zerolog.Logger) *RatingService {
	return &RatingService{
		db:          sqlDB,
		playerRepo:  playerRepo,
		matchRepo:   matchRepo,
		ledger:      ledger,
		leaderboard: leaderboard,
		locks:       newPlayerLocks(),
		logger:      logger,
	}
}

func validateInput(in MatchInput) error {
	if in.ScoreA == in.ScoreB {
		return ErrTiedScore
	}
	if in.ScoreA < 0 || in.ScoreA > MaxScore || in.ScoreB < 0 || in.ScoreB > MaxScore {
		return ErrScoreOutOfRange
	}

	seen := make(map[string]bool, 4)
	for _, id := range []string{in.TeamA[0], in.TeamA[1], in.TeamB[0], in.TeamB[1]} {
		if id == "" || seen[id] {
			return ErrDuplicatePlayers
		}
		seen[id] = true
	}
	return nil
}

// RecordMatch validates and persists one match, updating the four players'
// current ratings and their quarterly baselines along the way.
func (s *RatingService) RecordMatch(ctx context.Context, in MatchInput) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	playedAt := in.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}

	ids := []string{in.TeamA[0], in.TeamA[1], in.TeamB[0], in.TeamB[1]}
	unlock := s.locks.LockAll(ids)
	defer unlock()

	players := make(map[string]*domain.Player, 4)
	for _, id := range ids {
		p, err := s.playerRepo.Get(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("player_id", id).Msg("match entry aborted, player not found")
			return nil, err
		}
		players[id] = p
	}

	// A player's first match of a quarter freezes their start rating before
	// the match moves it.
	for _, id := range ids {
		if _, err := s.ledger.EnsureBaseline(ctx, id, playedAt); err != nil {
			return nil, err
		}
	}

	result := elo.ComputeMatch(
		elo.Team{
			{ID: in.TeamA[0], Rating: players[in.TeamA[0]].Rating},
			{ID: in.TeamA[1], Rating: players[in.TeamA[1]].Rating},
		},
		elo.Team{
			{ID: in.TeamB[0], Rating: players[in.TeamB[0]].Rating},
			{ID: in.TeamB[1], Rating: players[in.TeamB[1]].Rating},
		},
		elo.Score{A: in.ScoreA, B: in.ScoreB},
	)

	matchID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = in.TeamA[0]
	}

	match := &domain.Match{
		ID:          matchID,
		ScoreA:      in.ScoreA,
		ScoreB:      in.ScoreB,
		TeamRatingA: result.TeamRatingA,
		TeamRatingB: result.TeamRatingB,
		Winner:      result.Winner,
		CreatedBy:   createdBy,
		CreatedAt:   playedAt,
		Sides:       sidesFromResult(matchID, result),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.Insert(ctx, tx, match); err != nil {
		return nil, err
	}
	for _, side := range match.Sides {
		if err := s.playerRepo.UpdateRating(ctx, tx, side.PlayerID, side.RatingAfter, playedAt); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}

	for _, side := range match.Sides {
		p := players[side.PlayerID]
		if err := s.leaderboard.SetRating(ctx, p.ID, p.Username, side.RatingAfter); err != nil {
			s.logger.Warn().Err(err).Str("player_id", p.ID).Msg("failed to refresh cached rating")
		}
	}

	s.logger.Info().
		Str("match_id", match.ID).
		Int64("seq", match.Seq).
		Int("score_a", match.ScoreA).
		Int("score_b", match.ScoreB).
		Str("winner", match.Winner).
		Msg("match recorded")
	return match, nil
}

// History returns a player's recent matches, newest first.
func (s *RatingService) History(ctx context.Context, playerID string, limit int) ([]domain.Match, error) {
	if limit <= 0 {
		limit = 50
	}
	if _, err := s.playerRepo.Get(ctx, playerID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListByPlayer(ctx, playerID, limit)
}

func sidesFromResult(matchID string, result elo.MatchResult) []domain.MatchSide {
	sides := make([]domain.MatchSide, 0, 4)
	for slot, p := range result.TeamA {
		sides = append(sides, domain.MatchSide{
			MatchID:      matchID,
			PlayerID:     p.PlayerID,
			Team:         "A",
			Slot:         slot,
			RatingBefore: p.Before,
			RatingAfter:  p.After,
			RatingDelta:  p.Delta,
		})
	}
	for slot, p := range result.TeamB {
		sides = append(sides, domain.MatchSide{
			MatchID:      matchID,
			PlayerID:     p.PlayerID,
			Team:         "B",
			Slot:         slot,
			RatingBefore: p.Before,
			RatingAfter:  p.After,
			RatingDelta:  p.Delta,
		})
	}
	return sides
}
