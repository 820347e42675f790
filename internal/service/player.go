package service

import (
	"context"
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

type PlayerService struct {
	playerRepo  *repository.PlayerRepository
	leaderboard *cache.Leaderboard
	logger      zerolog.Logger
}

func NewPlayerService(playerRepo *repository.PlayerRepository, leaderboard *cache.Leaderboard, logger zerolog.Logger) *PlayerService {
	return &PlayerService{playerRepo: playerRepo, leaderboard: leaderboard, logger: logger}
}

func (s *PlayerService) Create(ctx context.Context, username string, isAdmin bool) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := time.Now().UTC()
	player := &domain.Player{
		ID:           id,
		Username:     username,
		Rating:       elo.DefaultRating,
		IsAdmin:      isAdmin,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	if !isAdmin {
		if err := s.leaderboard.SetRating(ctx, player.ID, player.Username, player.Rating); err != nil {
			s.logger.Warn().Err(err).Str("player_id", player.ID).Msg("failed to cache new player rating")
		}
	}

	s.logger.Info().Str("player_id", player.ID).Str("username", username).Msg("player created")
	return player, nil
}

func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	return s.playerRepo.Get(ctx, id)
}

func (s *PlayerService) List(ctx context.Context) ([]domain.Player, error) {
	return s.playerRepo.List(ctx, false)
}

// Leaderboard returns the current standings, best rating first. Reads go to
// the redis sorted set when it is configured and warm; any cache miss or error
// falls back to the database.
func (s *PlayerService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = constants.LeaderboardDefaultLimit
	}

	entries, err := s.leaderboard.TopN(ctx, limit)
	if err == nil && len(entries) > 0 {
		return entries, nil
	}
	if err != nil {
		s.logger.Debug().Err(err).Msg("leaderboard cache unavailable, reading from database")
	}

	players, err := s.playerRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(players) > limit {
		players = players[:limit]
	}

	result := make([]domain.LeaderboardEntry, len(players))
	for i, p := range players {
		result[i] = domain.LeaderboardEntry{
			PlayerID: p.ID,
			Username: p.Username,
			Rating:   p.Rating,
			Rank:     i + 1,
		}
	}
	return result, nil
}

// rebuildLeaderboard refreshes the whole cached standing from the database.
// Best-effort: failures are logged, never propagated.
func (s *PlayerService) rebuildLeaderboard(ctx context.Context) {
	players, err := s.playerRepo.List(ctx, false)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load players for leaderboard rebuild")
		return
	}
	if err := s.leaderboard.Rebuild(ctx, players); err != nil {
		s.logger.Warn().Err(err).Msg("failed to rebuild leaderboard cache")
	}
}
