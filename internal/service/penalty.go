package service

import (
	"context"
	"time"

	"padel-tracker/internal/elo"
	"padel-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// PenaltyService deducts rating from players who have not played for a week.
// This is the only place ratings are floor-clamped at zero.
type PenaltyService struct {
	playerRepo *repository.PlayerRepository
	logger     zerolog.Logger
}

func NewPenaltyService(playerRepo *repository.PlayerRepository, logger zerolog.Logger) *PenaltyService {
	return &PenaltyService{playerRepo: playerRepo, logger: logger}
}

// ApplyInactivityPenalties deducts from every non-admin player inactive for
// InactiveAfterDays, at most once per 24 hours so repeated sweeps on the same
// day stay harmless. Returns the number of players penalized.
func (s *PenaltyService) ApplyInactivityPenalties(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	inactiveBefore := now.AddDate(0, 0, -elo.InactiveAfterDays)
	penaltyBefore := now.Add(-24 * time.Hour)

	players, err := s.playerRepo.ListInactive(ctx, inactiveBefore, penaltyBefore)
	if err != nil {
		return 0, err
	}

	for _, p := range players {
		newRating := p.Rating - elo.InactivityPenalty
		if newRating < 0 {
			newRating = 0
		}
		if err := s.playerRepo.ApplyPenalty(ctx, p.ID, newRating, now); err != nil {
			return 0, err
		}
		s.logger.Info().
			Str("player_id", p.ID).
			Str("username", p.Username).
			Int("old_rating", p.Rating).
			Int("new_rating", newRating).
			Msg("inactivity penalty applied")
	}

	return len(players), nil
}
