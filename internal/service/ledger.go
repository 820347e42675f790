package service

import (
	"context"
	"sort"
	"time"

	"padel-tracker/internal/constants"
	"padel-tracker/internal/domain"
	"padel-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// LedgerService owns the per-quarter baseline snapshots: every player active
// in a quarter has exactly one record of the rating they entered it with.
type LedgerService struct {
	playerRepo   *repository.PlayerRepository
	matchRepo    *repository.MatchRepository
	baselineRepo *repository.BaselineRepository
	logger       zerolog.Logger
}

func NewLedgerService(playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, baselineRepo *repository.BaselineRepository, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		baselineRepo: baselineRepo,
		logger:       logger,
	}
}

// EnsureBaseline returns the player's baseline for the quarter asOf falls in,
// creating it from the player's current rating on first need. Redundant calls
// return the stored row unchanged even if the rating moved in between; the
// store's uniqueness constraint is what makes the check-then-create safe.
func (s *LedgerService) EnsureBaseline(ctx context.Context, playerID string, asOf time.Time) (*domain.QuarterlyBaseline, error) {
	q := domain.QuarterOf(asOf)

	if b, err := s.baselineRepo.Get(ctx, playerID, q.Year, q.Index); err == nil {
		return b, nil
	}

	player, err := s.playerRepo.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	b, err := s.baselineRepo.Ensure(ctx, playerID, q.Year, q.Index, player.Rating)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("player_id", playerID).
		Int("year", q.Year).
		Int("quarter", q.Index).
		Int("start_rating", b.StartRating).
		Msg("quarterly baseline ensured")
	return b, nil
}

// EnsureAllBaselines makes sure every non-admin player has a baseline for the
// quarter asOf falls in. Used by the scheduler sweep and before reports so the
// ledger never lacks a row for an active player.
func (s *LedgerService) EnsureAllBaselines(ctx context.Context, asOf time.Time) error {
	players, err := s.playerRepo.List(ctx, false)
	if err != nil {
		return err
	}

	for _, p := range players {
		if _, err := s.EnsureBaseline(ctx, p.ID, asOf); err != nil {
			return err
		}
	}

	s.logger.Info().Int("players", len(players)).Time("as_of", asOf).Msg("quarterly baselines swept")
	return nil
}

// QuarterReport builds the standings for one quarter: start rating, current
// rating, change, and games played per baselined player, best current rating
// first. EndRating reads the player's live rating, so the report is only
// meaningful for the active quarter or immediately after it ends.
func (s *LedgerService) QuarterReport(ctx context.Context, year, quarter int) (*domain.QuarterReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	q := domain.Quarter{Year: year, Index: quarter}

	baselines, err := s.baselineRepo.ListQuarter(ctx, year, quarter)
	if err != nil {
		return nil, err
	}

	games, err := s.matchRepo.GamesPerPlayer(ctx, q.Start(), q.End())
	if err != nil {
		return nil, err
	}

	total, err := s.matchRepo.CountWindow(ctx, q.Start(), q.End())
	if err != nil {
		return nil, err
	}

	standings := make([]domain.QuarterStanding, 0, len(baselines))
	for _, b := range baselines {
		player, err := s.playerRepo.Get(ctx, b.PlayerID)
		if err != nil {
			return nil, err
		}
		standings = append(standings, domain.QuarterStanding{
			PlayerID:    player.ID,
			Username:    player.Username,
			StartRating: b.StartRating,
			EndRating:   player.Rating,
			Change:      player.Rating - b.StartRating,
			GamesPlayed: games[player.ID],
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].EndRating != standings[j].EndRating {
			return standings[i].EndRating > standings[j].EndRating
		}
		return standings[i].Username < standings[j].Username
	})

	report := &domain.QuarterReport{
		Year:       year,
		Quarter:    quarter,
		Standings:  standings,
		TotalGames: total,
		Awards:     computeAwards(standings),
	}

	s.logger.Info().
		Int("year", year).
		Int("quarter", quarter).
		Int("players", len(standings)).
		Int("total_games", total).
		Msg("quarter report built")
	return report, nil
}
