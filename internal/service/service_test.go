package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"padel-tracker/internal/database"
	"padel-tracker/internal/domain"
	"padel-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// testEnv wires the full service stack against a throwaway sqlite database.
// The leaderboard cache stays nil, which every service treats as disabled.
type testEnv struct {
	db        *sql.DB
	players   *repository.PlayerRepository
	matches   *repository.MatchRepository
	baselines *repository.BaselineRepository
	playerSvc *PlayerService
	ledger    *LedgerService
	rating    *RatingService
	recalc    *RecalcService
	penalty   *PenaltyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zerolog.Nop()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	players := repository.NewPlayerRepository(db, log)
	matches := repository.NewMatchRepository(db, log)
	baselines := repository.NewBaselineRepository(db, log)

	playerSvc := NewPlayerService(players, nil, log)
	ledger := NewLedgerService(players, matches, baselines, log)
	rating := NewRatingService(db, players, matches, ledger, nil, log)
	recalc := NewRecalcService(db, players, matches, baselines, playerSvc, log)
	penalty := NewPenaltyService(players, log)

	return &testEnv{
		db:        db,
		players:   players,
		matches:   matches,
		baselines: baselines,
		playerSvc: playerSvc,
		ledger:    ledger,
		rating:    rating,
		recalc:    recalc,
		penalty:   penalty,
	}
}

func (e *testEnv) createPlayer(t *testing.T, username string) *domain.Player {
	t.Helper()
	p, err := e.playerSvc.Create(context.Background(), username, false)
	require.NoError(t, err)
	return p
}

func (e *testEnv) createFour(t *testing.T) (a1, a2, b1, b2 *domain.Player) {
	t.Helper()
	return e.createPlayer(t, "anna"), e.createPlayer(t, "ben"),
		e.createPlayer(t, "carla"), e.createPlayer(t, "dino")
}

func (e *testEnv) recordAt(t *testing.T, a1, a2, b1, b2 string, scoreA, scoreB int, at time.Time) *domain.Match {
	t.Helper()
	m, err := e.rating.RecordMatch(context.Background(), MatchInput{
		TeamA:    [2]string{a1, a2},
		TeamB:    [2]string{b1, b2},
		ScoreA:   scoreA,
		ScoreB:   scoreB,
		PlayedAt: at,
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) currentRating(t *testing.T, id string) int {
	t.Helper()
	p, err := e.players.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Rating
}
