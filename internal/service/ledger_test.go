package service

import (
	"context"
	"testing"
	"time"

	"padel-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureBaseline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asOf := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)

	p := env.createPlayer(t, "anna")

	t.Run("first call freezes the current rating", func(t *testing.T) {
		b, err := env.ledger.EnsureBaseline(ctx, p.ID, asOf)
		require.NoError(t, err)
		assert.Equal(t, 2026, b.Year)
		assert.Equal(t, 1, b.Quarter)
		assert.Equal(t, 500, b.StartRating)
	})

	t.Run("second call returns the stored row even after the rating moved", func(t *testing.T) {
		require.NoError(t, env.players.SetRating(ctx, env.db, p.ID, 540))

		b, err := env.ledger.EnsureBaseline(ctx, p.ID, asOf)
		require.NoError(t, err)
		assert.Equal(t, 500, b.StartRating)
	})

	t.Run("a new quarter gets its own baseline", func(t *testing.T) {
		b, err := env.ledger.EnsureBaseline(ctx, p.ID, asOf.AddDate(0, 3, 0))
		require.NoError(t, err)
		assert.Equal(t, 2, b.Quarter)
		assert.Equal(t, 540, b.StartRating)
	})

	t.Run("unknown player fails and creates nothing", func(t *testing.T) {
		_, err := env.ledger.EnsureBaseline(ctx, "missing", asOf)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = env.baselines.Get(ctx, "missing", 2026, 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestEnsureAllBaselines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asOf := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	p1 := env.createPlayer(t, "anna")
	p2 := env.createPlayer(t, "ben")
	admin, err := env.playerSvc.Create(ctx, "admin", true)
	require.NoError(t, err)

	require.NoError(t, env.ledger.EnsureAllBaselines(ctx, asOf))

	for _, id := range []string{p1.ID, p2.ID} {
		_, err := env.baselines.Get(ctx, id, 2026, 0)
		assert.NoError(t, err)
	}

	_, err = env.baselines.Get(ctx, admin.ID, 2026, 0)
	assert.ErrorIs(t, err, repository.ErrNotFound, "admins are not swept")
}

func TestQuarterReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a1, a2, b1, b2 := env.createFour(t)

	played := time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)
	env.recordAt(t, a1.ID, a2.ID, b1.ID, b2.ID, 6, 2, played)
	env.recordAt(t, a1.ID, b1.ID, a2.ID, b2.ID, 7, 1, played.Add(time.Hour))

	// A match in the next quarter must not leak into the report.
	env.recordAt(t, a1.ID, a2.ID, b1.ID, b2.ID, 6, 4, time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC))

	report, err := env.ledger.QuarterReport(ctx, 2026, 0)
	require.NoError(t, err)

	t.Run("totals and per player games cover only the quarter", func(t *testing.T) {
		assert.Equal(t, 2, report.TotalGames)
		for _, s := range report.Standings {
			assert.Equal(t, 2, s.GamesPlayed, s.Username)
		}
	})

	t.Run("standings are sorted by end rating descending", func(t *testing.T) {
		require.NotEmpty(t, report.Standings)
		for i := 1; i < len(report.Standings); i++ {
			assert.GreaterOrEqual(t, report.Standings[i-1].EndRating, report.Standings[i].EndRating)
		}
	})

	t.Run("change is end minus start", func(t *testing.T) {
		for _, s := range report.Standings {
			assert.Equal(t, s.EndRating-s.StartRating, s.Change, s.Username)
		}
	})

	t.Run("awards name eligible players", func(t *testing.T) {
		require.Len(t, report.Awards, 3)
		byType := map[string]string{}
		for _, a := range report.Awards {
			byType[a.Type] = a.Username
		}
		assert.Contains(t, byType, AwardBestImprovement)
		assert.Contains(t, byType, AwardMostGames)
		assert.Contains(t, byType, AwardBestRating)
		// a1 won both quarter matches, so it leads rating and improvement.
		assert.Equal(t, "anna", byType[AwardBestRating])
	})
}
