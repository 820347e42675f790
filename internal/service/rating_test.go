package service

import (
	"context"
	"testing"
	"time"

	"padel-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var q1Date = time.Date(2026, time.February, 10, 18, 30, 0, 0, time.UTC)

func TestRecordMatch(t *testing.T) {
	env := newTestEnv(t)
	a1, a2, b1, b2 := env.createFour(t)

	match := env.recordAt(t, a1.ID, a2.ID, b1.ID, b2.ID, 6, 2, q1Date)

	t.Run("winners and losers move by 16 from even start", func(t *testing.T) {
		assert.Equal(t, "A", match.Winner)
		assert.Equal(t, 516, env.currentRating(t, a1.ID))
		assert.Equal(t, 516, env.currentRating(t, a2.ID))
		assert.Equal(t, 484, env.currentRating(t, b1.ID))
		assert.Equal(t, 484, env.currentRating(t, b2.ID))
	})

	t.Run("annotations satisfy the delta invariant", func(t *testing.T) {
		require.Len(t, match.Sides, 4)
		for _, s := range match.Sides {
			assert.Equal(t, s.RatingAfter, s.RatingBefore+s.RatingDelta)
		}
	})

	t.Run("baselines were frozen at the pre-match rating", func(t *testing.T) {
		for _, id := range []string{a1.ID, a2.ID, b1.ID, b2.ID} {
			b, err := env.baselines.Get(context.Background(), id, 2026, 0)
			require.NoError(t, err)
			assert.Equal(t, 500, b.StartRating)
		}
	})

	t.Run("match is stored with a monotonic seq", func(t *testing.T) {
		second := env.recordAt(t, a1.ID, a2.ID, b1.ID, b2.ID, 3, 6, q1Date.Add(time.Hour))
		assert.Greater(t, second.Seq, match.Seq)
	})
}

func TestRecordMatchValidation(t *testing.T) {
	env := newTestEnv(t)
	a1, a2, b1, b2 := env.createFour(t)

	cases := []struct {
		name string
		in   MatchInput
		want error
	}{
		{
			"tied score",
			MatchInput{TeamA: [2]string{a1.ID, a2.ID}, TeamB: [2]string{b1.ID, b2.ID}, ScoreA: 4, ScoreB: 4},
			ErrTiedScore,
		},
		{
			"score above maximum",
			MatchInput{TeamA: [2]string{a1.ID, a2.ID}, TeamB: [2]string{b1.ID, b2.ID}, ScoreA: 8, ScoreB: 2},
			ErrScoreOutOfRange,
		},
		{
			"negative score",
			MatchInput{TeamA: [2]string{a1.ID, a2.ID}, TeamB: [2]string{b1.ID, b2.ID}, ScoreA: -1, ScoreB: 2},
			ErrScoreOutOfRange,
		},
		{
			"player on both teams",
			MatchInput{TeamA: [2]string{a1.ID, a2.ID}, TeamB: [2]string{a1.ID, b2.ID}, ScoreA: 6, ScoreB: 2},
			ErrDuplicatePlayers,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.rating.RecordMatch(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("unknown player aborts without writing", func(t *testing.T) {
		_, err := env.rating.RecordMatch(context.Background(), MatchInput{
			TeamA: [2]string{a1.ID, a2.ID}, TeamB: [2]string{b1.ID, "missing"}, ScoreA: 6, ScoreB: 2,
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, 500, env.currentRating(t, a1.ID))
	})
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	a1, a2, b1, b2 := env.createFour(t)

	env.recordAt(t, a1.ID, a2.ID, b1.ID, b2.ID, 6, 2, q1Date)
	env.recordAt(t, a1.ID, b1.ID, a2.ID, b2.ID, 2, 6, q1Date.Add(time.Hour))

	matches, err := env.rating.History(context.Background(), a1.ID, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].CreatedAt.After(matches[1].CreatedAt), "newest first")

	_, err = env.rating.History(context.Background(), "missing", 10)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
