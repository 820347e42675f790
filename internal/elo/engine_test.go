package elo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 0.0001

func evenTeams() (Team, Team) {
	a := Team{{ID: "a1", Rating: 500}, {ID: "a2", Rating: 500}}
	b := Team{{ID: "b1", Rating: 500}, {ID: "b2", Rating: 500}}
	return a, b
}

func allResults(r MatchResult) []PlayerResult {
	return []PlayerResult{r.TeamA[0], r.TeamA[1], r.TeamB[0], r.TeamB[1]}
}

func TestComputeMatchEvenTeams(t *testing.T) {
	t.Run("narrow win moves both sides by 16", func(t *testing.T) {
		a, b := evenTeams()
		res := ComputeMatch(a, b, Score{A: 6, B: 2})

		require.Equal(t, "A", res.Winner)
		for _, p := range []PlayerResult{res.TeamA[0], res.TeamA[1]} {
			assert.Equal(t, 516, p.After)
			assert.Equal(t, 16, p.Delta)
		}
		for _, p := range []PlayerResult{res.TeamB[0], res.TeamB[1]} {
			assert.Equal(t, 484, p.After)
			assert.Equal(t, -16, p.Delta)
		}
	})

	t.Run("blowout win adds the 3 point bonus", func(t *testing.T) {
		a, b := evenTeams()
		res := ComputeMatch(a, b, Score{A: 7, B: 1})

		require.Equal(t, "A", res.Winner)
		assert.Equal(t, 519, res.TeamA[0].After)
		assert.Equal(t, 519, res.TeamA[1].After)
		assert.Equal(t, 481, res.TeamB[0].After)
		assert.Equal(t, 481, res.TeamB[1].After)
	})

	t.Run("bonus kicks in exactly at a 5 point difference", func(t *testing.T) {
		a, b := evenTeams()
		narrow := ComputeMatch(a, b, Score{A: 7, B: 5})
		blowout := ComputeMatch(a, b, Score{A: 7, B: 2})

		assert.Equal(t, narrow.TeamA[0].Delta+3, blowout.TeamA[0].Delta)
		assert.Equal(t, narrow.TeamB[0].Delta-3, blowout.TeamB[0].Delta)
	})
}

func TestComputeMatchUnevenTeams(t *testing.T) {
	a := Team{{ID: "a1", Rating: 620}, {ID: "a2", Rating: 580}}
	b := Team{{ID: "b1", Rating: 500}, {ID: "b2", Rating: 460}}
	res := ComputeMatch(a, b, Score{A: 2, B: 6})

	require.Equal(t, "B", res.Winner)

	t.Run("team ratings are exact unrounded means", func(t *testing.T) {
		assert.InDelta(t, 600.0, res.TeamRatingA, tolerance)
		assert.InDelta(t, 480.0, res.TeamRatingB, tolerance)
	})

	t.Run("expectation reconstructs from stored team ratings", func(t *testing.T) {
		pA := WinProbability(res.TeamRatingA, res.TeamRatingB)
		pB := WinProbability(res.TeamRatingB, res.TeamRatingA)
		assert.InDelta(t, 1.0, pA+pB, tolerance)

		// Favorites lost: their raw change is -K*pA, underdogs gain K*(1-pB).
		wantLoss := KFactor * (0 - pA)
		for _, p := range []PlayerResult{res.TeamA[0], res.TeamA[1]} {
			assert.Equal(t, int(math.Round(float64(p.Before)+wantLoss)), p.After)
		}
		wantGain := KFactor * (1 - pB)
		for _, p := range []PlayerResult{res.TeamB[0], res.TeamB[1]} {
			assert.Equal(t, int(math.Round(float64(p.Before)+wantGain)), p.After)
		}
	})

	t.Run("teammates share the raw change but round on their own base", func(t *testing.T) {
		assert.Equal(t, res.TeamA[0].After-res.TeamA[0].Before, res.TeamA[0].Delta)
		// Raw change identical, so the deltas differ by at most 1 from rounding.
		assert.LessOrEqual(t, abs(res.TeamA[0].Delta-res.TeamA[1].Delta), 1)
	})
}

func TestDeltaInvariant(t *testing.T) {
	cases := []struct {
		name  string
		a, b  Team
		score Score
	}{
		{"even narrow", Team{{"a1", 500}, {"a2", 500}}, Team{{"b1", 500}, {"b2", 500}}, Score{6, 4}},
		{"uneven blowout", Team{{"a1", 731}, {"a2", 402}}, Team{{"b1", 555}, {"b2", 489}}, Score{7, 0}},
		{"underdog upset", Team{{"a1", 300}, {"a2", 350}}, Team{{"b1", 700}, {"b2", 650}}, Score{6, 3}},
		{"identical ratings odd score", Team{{"a1", 501}, {"a2", 500}}, Team{{"b1", 500}, {"b2", 501}}, Score{1, 7}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ComputeMatch(tc.a, tc.b, tc.score)
			for _, p := range allResults(res) {
				assert.Equal(t, p.After, p.Before+p.Delta, "player %s", p.PlayerID)
			}
		})
	}
}

func TestWinProbability(t *testing.T) {
	assert.InDelta(t, 0.5, WinProbability(500, 500), tolerance)

	// 400 points of difference is a 10:1 expectation.
	assert.InDelta(t, 10.0/11.0, WinProbability(900, 500), tolerance)
	assert.InDelta(t, 1.0/11.0, WinProbability(500, 900), tolerance)
}

func TestTeamRating(t *testing.T) {
	assert.InDelta(t, 500.5, TeamRating(500, 501), tolerance)
	assert.InDelta(t, 0.0, TeamRating(0, 0), tolerance)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
