// Package elo computes rating changes for padel doubles matches. It implements
// the standard logistic Elo expectation over team averages with a fixed bonus
// for lopsided results.
package elo

import "math"

const (
	// KFactor is the maximum base rating swing per match.
	KFactor = 32
	// SignificantWinThreshold is the score difference from which the winners
	// gain and the losers lose SignificantWinBonus on top of the base change.
	SignificantWinThreshold = 5
	SignificantWinBonus     = 3

	// DefaultRating is assigned at player creation and restored by resets.
	DefaultRating = 500

	// InactiveAfterDays and InactivityPenalty drive the inactivity sweep,
	// which floors ratings at zero. ComputeMatch itself never clamps.
	InactiveAfterDays = 7
	InactivityPenalty = 10
)

// PlayerRating is the narrow engine-side view of a player.
type PlayerRating struct {
	ID     string
	Rating int
}

// Team is a doubles pairing.
type Team [2]PlayerRating

type Score struct {
	A int
	B int
}

// PlayerResult carries the rating annotations for one participant.
// After = Before + Delta, with Delta reflecting the rounded result.
type PlayerResult struct {
	PlayerID string
	Before   int
	After    int
	Delta    int
}

type MatchResult struct {
	Winner      string // "A" or "B"
	TeamRatingA float64
	TeamRatingB float64
	TeamA       [2]PlayerResult
	TeamB       [2]PlayerResult
}

// TeamRating is the unrounded arithmetic mean of the two members' ratings.
func TeamRating(p1, p2 int) float64 {
	return float64(p1+p2) / 2
}

// WinProbability returns the logistic expectation for a side rated ownElo
// against a side rated oppElo. The two directions sum to 1.
func WinProbability(ownElo, oppElo float64) float64 {
	return 1 / (1 + math.Pow(10, (oppElo-ownElo)/400))
}

// ComputeMatch computes each participant's new rating for a completed match.
// Pure and deterministic; safe to call concurrently.
//
// Precondition: scores are distinct and non-negative, and the four players are
// distinct. Validation lives at the service boundary; given a tied score the
// strictly-greater test makes both teams lose their expectation and labels
// team B the winner, which no caller should rely on.
func ComputeMatch(teamA, teamB Team, score Score) MatchResult {
	ratingA := TeamRating(teamA[0].Rating, teamA[1].Rating)
	ratingB := TeamRating(teamB[0].Rating, teamB[1].Rating)

	expectedA := WinProbability(ratingA, ratingB)
	expectedB := WinProbability(ratingB, ratingA)

	aWon := score.A > score.B
	diff := score.A - score.B
	if diff < 0 {
		diff = -diff
	}

	winner := "B"
	if aWon {
		winner = "A"
	}

	res := MatchResult{
		Winner:      winner,
		TeamRatingA: ratingA,
		TeamRatingB: ratingB,
	}
	for i, p := range teamA {
		res.TeamA[i] = applyChange(p, expectedA, aWon, diff)
	}
	for i, p := range teamB {
		res.TeamB[i] = applyChange(p, expectedB, !aWon, diff)
	}
	return res
}

// applyChange adds the shared team change to one player's own rating. Both
// teammates receive the identical raw change; only rounding against their own
// base can make the new ratings differ.
func applyChange(p PlayerRating, expected float64, won bool, scoreDiff int) PlayerResult {
	actual := 0.0
	if won {
		actual = 1.0
	}

	change := KFactor * (actual - expected)
	if scoreDiff >= SignificantWinThreshold {
		if won {
			change += SignificantWinBonus
		} else {
			change -= SignificantWinBonus
		}
	}

	after := int(math.Round(float64(p.Rating) + change))
	return PlayerResult{
		PlayerID: p.ID,
		Before:   p.Rating,
		After:    after,
		Delta:    after - p.Rating,
	}
}
