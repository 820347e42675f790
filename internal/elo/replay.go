package elo

// ReplayMatch is the immutable part of a stored match needed to recompute its
// rating annotations: who played where, and the original score. Matches must
// already be in chronological order (creation time, then creation sequence).
type ReplayMatch struct {
	ID    string
	TeamA [2]string
	TeamB [2]string
	Score Score
}

// ReplayedMatch pairs a match ID with its freshly computed annotations.
type ReplayedMatch struct {
	ID     string
	Result MatchResult
}

// Replay folds a quarter's matches over the baseline ratings and returns the
// recomputed annotations for every match plus each participant's final rating.
// A player missing from baselines starts at DefaultRating. Players present in
// baselines but in none of the matches keep their baseline value untouched.
//
// The fold is pure: the same baselines and ordering always produce the same
// output, which is what makes recalculation idempotent.
func Replay(baselines map[string]int, matches []ReplayMatch) ([]ReplayedMatch, map[string]int) {
	current := make(map[string]int, len(baselines))
	for id, r := range baselines {
		current[id] = r
	}

	rating := func(id string) int {
		if r, ok := current[id]; ok {
			return r
		}
		return DefaultRating
	}

	replayed := make([]ReplayedMatch, 0, len(matches))
	for _, m := range matches {
		teamA := Team{
			{ID: m.TeamA[0], Rating: rating(m.TeamA[0])},
			{ID: m.TeamA[1], Rating: rating(m.TeamA[1])},
		}
		teamB := Team{
			{ID: m.TeamB[0], Rating: rating(m.TeamB[0])},
			{ID: m.TeamB[1], Rating: rating(m.TeamB[1])},
		}

		res := ComputeMatch(teamA, teamB, m.Score)
		for _, p := range res.TeamA {
			current[p.PlayerID] = p.After
		}
		for _, p := range res.TeamB {
			current[p.PlayerID] = p.After
		}

		replayed = append(replayed, ReplayedMatch{ID: m.ID, Result: res})
	}

	return replayed, current
}
