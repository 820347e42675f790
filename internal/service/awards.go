package service

import "padel-tracker/internal/domain"

const (
	AwardBestImprovement = "best_improvement"
	AwardMostGames       = "most_games"
	AwardBestRating      = "best_rating"
)

// computeAwards derives the quarterly awards from the finished standings.
// Players without a single game are not eligible. Ties go to the player listed
// first, i.e. the one with the better current rating.
func computeAwards(standings []domain.QuarterStanding) []domain.Award {
	var improvement, games, rating *domain.QuarterStanding
	for i := range standings {
		s := &standings[i]
		if s.GamesPlayed == 0 {
			continue
		}
		if improvement == nil || s.Change > improvement.Change {
			improvement = s
		}
		if games == nil || s.GamesPlayed > games.GamesPlayed {
			games = s
		}
		if rating == nil || s.EndRating > rating.EndRating {
			rating = s
		}
	}
	if improvement == nil {
		return nil
	}

	return []domain.Award{
		{Type: AwardBestImprovement, PlayerID: improvement.PlayerID, Username: improvement.Username, Value: improvement.Change},
		{Type: AwardMostGames, PlayerID: games.PlayerID, Username: games.Username, Value: games.GamesPlayed},
		{Type: AwardBestRating, PlayerID: rating.PlayerID, Username: rating.Username, Value: rating.EndRating},
	}
}
