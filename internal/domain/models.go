package domain

import (
	"time"
)

type Player struct {
	ID            string
	Username      string
	Rating        int
	IsAdmin       bool
	LastActivity  time.Time
	LastPenaltyAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MatchSide is one player's slot in a match together with the rating
// annotations written for that match. RatingAfter = RatingBefore + RatingDelta.
type MatchSide struct {
	MatchID      string
	PlayerID     string
	Team         string // "A" or "B"
	Slot         int    // 0 or 1 within the team
	RatingBefore int
	RatingAfter  int
	RatingDelta  int
}

type Match struct {
	ID          string
	Seq         int64 // monotonic, assigned at creation; replay tie-breaker
	ScoreA      int
	ScoreB      int
	TeamRatingA float64
	TeamRatingB float64
	Winner      string // "A" or "B"
	CreatedBy   string
	CreatedAt   time.Time
	Sides       []MatchSide
}

// TeamPlayers returns the player IDs of one team in slot order.
func (m *Match) TeamPlayers(team string) [2]string {
	var ids [2]string
	for _, s := range m.Sides {
		if s.Team == team && s.Slot >= 0 && s.Slot < 2 {
			ids[s.Slot] = s.PlayerID
		}
	}
	return ids
}

type QuarterlyBaseline struct {
	ID          string
	PlayerID    string
	Year        int
	Quarter     int // 0-3
	StartRating int
	CreatedAt   time.Time
}

// QuarterStanding is one player's row in a quarterly report. EndRating is the
// player's current rating, so the row is only meaningful while the quarter is
// the active one or immediately after it ends.
type QuarterStanding struct {
	PlayerID    string
	Username    string
	StartRating int
	EndRating   int
	Change      int
	GamesPlayed int
}

type QuarterReport struct {
	Year       int
	Quarter    int
	Standings  []QuarterStanding
	TotalGames int
	Awards     []Award
}

type Award struct {
	Type     string // "best_improvement", "most_games", "best_rating"
	PlayerID string
	Username string
	Value    int
}

type LeaderboardEntry struct {
	PlayerID string
	Username string
	Rating   int
	Rank     int
}
