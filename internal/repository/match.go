package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padel-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: sqlDB, logger: logger}
}

// Insert stores a match with its four participant rows. The monotonic seq is
// assigned by the store and written back into the match.
func (r *MatchRepository) Insert(ctx context.Context, q DBTX, m *domain.Match) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO matches (id, score_a, score_b, team_rating_a, team_rating_b, winner, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ScoreA, m.ScoreB, m.TeamRatingA, m.TeamRatingB, m.Winner, m.CreatedBy, m.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", m.ID).Msg("failed to insert match")
		return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
	}
	if m.Seq, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read match seq: %w", err)
	}

	for _, s := range m.Sides {
		_, err := q.ExecContext(ctx,
			`INSERT INTO match_sides (match_id, player_id, team, slot, rating_before, rating_after, rating_delta)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, s.PlayerID, s.Team, s.Slot, s.RatingBefore, s.RatingAfter, s.RatingDelta)
		if err != nil {
			return fmt.Errorf("failed to insert match side %s/%s: %w", m.ID, s.PlayerID, err)
		}
	}
	return nil
}

// ListWindow returns all matches created inside [start, end), sides attached,
// sorted ascending by (created_at, seq). That ordering is the replay order.
func (r *MatchRepository) ListWindow(ctx context.Context, start, end time.Time) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, id, score_a, score_b, team_rating_a, team_rating_b, winner, created_by, created_at
		 FROM matches
		 WHERE created_at >= ? AND created_at < ?
		 ORDER BY created_at ASC, seq ASC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	index := make(map[string]int)
	for rows.Next() {
		var m domain.Match
		err := rows.Scan(&m.Seq, &m.ID, &m.ScoreA, &m.ScoreB, &m.TeamRatingA, &m.TeamRatingB, &m.Winner, &m.CreatedBy, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		index[m.ID] = len(matches)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return matches, nil
	}

	sideRows, err := r.db.QueryContext(ctx,
		`SELECT ms.match_id, ms.player_id, ms.team, ms.slot, ms.rating_before, ms.rating_after, ms.rating_delta
		 FROM match_sides ms
		 JOIN matches m ON m.id = ms.match_id
		 WHERE m.created_at >= ? AND m.created_at < ?
		 ORDER BY m.created_at ASC, m.seq ASC, ms.team ASC, ms.slot ASC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer sideRows.Close()

	for sideRows.Next() {
		var s domain.MatchSide
		err := sideRows.Scan(&s.MatchID, &s.PlayerID, &s.Team, &s.Slot, &s.RatingBefore, &s.RatingAfter, &s.RatingDelta)
		if err != nil {
			return nil, err
		}
		if i, ok := index[s.MatchID]; ok {
			matches[i].Sides = append(matches[i].Sides, s)
		}
	}
	return matches, sideRows.Err()
}

// ListByPlayer returns a player's matches, newest first.
func (r *MatchRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.seq, m.id, m.score_a, m.score_b, m.team_rating_a, m.team_rating_b, m.winner, m.created_by, m.created_at
		 FROM matches m
		 JOIN match_sides ms ON ms.match_id = m.id
		 WHERE ms.player_id = ?
		 ORDER BY m.created_at DESC, m.seq DESC
		 LIMIT ?`,
		playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		err := rows.Scan(&m.Seq, &m.ID, &m.ScoreA, &m.ScoreB, &m.TeamRatingA, &m.TeamRatingB, &m.Winner, &m.CreatedBy, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matches {
		if err := r.attachSides(ctx, &matches[i]); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (r *MatchRepository) attachSides(ctx context.Context, m *domain.Match) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, player_id, team, slot, rating_before, rating_after, rating_delta
		 FROM match_sides WHERE match_id = ? ORDER BY team ASC, slot ASC`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.MatchSide
		if err := rows.Scan(&s.MatchID, &s.PlayerID, &s.Team, &s.Slot, &s.RatingBefore, &s.RatingAfter, &s.RatingDelta); err != nil {
			return err
		}
		m.Sides = append(m.Sides, s)
	}
	return rows.Err()
}

// CountWindow counts matches created inside [start, end).
func (r *MatchRepository) CountWindow(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE created_at >= ? AND created_at < ?`, start, end).Scan(&n)
	return n, err
}

// GamesPerPlayer returns how many matches inside [start, end) each player
// appears in.
func (r *MatchRepository) GamesPerPlayer(ctx context.Context, start, end time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ms.player_id, COUNT(*)
		 FROM match_sides ms
		 JOIN matches m ON m.id = ms.match_id
		 WHERE m.created_at >= ? AND m.created_at < ?
		 GROUP BY ms.player_id`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// UpdateAnnotations overwrites a match's rating fields with freshly replayed
// values. Score, winner, and creation timestamp are never rewritten.
func (r *MatchRepository) UpdateAnnotations(ctx context.Context, q DBTX, matchID string, teamRatingA, teamRatingB float64, sides []domain.MatchSide) error {
	_, err := q.ExecContext(ctx,
		`UPDATE matches SET team_rating_a = ?, team_rating_b = ? WHERE id = ?`,
		teamRatingA, teamRatingB, matchID)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", matchID, err)
	}

	for _, s := range sides {
		res, err := q.ExecContext(ctx,
			`UPDATE match_sides SET rating_before = ?, rating_after = ?, rating_delta = ?
			 WHERE match_id = ? AND player_id = ?`,
			s.RatingBefore, s.RatingAfter, s.RatingDelta, matchID, s.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to update side %s/%s: %w", matchID, s.PlayerID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("side %s/%s: %w", matchID, s.PlayerID, ErrNotFound)
		}
	}
	return nil
}

// DeleteAll removes every match and its sides. Used by the full system reset.
func (r *MatchRepository) DeleteAll(ctx context.Context, q DBTX) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM match_sides`); err != nil {
		return fmt.Errorf("failed to delete match sides: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}
