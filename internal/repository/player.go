package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padel-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

const playerColumns = `id, username, rating, is_admin, last_activity, last_penalty_at, created_at, updated_at`

func scanPlayer(row interface{ Scan(...any) error }) (*domain.Player, error) {
	var p domain.Player
	var penalty sql.NullTime
	err := row.Scan(&p.ID, &p.Username, &p.Rating, &p.IsAdmin, &p.LastActivity, &penalty, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if penalty.Valid {
		t := penalty.Time
		p.LastPenaltyAt = &t
	}
	return &p, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO players (id, username, rating, is_admin, last_activity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.Rating, p.IsAdmin, p.LastActivity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("username", p.Username).Msg("failed to create player")
		return fmt.Errorf("failed to create player %s: %w", p.Username, err)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns players sorted by current rating descending. Admin accounts are
// excluded unless includeAdmins is set; they never take part in the ranking.
func (r *PlayerRepository) List(ctx context.Context, includeAdmins bool) ([]domain.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY rating DESC, username ASC`
	if !includeAdmins {
		query = `SELECT ` + playerColumns + ` FROM players WHERE is_admin = FALSE ORDER BY rating DESC, username ASC`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// UpdateRating writes a player's current rating and activity timestamp.
// Runs on q so match entry can batch the four updates in one transaction.
func (r *PlayerRepository) UpdateRating(ctx context.Context, q DBTX, id string, rating int, activity time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE players SET rating = ?, last_activity = ?, updated_at = ? WHERE id = ?`,
		rating, activity, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", id).Msg("failed to update rating")
		return fmt.Errorf("failed to update rating for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetRating overwrites the rating without touching activity. Used by
// recalculation, which must not count a replay as activity.
func (r *PlayerRepository) SetRating(ctx context.Context, q DBTX, id string, rating int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE players SET rating = ?, updated_at = ? WHERE id = ?`,
		rating, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set rating for %s: %w", id, err)
	}
	return nil
}

// ResetRatings sets every non-admin player back to rating.
func (r *PlayerRepository) ResetRatings(ctx context.Context, q DBTX, rating int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE players SET rating = ?, updated_at = ? WHERE is_admin = FALSE`,
		rating, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to reset ratings: %w", err)
	}
	return nil
}

// ListInactive returns non-admin players whose last activity predates
// inactiveBefore and who have not been penalized since penaltyBefore.
func (r *PlayerRepository) ListInactive(ctx context.Context, inactiveBefore, penaltyBefore time.Time) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE is_admin = FALSE
		   AND last_activity < ?
		   AND (last_penalty_at IS NULL OR last_penalty_at < ?)`,
		inactiveBefore, penaltyBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// ApplyPenalty records an inactivity deduction together with its timestamp so
// the sweep never penalizes the same player twice within a day.
func (r *PlayerRepository) ApplyPenalty(ctx context.Context, id string, rating int, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE players SET rating = ?, last_penalty_at = ?, updated_at = ? WHERE id = ?`,
		rating, at, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to apply penalty to %s: %w", id, err)
	}
	return nil
}
