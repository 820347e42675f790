package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"padel-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type BaselineRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBaselineRepository(sqlDB *sql.DB, logger zerolog.Logger) *BaselineRepository {
	return &BaselineRepository{db: sqlDB, logger: logger}
}

// Ensure creates the (player, year, quarter) baseline with startRating if it
// does not exist yet and returns the stored row either way. The UNIQUE index
// makes concurrent calls collapse onto a single row; a losing insert is a
// no-op and the subsequent read returns whatever won.
func (r *BaselineRepository) Ensure(ctx context.Context, playerID string, year, quarter, startRating int) (*domain.QuarterlyBaseline, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quarterly_baselines (id, player_id, year, quarter, start_rating, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (player_id, year, quarter) DO NOTHING`,
		id, playerID, year, quarter, startRating, time.Now().UTC())
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", playerID).Int("year", year).Int("quarter", quarter).
			Msg("failed to ensure baseline")
		return nil, fmt.Errorf("failed to ensure baseline for %s: %w", playerID, err)
	}

	return r.Get(ctx, playerID, year, quarter)
}

func (r *BaselineRepository) Get(ctx context.Context, playerID string, year, quarter int) (*domain.QuarterlyBaseline, error) {
	var b domain.QuarterlyBaseline
	err := r.db.QueryRowContext(ctx,
		`SELECT id, player_id, year, quarter, start_rating, created_at
		 FROM quarterly_baselines
		 WHERE player_id = ? AND year = ? AND quarter = ?`,
		playerID, year, quarter).
		Scan(&b.ID, &b.PlayerID, &b.Year, &b.Quarter, &b.StartRating, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("baseline %s %d/%d: %w", playerID, year, quarter, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListQuarter returns every baseline stored for a quarter.
func (r *BaselineRepository) ListQuarter(ctx context.Context, year, quarter int) ([]domain.QuarterlyBaseline, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, year, quarter, start_rating, created_at
		 FROM quarterly_baselines
		 WHERE year = ? AND quarter = ?`,
		year, quarter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var baselines []domain.QuarterlyBaseline
	for rows.Next() {
		var b domain.QuarterlyBaseline
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.Year, &b.Quarter, &b.StartRating, &b.CreatedAt); err != nil {
			return nil, err
		}
		baselines = append(baselines, b)
	}
	return baselines, rows.Err()
}

// MapQuarter returns playerID -> startRating for a quarter.
func (r *BaselineRepository) MapQuarter(ctx context.Context, year, quarter int) (map[string]int, error) {
	baselines, err := r.ListQuarter(ctx, year, quarter)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(baselines))
	for _, b := range baselines {
		m[b.PlayerID] = b.StartRating
	}
	return m, nil
}

// DeleteAll removes every baseline. Used by the full system reset.
func (r *BaselineRepository) DeleteAll(ctx context.Context, q DBTX) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM quarterly_baselines`); err != nil {
		return fmt.Errorf("failed to delete baselines: %w", err)
	}
	return nil
}
