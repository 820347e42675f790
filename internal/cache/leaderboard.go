// Package cache keeps the current standings in a redis sorted set so the
// leaderboard endpoint does not hit sqlite on every read. The cache is an
// optimization only: every write path treats failures as best-effort and the
// read path falls back to the database.
package cache

import (
	"context"
	"fmt"

	"padel-tracker/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	leaderboardKey   = "padel:leaderboard"
	usernameKeyFmt   = "padel:player:%s:username"
	usernameKeyScan  = "padel:player:*"
	usernameKeyTTL   = 0 // usernames don't expire; reset clears them explicitly
	leaderboardLimit = 500
)

type Leaderboard struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewLeaderboard returns nil when addr is empty; all methods are nil-safe so
// callers never need to branch on whether the cache is configured.
func NewLeaderboard(addr string, logger zerolog.Logger) *Leaderboard {
	if addr == "" {
		logger.Info().Msg("leaderboard cache disabled")
		return nil
	}
	return &Leaderboard{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger,
	}
}

// SetRating writes one player's current rating into the sorted set.
func (c *Leaderboard) SetRating(ctx context.Context, playerID, username string, rating int) error {
	if c == nil {
		return nil
	}
	if err := c.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(rating),
		Member: playerID,
	}).Err(); err != nil {
		return err
	}
	return c.client.Set(ctx, fmt.Sprintf(usernameKeyFmt, playerID), username, usernameKeyTTL).Err()
}

// TopN returns the highest-rated players, best first.
func (c *Leaderboard) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if c == nil {
		return nil, redis.Nil
	}
	zs, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		playerID, _ := z.Member.(string)
		username, err := c.client.Get(ctx, fmt.Sprintf(usernameKeyFmt, playerID)).Result()
		if err != nil && err != redis.Nil {
			return nil, err
		}
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID: playerID,
			Username: username,
			Rating:   int(z.Score),
			Rank:     i + 1,
		})
	}
	return entries, nil
}

// Remove drops a player from the standings.
func (c *Leaderboard) Remove(ctx context.Context, playerID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.ZRem(ctx, leaderboardKey, playerID).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, fmt.Sprintf(usernameKeyFmt, playerID)).Err()
}

// Clear wipes the whole cached leaderboard. Used by system reset and before a
// full rebuild.
func (c *Leaderboard) Clear(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, leaderboardKey).Err(); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, usernameKeyScan, leaderboardLimit).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Rebuild replaces the cached standings with the given players.
func (c *Leaderboard) Rebuild(ctx context.Context, players []domain.Player) error {
	if c == nil {
		return nil
	}
	if err := c.Clear(ctx); err != nil {
		return err
	}
	for _, p := range players {
		if err := c.SetRating(ctx, p.ID, p.Username, p.Rating); err != nil {
			return err
		}
	}
	return nil
}
