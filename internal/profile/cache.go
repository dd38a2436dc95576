package profile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LeaderboardCache mirrors the persisted top-N leaderboard into a Redis
// sorted set plus per-user meta hashes, giving read paths a fast,
// shareable view. The persisted state stays the source of truth; the
// mirror is rebuilt after every profile mutation.
type LeaderboardCache struct {
	rdb    *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewLeaderboardCache creates a cache over rdb. Prefix defaults to "lb".
func NewLeaderboardCache(rdb *redis.Client, prefix string, logger zerolog.Logger) *LeaderboardCache {
	if prefix == "" {
		prefix = "lb"
	}
	return &LeaderboardCache{
		rdb:    rdb,
		prefix: prefix,
		logger: logger.With().Str("component", "leaderboard_cache").Logger(),
	}
}

// Refresh replaces the mirrored leaderboard with entries.
func (c *LeaderboardCache) Refresh(ctx context.Context, entries []LeaderboardEntry) error {
	zKey := c.zsetKey()

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, zKey)
	for _, e := range entries {
		member := strconv.FormatInt(e.UserID, 10)
		pipe.ZAdd(ctx, zKey, redis.Z{Score: float64(e.TotalPoints), Member: member})
		pipe.HSet(ctx, c.metaKey(e.UserID), map[string]interface{}{
			"username":     e.Username,
			"display_name": e.DisplayName,
			"wins":         e.Wins,
			"games":        e.TotalGames,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("refresh leaderboard mirror: %w", err)
	}
	return nil
}

// Top reads the mirrored leaderboard, best first.
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	results, err := c.rdb.ZRevRangeWithScores(ctx, c.zsetKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard mirror: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, z := range results {
		userID, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			c.logger.Warn().Str("member", fmt.Sprint(z.Member)).Msg("skip malformed leaderboard member")
			continue
		}
		entry := LeaderboardEntry{UserID: userID, TotalPoints: int(z.Score)}

		meta, err := c.rdb.HGetAll(ctx, c.metaKey(userID)).Result()
		if err == nil {
			entry.Username = meta["username"]
			entry.DisplayName = meta["display_name"]
			entry.Wins, _ = strconv.Atoi(meta["wins"])
			entry.TotalGames, _ = strconv.Atoi(meta["games"])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *LeaderboardCache) zsetKey() string {
	return c.prefix + ":all_time"
}

func (c *LeaderboardCache) metaKey(userID int64) string {
	return fmt.Sprintf("%s:meta:%d", c.prefix, userID)
}
