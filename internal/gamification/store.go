package gamification

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/store"
)

// LeaderboardKey is shared by every user known to the store.
const LeaderboardKey = "global_leaderboard"

func pointsKey(userID string) string     { return "points_" + userID }
func badgesKey(userID string) string     { return "badges_" + userID }
func streakKey(userID string) string     { return "streak_" + userID }
func challengesKey(userID string) string { return "challenges_" + userID }
func statsKey(userID string) string      { return "stats_" + userID }

// Store reads and writes progression records on top of a key-value backend.
// Failures never reach callers: a record that cannot be read or decoded is
// replaced by its default, and a failed write is logged and left for the next
// mutation of the same record to rewrite.
type Store struct {
	kv  store.Store
	log *zap.Logger
}

func NewStore(kv store.Store, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log.Named("records")}
}

// loadRecord returns the record under key, or def when it is absent or
// unreadable.
func loadRecord[T any](ctx context.Context, s *Store, key string, def T) T {
	var out T
	found, err := store.LoadJSON(ctx, s.kv, key, &out)
	switch {
	case errors.Is(err, store.ErrMalformed):
		s.log.Warn("malformed record, using default", zap.String("key", key), zap.Error(err))
		return def
	case err != nil:
		s.log.Warn("failed to read record, using default", zap.String("key", key), zap.Error(err))
		return def
	case !found:
		return def
	}
	return out
}

// save persists v under key and reports whether the write succeeded.
func (s *Store) save(ctx context.Context, key string, v any) bool {
	if err := store.SaveJSON(ctx, s.kv, key, v); err != nil {
		s.log.Warn("failed to persist record", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
