package gamification

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
)

// DefaultStandingsSize is how many rows the leaderboard view shows.
const DefaultStandingsSize = 10

// Leaderboard is the ranked list of every user known to the store, sorted by
// points descending. Ties keep their previous relative order.
type Leaderboard struct {
	records *Store
	log     *zap.Logger
	entries []models.LeaderboardEntry
}

func NewLeaderboard(ctx context.Context, records *Store, log *zap.Logger) *Leaderboard {
	entries := loadRecord(ctx, records, LeaderboardKey, []models.LeaderboardEntry{})
	sortEntries(entries)
	return &Leaderboard{
		records: records,
		log:     log.Named("leaderboard"),
		entries: entries,
	}
}

func sortEntries(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
}

// Upsert sets the user's points and name, then re-sorts and persists.
func (l *Leaderboard) Upsert(ctx context.Context, userID, userName string, points int, now time.Time) {
	idx := l.indexOf(userID)
	if idx >= 0 {
		l.entries[idx].Points = points
		l.entries[idx].UserName = userName
		l.entries[idx].LastUpdatedAt = now
	} else {
		l.entries = append(l.entries, models.LeaderboardEntry{
			UserID:        userID,
			UserName:      userName,
			Points:        points,
			LastUpdatedAt: now,
		})
	}

	sortEntries(l.entries)
	l.records.save(ctx, LeaderboardKey, l.entries)
}

func (l *Leaderboard) indexOf(userID string) int {
	for i, e := range l.entries {
		if e.UserID == userID {
			return i
		}
	}
	return -1
}

// TopN returns up to n leading entries.
func (l *Leaderboard) TopN(n int) []models.LeaderboardEntry {
	if n < 0 {
		n = 0
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]models.LeaderboardEntry, n)
	copy(out, l.entries[:n])
	return out
}

// RankOf returns the user's 1-based rank. ok is false for unknown users.
func (l *Leaderboard) RankOf(userID string) (rank int, ok bool) {
	idx := l.indexOf(userID)
	if idx < 0 {
		return 0, false
	}
	return idx + 1, true
}

func (l *Leaderboard) Len() int {
	return len(l.entries)
}

// Standings renders the top n rows, flagging userID. When the user ranks
// below n their own row is returned separately in CurrentUser.
func (l *Leaderboard) Standings(userID string, n int) models.LeaderboardResponse {
	if n <= 0 {
		n = DefaultStandingsSize
	}

	top := l.TopN(n)
	resp := models.LeaderboardResponse{Entries: make([]models.LeaderboardRow, 0, len(top))}
	for i, e := range top {
		resp.Entries = append(resp.Entries, leaderboardRow(i+1, e, userID))
	}

	if rank, ok := l.RankOf(userID); ok && rank > n {
		row := leaderboardRow(rank, l.entries[rank-1], userID)
		resp.CurrentUser = &row
	}
	return resp
}

func leaderboardRow(rank int, e models.LeaderboardEntry, currentUserID string) models.LeaderboardRow {
	return models.LeaderboardRow{
		Rank:          rank,
		Medal:         rankMedal(rank),
		UserID:        e.UserID,
		UserName:      e.UserName,
		Points:        e.Points,
		IsCurrentUser: e.UserID == currentUserID,
	}
}

func rankMedal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}
