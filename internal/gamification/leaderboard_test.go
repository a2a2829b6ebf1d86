package gamification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/store"
)

func newBoard(kv store.Store) *Leaderboard {
	return NewLeaderboard(context.Background(), newRecords(kv), zap.NewNop())
}

func points(b *Leaderboard) []int {
	var out []int
	for _, e := range b.TopN(b.Len()) {
		out = append(out, e.Points)
	}
	return out
}

func TestLeaderboardRanking(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	board := newBoard(store.NewMemoryStore())

	board.Upsert(ctx, "a", "Asha", 300, now)
	board.Upsert(ctx, "b", "Bablu", 500, now)
	assert.Equal(t, []int{500, 300}, points(board))

	// The leader moves up; order is unchanged.
	board.Upsert(ctx, "b", "Bablu", 600, now)
	assert.Equal(t, []int{600, 300}, points(board))

	// Overtaking re-sorts.
	board.Upsert(ctx, "a", "Asha", 700, now)
	assert.Equal(t, []int{700, 600}, points(board))

	rank, ok := board.RankOf("a")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
	rank, _ = board.RankOf("b")
	assert.Equal(t, 2, rank)

	_, ok = board.RankOf("nobody")
	assert.False(t, ok)
}

func TestLeaderboardTiesKeepOrder(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	board := newBoard(store.NewMemoryStore())

	for _, id := range []string{"a", "b", "c"} {
		board.Upsert(ctx, id, id, 100, now)
	}
	board.Upsert(ctx, "b", "b", 100, now.Add(1))

	var ids []string
	for _, e := range board.TopN(3) {
		ids = append(ids, e.UserID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestLeaderboardUpsertUpdatesNameAndTime(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	board := newBoard(store.NewMemoryStore())

	board.Upsert(ctx, "a", "छात्र_12", 50, now)
	board.Upsert(ctx, "a", "Asha", 70, now.Add(time.Hour))

	require.Equal(t, 1, board.Len())
	e := board.TopN(1)[0]
	assert.Equal(t, "Asha", e.UserName)
	assert.Equal(t, 70, e.Points)
	assert.True(t, e.LastUpdatedAt.Equal(now.Add(time.Hour)))
}

func TestLeaderboardTopN(t *testing.T) {
	ctx := context.Background()
	board := newBoard(store.NewMemoryStore())
	for i := 1; i <= 3; i++ {
		board.Upsert(ctx, fmt.Sprint(i), "u", i*10, at(2024, 3, 13, 10))
	}

	assert.Len(t, board.TopN(2), 2)
	assert.Len(t, board.TopN(10), 3)
	assert.Empty(t, board.TopN(0))
	assert.Empty(t, board.TopN(-1))
}

func TestLeaderboardRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	board := newBoard(kv)
	now := at(2024, 3, 13, 10)

	board.Upsert(ctx, "a", "Asha", 300, now)
	board.Upsert(ctx, "b", "Bablu", 500, now)

	reloaded := newBoard(kv)
	assert.Equal(t, board.TopN(10), reloaded.TopN(10))
}

func TestStandings(t *testing.T) {
	ctx := context.Background()
	board := newBoard(store.NewMemoryStore())
	now := at(2024, 3, 13, 10)

	for i := 1; i <= 12; i++ {
		board.Upsert(ctx, fmt.Sprintf("user_%02d", i), fmt.Sprintf("Student %d Kumar", i), 1000-i*10, now)
	}

	resp := board.Standings("user_12", 10)
	require.Len(t, resp.Entries, 10)
	require.NotNil(t, resp.CurrentUser)
	assert.Equal(t, 12, resp.CurrentUser.Rank)
	assert.True(t, resp.CurrentUser.IsCurrentUser)
	assert.Equal(t, "Student 12 Kumar", resp.CurrentUser.UserName)

	assert.Equal(t, "🥇", resp.Entries[0].Medal)
	assert.Equal(t, "🥈", resp.Entries[1].Medal)
	assert.Equal(t, "🥉", resp.Entries[2].Medal)
	assert.Empty(t, resp.Entries[3].Medal)
	assert.Equal(t, "Student 1 Kumar", resp.Entries[0].UserName, "names are shown as stored")

	inTop := board.Standings("user_02", 10)
	assert.Nil(t, inTop.CurrentUser)
	assert.True(t, inTop.Entries[1].IsCurrentUser)
	assert.False(t, inTop.Entries[0].IsCurrentUser)

	unknown := board.Standings("ghost", 0)
	assert.Len(t, unknown.Entries, DefaultStandingsSize)
	assert.Nil(t, unknown.CurrentUser)
}

func TestLeaderboardMalformedRecordStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, LeaderboardKey, []byte(`{"entries": true}`)))

	board := newBoard(kv)
	assert.Zero(t, board.Len())

	board.Upsert(ctx, "a", "Asha", 10, at(2024, 3, 13, 10))
	assert.Equal(t, 1, newBoard(kv).Len())
}
