package gamification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

func newChallenges(kv store.Store, now time.Time) *ChallengeEngine {
	return NewChallengeEngine(context.Background(), newRecords(kv), "u1", now, zap.NewNop())
}

func TestScoreThresholds(t *testing.T) {
	tests := []struct {
		score, total  int
		high, perfect bool
	}{
		{5, 5, true, true},
		{4, 5, true, false},
		{8, 10, true, false},
		{3, 4, false, false},
		{7, 9, false, false},
		{0, 3, false, false},
		{0, 0, false, false},
	}

	for _, tt := range tests {
		if got := isHighScore(tt.score, tt.total); got != tt.high {
			t.Errorf("isHighScore(%d, %d) = %v, want %v", tt.score, tt.total, got, tt.high)
		}
		if got := isPerfect(tt.score, tt.total); got != tt.perfect {
			t.Errorf("isPerfect(%d, %d) = %v, want %v", tt.score, tt.total, got, tt.perfect)
		}
	}
}

func TestCatalogIDsCarryScopePrefix(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Challenges {
		assert.Truef(t, strings.HasPrefix(c.ID, c.Scope.Prefix()), "challenge %s must start with %s", c.ID, c.Scope.Prefix())
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		assert.Positive(t, c.Target)
		assert.Positive(t, c.RewardPoints)
		seen[c.ID] = true
	}
}

func TestPerfectQuizCompletesScoreChallenges(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	engine := newChallenges(store.NewMemoryStore(), now)

	done, err := engine.RecordQuizCompletion(ctx, now, QuizResult{Score: 5, TotalQuestions: 5, Subject: "physics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"daily_score_80", "daily_perfect"}, challengeIDs(done))
}

func TestThreeQuizChallengeCompletesOnce(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	engine := newChallenges(store.NewMemoryStore(), now)
	low := QuizResult{Score: 1, TotalQuestions: 5}

	for i := 0; i < 2; i++ {
		done, err := engine.RecordQuizCompletion(ctx, now, low)
		require.NoError(t, err)
		assert.Empty(t, done)
	}

	done, err := engine.RecordQuizCompletion(ctx, now.Add(time.Hour), low)
	require.NoError(t, err)
	assert.Equal(t, []string{"daily_3_quizzes"}, challengeIDs(done))
	assert.Equal(t, 100, done[0].RewardPoints)

	done, err = engine.RecordQuizCompletion(ctx, now.Add(2*time.Hour), low)
	require.NoError(t, err)
	assert.Empty(t, done, "a completed challenge is not returned again in the same day")
}

func TestDailyResetKeepsWeeklyState(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	// Tuesday and Wednesday of ISO week 2024-W11.
	yesterday := at(2024, 3, 12, 20)
	today := at(2024, 3, 13, 8)

	require.NoError(t, store.SaveJSON(ctx, kv, "challenges_u1", models.ChallengeState{
		LastResetDay:  CalendarDay(yesterday),
		LastResetWeek: ISOWeek(yesterday),
		CompletedIDs:  models.NewStringSet("daily_3_quizzes", "daily_score_80", "weekly_15_quizzes"),
		Daily:         models.DailyProgress{QuizzesToday: 5, HighScoresToday: 2, PerfectScoresToday: 0},
		Weekly:        models.WeeklyProgress{QuizzesThisWeek: 16, SubjectsThisWeek: models.NewStringSet("physics")},
	}))

	// Load without crossing midnight, then record on the next day.
	engine := newChallenges(kv, yesterday)
	done, err := engine.RecordQuizCompletion(ctx, today, QuizResult{Score: 1, TotalQuestions: 5, Subject: "biology"})
	require.NoError(t, err)
	assert.Empty(t, done, "stale daily counters must not complete anything")

	st := engine.State()
	assert.Equal(t, models.DailyProgress{QuizzesToday: 1}, st.Daily)
	assert.Equal(t, []string{"weekly_15_quizzes"}, st.CompletedIDs.Sorted())
	assert.Equal(t, 17, st.Weekly.QuizzesThisWeek)
	assert.Equal(t, []string{"biology", "physics"}, st.Weekly.SubjectsThisWeek.Sorted())
	assert.Equal(t, "2024-03-13", st.LastResetDay)
	assert.Equal(t, "2024-W11", st.LastResetWeek)
}

func TestWeeklyResetOnNewISOWeek(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	sunday := at(2024, 3, 17, 21)
	monday := at(2024, 3, 18, 7)

	engine := newChallenges(kv, sunday)
	for _, subject := range []string{"physics", "chemistry", "biology", "maths"} {
		_, err := engine.RecordQuizCompletion(ctx, sunday, QuizResult{Score: 0, TotalQuestions: 5, Subject: subject})
		require.NoError(t, err)
	}
	require.True(t, engine.State().CompletedIDs.Has("weekly_all_subjects"))

	reopened := newChallenges(kv, monday)
	st := reopened.State()
	assert.Equal(t, "2024-W12", st.LastResetWeek)
	assert.Zero(t, st.Weekly.QuizzesThisWeek)
	assert.Zero(t, st.Weekly.SubjectsThisWeek.Len())
	assert.Zero(t, st.CompletedIDs.Len())
}

func TestAllSubjectsNeedsDistinctSubjects(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	engine := newChallenges(store.NewMemoryStore(), now)

	var completed []string
	for _, subject := range []string{"physics", "physics", "", "chemistry", "biology", "chemistry", "maths"} {
		done, err := engine.RecordQuizCompletion(ctx, now, QuizResult{Score: 0, TotalQuestions: 4, Subject: subject})
		require.NoError(t, err)
		for _, c := range done {
			if c.Scope == models.ScopeWeekly {
				completed = append(completed, c.ID)
			}
		}
		if subject == "biology" {
			assert.Empty(t, completed, "three subjects are not enough")
		}
	}
	assert.Equal(t, []string{"weekly_all_subjects"}, completed)
}

func TestInvalidQuizLeavesChallengesUntouched(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	engine := newChallenges(store.NewMemoryStore(), now)
	before := engine.State()

	_, err := engine.RecordQuizCompletion(ctx, now, QuizResult{Score: 0, TotalQuestions: 0, Subject: "physics"})
	assert.ErrorIs(t, err, ErrInvalidQuiz)
	assert.Equal(t, before, engine.State())
}

func TestCompletedIDsOnlyGrowWithinPeriod(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	engine := newChallenges(store.NewMemoryStore(), now)

	prev := 0
	for score := 0; score <= 5; score++ {
		_, err := engine.RecordQuizCompletion(ctx, now, QuizResult{Score: score, TotalQuestions: 5})
		require.NoError(t, err)
		n := engine.State().CompletedIDs.Len()
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
	assert.Equal(t, 3, prev)
}

func TestChallengeProgress(t *testing.T) {
	ctx := context.Background()
	now := at(2024, 3, 13, 10)
	engine := newChallenges(store.NewMemoryStore(), now)

	for i := 0; i < 4; i++ {
		_, err := engine.RecordQuizCompletion(ctx, now, QuizResult{Score: 2, TotalQuestions: 5, Subject: "physics"})
		require.NoError(t, err)
	}

	progress := engine.Progress(ctx, now)
	require.Len(t, progress, len(Challenges))

	byID := map[string]models.ChallengeProgress{}
	for _, p := range progress {
		byID[p.Challenge.ID] = p
	}

	assert.Equal(t, 4, byID["daily_3_quizzes"].Current)
	assert.Equal(t, 100, byID["daily_3_quizzes"].Percent, "percent is clamped")
	assert.True(t, byID["daily_3_quizzes"].Completed)

	assert.Equal(t, 4, byID["weekly_15_quizzes"].Current)
	assert.Equal(t, 26, byID["weekly_15_quizzes"].Percent)
	assert.False(t, byID["weekly_15_quizzes"].Completed)

	assert.Equal(t, 1, byID["weekly_all_subjects"].Current)
	assert.Zero(t, byID["daily_perfect"].Percent)

	// Viewing progress the next day shows the reset counters.
	tomorrow := engine.Progress(ctx, now.AddDate(0, 0, 1))
	assert.Zero(t, tomorrow[0].Current)
	assert.False(t, tomorrow[0].Completed)
}

func TestChallengeStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	now := at(2024, 3, 13, 10)

	engine := newChallenges(kv, now)
	for _, subject := range []string{"physics", "chemistry"} {
		_, err := engine.RecordQuizCompletion(ctx, now, QuizResult{Score: 5, TotalQuestions: 5, Subject: subject})
		require.NoError(t, err)
	}

	reloaded := newChallenges(kv, now)
	assert.Equal(t, engine.State(), reloaded.State())
}

func TestChallengeMalformedRecordStartsFresh(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "challenges_u1", []byte(`{"completed_ids": 7}`)))

	now := at(2024, 3, 13, 10)
	st := newChallenges(kv, now).State()
	assert.Zero(t, st.CompletedIDs.Len())
	assert.Equal(t, CalendarDay(now), st.LastResetDay)
	assert.Equal(t, ISOWeek(now), st.LastResetWeek)
}
