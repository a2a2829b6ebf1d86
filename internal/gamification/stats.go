package gamification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
)

const (
	fastSecondsPerQuestion = 10
	earlyMorningBeforeHour = 6
	lateNightFromHour      = 22
)

// StatsTracker keeps the aggregate snapshot badges are evaluated against.
type StatsTracker struct {
	userID   string
	records  *Store
	log      *zap.Logger
	snapshot models.StatsSnapshot
}

func NewStatsTracker(ctx context.Context, records *Store, userID string, log *zap.Logger) *StatsTracker {
	snap := loadRecord(ctx, records, statsKey(userID), models.StatsSnapshot{})
	if snap.SubjectQuizzes == nil {
		snap.SubjectQuizzes = make(map[string]int)
	}
	return &StatsTracker{
		userID:   userID,
		records:  records,
		log:      log.Named("stats").With(zap.String("user_id", userID)),
		snapshot: snap,
	}
}

// RecordQuiz folds a completed quiz into the snapshot. totalPoints and
// currentStreak are copied as given. The time-of-day buckets use now's hour.
func (t *StatsTracker) RecordQuiz(ctx context.Context, now time.Time, q models.QuizCompletion, totalPoints, currentStreak int) models.StatsSnapshot {
	s := &t.snapshot

	s.QuizzesCompleted++
	s.TotalPoints = totalPoints
	s.CurrentStreak = currentStreak

	if isPerfect(q.Score, q.TotalQuestions) {
		s.PerfectScores++
	}
	if isFastCompletion(q.TimeTakenSeconds, q.TotalQuestions) {
		s.FastCompletions++
	}
	if q.Subject != "" {
		s.SubjectQuizzes[q.Subject]++
	}

	switch hour := now.Hour(); {
	case hour < earlyMorningBeforeHour:
		s.EarlyMorningQuizzes++
	case hour >= lateNightFromHour:
		s.LateNightQuizzes++
	}

	t.records.save(ctx, statsKey(t.userID), t.snapshot)
	return t.Snapshot()
}

// isFastCompletion reports an average under ten seconds per question. A zero
// time means the duration was not measured.
func isFastCompletion(seconds float64, total int) bool {
	return total > 0 && seconds > 0 && seconds/float64(total) < fastSecondsPerQuestion
}

// Snapshot returns a copy safe to hand to callers.
func (t *StatsTracker) Snapshot() models.StatsSnapshot {
	out := t.snapshot
	out.SubjectQuizzes = make(map[string]int, len(t.snapshot.SubjectQuizzes))
	for k, v := range t.snapshot.SubjectQuizzes {
		out.SubjectQuizzes[k] = v
	}
	return out
}
