package gamification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
)

// StreakTracker counts consecutive calendar days with activity.
type StreakTracker struct {
	records *Store
	log     *zap.Logger
	record  models.StreakRecord
}

func NewStreakTracker(ctx context.Context, records *Store, userID string, log *zap.Logger) *StreakTracker {
	rec := loadRecord(ctx, records, streakKey(userID), models.StreakRecord{UserID: userID})
	rec.UserID = userID
	normalizeStreak(&rec)
	return &StreakTracker{
		records: records,
		log:     log.Named("streak").With(zap.String("user_id", userID)),
		record:  rec,
	}
}

// normalizeStreak restores longest >= current >= 0 on a loaded record.
func normalizeStreak(rec *models.StreakRecord) {
	if rec.CurrentStreak < 0 {
		rec.CurrentStreak = 0
	}
	if rec.LongestStreak < rec.CurrentStreak {
		rec.LongestStreak = rec.CurrentStreak
	}
}

// RecordActivity marks now's calendar day as active and returns the current
// streak. Repeated calls on the same day change nothing.
func (t *StreakTracker) RecordActivity(ctx context.Context, now time.Time) int {
	today := CalendarDay(now)
	if t.record.LastActiveDay == today {
		return t.record.CurrentStreak
	}

	if t.record.LastActiveDay == PreviousDay(now) {
		t.record.CurrentStreak++
	} else {
		t.record.CurrentStreak = 1
	}

	t.record.LastActiveDay = today
	if t.record.CurrentStreak > t.record.LongestStreak {
		t.record.LongestStreak = t.record.CurrentStreak
	}

	t.records.save(ctx, streakKey(t.record.UserID), t.record)
	t.log.Debug("streak updated",
		zap.String("day", today),
		zap.Int("current", t.record.CurrentStreak),
		zap.Int("longest", t.record.LongestStreak))
	return t.record.CurrentStreak
}

func (t *StreakTracker) Current() int {
	return t.record.CurrentStreak
}

func (t *StreakTracker) Longest() int {
	return t.record.LongestStreak
}

func (t *StreakTracker) Info() models.StreakInfo {
	return models.StreakInfo{Current: t.record.CurrentStreak, Longest: t.record.LongestStreak}
}
