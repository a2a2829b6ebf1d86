package gamification

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
)

// Badges is the badge catalog, in evaluation and display order. A badge
// unlocks once its metric reaches Threshold.
var Badges = []models.BadgeDefinition{
	{ID: "first_quiz", Name: "पहला कदम", Icon: "🎯", Description: "पहली Quiz पूरी की", Metric: models.StatQuizzesCompleted, Threshold: 1},
	{ID: "quiz_master_5", Name: "Quiz Master", Icon: "📚", Description: "5 Quiz पूरी की", Metric: models.StatQuizzesCompleted, Threshold: 5},
	{ID: "quiz_legend_20", Name: "Quiz Legend", Icon: "👑", Description: "20 Quiz पूरी की", Metric: models.StatQuizzesCompleted, Threshold: 20},
	{ID: "perfect_score", Name: "परफेक्ट स्कोर", Icon: "💯", Description: "100% स्कोर हासिल किया", Metric: models.StatPerfectScores, Threshold: 1},
	{ID: "speed_demon", Name: "तेज़ दिमाग", Icon: "⚡", Description: "10 सेकंड/सवाल से कम समय", Metric: models.StatFastCompletions, Threshold: 1},
	{ID: "streak_3", Name: "3 दिन की लकीर", Icon: "🔥", Description: "3 दिन लगातार पढ़ाई", Metric: models.StatCurrentStreak, Threshold: 3},
	{ID: "streak_7", Name: "एक हफ्ता", Icon: "🌟", Description: "7 दिन लगातार पढ़ाई", Metric: models.StatCurrentStreak, Threshold: 7},
	{ID: "streak_30", Name: "महीना पूरा", Icon: "🏆", Description: "30 दिन लगातार पढ़ाई", Metric: models.StatCurrentStreak, Threshold: 30},
	{ID: "points_500", Name: "पॉइंट्स कलेक्टर", Icon: "💰", Description: "500 अंक जमा किए", Metric: models.StatTotalPoints, Threshold: 500},
	{ID: "points_1000", Name: "पॉइंट्स किंग", Icon: "👑", Description: "1000 अंक जमा किए", Metric: models.StatTotalPoints, Threshold: 1000},
	{ID: "physics_master", Name: "भौतिकी विशेषज्ञ", Icon: "⚛️", Description: "Physics में 10 Quiz पूरी की", Metric: models.StatSubjectQuizzes, Subject: "physics", Threshold: 10},
	{ID: "chemistry_master", Name: "रसायन विशेषज्ञ", Icon: "🧪", Description: "Chemistry में 10 Quiz पूरी की", Metric: models.StatSubjectQuizzes, Subject: "chemistry", Threshold: 10},
	{ID: "biology_master", Name: "जीव विज्ञान विशेषज्ञ", Icon: "🧬", Description: "Biology में 10 Quiz पूरी की", Metric: models.StatSubjectQuizzes, Subject: "biology", Threshold: 10},
	{ID: "early_bird", Name: "सुबह का तारा", Icon: "🌅", Description: "सुबह 6 बजे से पहले Quiz ली", Metric: models.StatEarlyMorning, Threshold: 1},
	{ID: "night_owl", Name: "रात का उल्लू", Icon: "🦉", Description: "रात 10 बजे के बाद Quiz ली", Metric: models.StatLateNight, Threshold: 1},
}

// StatValue reads the snapshot counter a badge metric refers to. Subjects
// that were never tallied count as zero.
func StatValue(metric models.StatMetric, subject string, s *models.StatsSnapshot) int {
	switch metric {
	case models.StatQuizzesCompleted:
		return s.QuizzesCompleted
	case models.StatPerfectScores:
		return s.PerfectScores
	case models.StatFastCompletions:
		return s.FastCompletions
	case models.StatCurrentStreak:
		return s.CurrentStreak
	case models.StatTotalPoints:
		return s.TotalPoints
	case models.StatSubjectQuizzes:
		return s.SubjectQuizzes[subject]
	case models.StatEarlyMorning:
		return s.EarlyMorningQuizzes
	case models.StatLateNight:
		return s.LateNightQuizzes
	default:
		return 0
	}
}

// BadgeEngine holds one user's unlocked badges. Unlocks are permanent.
type BadgeEngine struct {
	records *Store
	log     *zap.Logger
	catalog []models.BadgeDefinition
	state   models.BadgeState
}

func NewBadgeEngine(ctx context.Context, records *Store, userID string, log *zap.Logger) *BadgeEngine {
	st := loadRecord(ctx, records, badgesKey(userID), models.BadgeState{UserID: userID})
	st.UserID = userID
	if st.UnlockedIDs == nil {
		st.UnlockedIDs = models.NewStringSet()
	}
	return &BadgeEngine{
		records: records,
		log:     log.Named("badges").With(zap.String("user_id", userID)),
		catalog: Badges,
		state:   st,
	}
}

// Evaluate unlocks every badge whose threshold stats now meet and returns the
// newly unlocked ones in catalog order.
func (b *BadgeEngine) Evaluate(ctx context.Context, stats models.StatsSnapshot) []models.BadgeDefinition {
	var unlocked []models.BadgeDefinition
	for _, badge := range b.catalog {
		if b.state.UnlockedIDs.Has(badge.ID) {
			continue
		}
		if StatValue(badge.Metric, badge.Subject, &stats) >= badge.Threshold {
			b.state.UnlockedIDs.Add(badge.ID)
			unlocked = append(unlocked, badge)
			b.log.Info("badge unlocked", zap.String("badge", badge.ID))
		}
	}

	if len(unlocked) > 0 {
		b.records.save(ctx, badgesKey(b.state.UserID), b.state)
	}
	return unlocked
}

func (b *BadgeEngine) IsUnlocked(id string) bool {
	return b.state.UnlockedIDs.Has(id)
}

// Statuses lists every catalog badge with its unlock flag.
func (b *BadgeEngine) Statuses() []models.BadgeStatus {
	out := make([]models.BadgeStatus, 0, len(b.catalog))
	for _, badge := range b.catalog {
		out = append(out, models.BadgeStatus{Badge: badge, Unlocked: b.state.UnlockedIDs.Has(badge.ID)})
	}
	return out
}

func (b *BadgeEngine) UnlockedCount() int {
	return b.state.UnlockedIDs.Len()
}

func (b *BadgeEngine) TotalCount() int {
	return len(b.catalog)
}

func (b *BadgeEngine) Summary() models.BadgeSummary {
	return models.BadgeSummary{
		Unlocked: b.UnlockedCount(),
		Total:    b.TotalCount(),
		Badges:   b.Statuses(),
	}
}
