package gamification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
)

// Challenges is the catalog of daily and weekly challenges, in evaluation order.
// Every id starts with its scope's prefix so a reset can clear one scope.
var Challenges = []models.ChallengeDefinition{
	{ID: "daily_3_quizzes", Name: "आज 3 Quiz लो", Icon: "🎯", Scope: models.ScopeDaily, Metric: models.MetricQuizzesToday, Target: 3, RewardPoints: 100},
	{ID: "daily_score_80", Name: "80% से ज्यादा स्कोर करो", Icon: "⭐", Scope: models.ScopeDaily, Metric: models.MetricHighScoresToday, Target: 1, RewardPoints: 50},
	{ID: "daily_perfect", Name: "एक Perfect Score (100%)", Icon: "💯", Scope: models.ScopeDaily, Metric: models.MetricPerfectScoresToday, Target: 1, RewardPoints: 150},
	{ID: "weekly_15_quizzes", Name: "इस हफ्ते 15 Quiz", Icon: "📚", Scope: models.ScopeWeekly, Metric: models.MetricQuizzesThisWeek, Target: 15, RewardPoints: 300},
	{ID: "weekly_all_subjects", Name: "सभी विषयों में Quiz लो", Icon: "🌈", Scope: models.ScopeWeekly, Metric: models.MetricSubjectsThisWeek, Target: 4, RewardPoints: 200},
}

// QuizResult is the part of a completed quiz the challenge engine counts.
type QuizResult struct {
	Score          int
	TotalQuestions int
	Subject        string
}

// isHighScore reports score/total >= 80% without floating point.
func isHighScore(score, total int) bool {
	return total > 0 && score*5 >= total*4
}

func isPerfect(score, total int) bool {
	return total > 0 && score == total
}

// ChallengeMetricValue reads the counter a challenge metric refers to.
func ChallengeMetricValue(metric models.ChallengeMetric, st *models.ChallengeState) int {
	switch metric {
	case models.MetricQuizzesToday:
		return st.Daily.QuizzesToday
	case models.MetricHighScoresToday:
		return st.Daily.HighScoresToday
	case models.MetricPerfectScoresToday:
		return st.Daily.PerfectScoresToday
	case models.MetricQuizzesThisWeek:
		return st.Weekly.QuizzesThisWeek
	case models.MetricSubjectsThisWeek:
		return st.Weekly.SubjectsThisWeek.Len()
	default:
		return 0
	}
}

// ChallengeEngine tracks one user's progress toward the challenge catalog.
type ChallengeEngine struct {
	userID  string
	records *Store
	log     *zap.Logger
	catalog []models.ChallengeDefinition
	state   models.ChallengeState
}

// NewChallengeEngine loads the user's challenge state and applies any day or
// week rollover due at now.
func NewChallengeEngine(ctx context.Context, records *Store, userID string, now time.Time, log *zap.Logger) *ChallengeEngine {
	st := loadRecord(ctx, records, challengesKey(userID), models.ChallengeState{})
	if st.CompletedIDs == nil {
		st.CompletedIDs = models.NewStringSet()
	}
	if st.Weekly.SubjectsThisWeek == nil {
		st.Weekly.SubjectsThisWeek = models.NewStringSet()
	}

	e := &ChallengeEngine{
		userID:  userID,
		records: records,
		log:     log.Named("challenges").With(zap.String("user_id", userID)),
		catalog: Challenges,
		state:   st,
	}
	if e.rollover(now) {
		e.persist(ctx)
	}
	return e
}

// rollover zeroes the counters and clears the completed ids of every scope
// whose marker differs from now's. It reports whether anything changed.
func (e *ChallengeEngine) rollover(now time.Time) bool {
	changed := false

	if day := CalendarDay(now); e.state.LastResetDay != day {
		e.state.Daily = models.DailyProgress{}
		e.dropCompleted(models.ScopeDaily)
		e.log.Debug("daily challenges reset", zap.String("from", e.state.LastResetDay), zap.String("to", day))
		e.state.LastResetDay = day
		changed = true
	}

	if week := ISOWeek(now); e.state.LastResetWeek != week {
		e.state.Weekly = models.WeeklyProgress{SubjectsThisWeek: models.NewStringSet()}
		e.dropCompleted(models.ScopeWeekly)
		e.log.Debug("weekly challenges reset", zap.String("from", e.state.LastResetWeek), zap.String("to", week))
		e.state.LastResetWeek = week
		changed = true
	}

	return changed
}

func (e *ChallengeEngine) dropCompleted(scope models.ChallengeScope) {
	prefix := scope.Prefix()
	e.state.CompletedIDs.RemoveFunc(func(id string) bool {
		return strings.HasPrefix(id, prefix)
	})
}

func (e *ChallengeEngine) persist(ctx context.Context) {
	e.records.save(ctx, challengesKey(e.userID), e.state)
}

// RecordQuizCompletion counts a finished quiz and returns the challenges it
// completed, in catalog order. Each challenge completes at most once per
// period.
func (e *ChallengeEngine) RecordQuizCompletion(ctx context.Context, now time.Time, q QuizResult) ([]models.ChallengeDefinition, error) {
	if !validQuiz(q.Score, q.TotalQuestions) {
		return nil, fmt.Errorf("record quiz %d/%d: %w", q.Score, q.TotalQuestions, ErrInvalidQuiz)
	}

	e.rollover(now)

	e.state.Daily.QuizzesToday++
	e.state.Weekly.QuizzesThisWeek++
	if isHighScore(q.Score, q.TotalQuestions) {
		e.state.Daily.HighScoresToday++
	}
	if isPerfect(q.Score, q.TotalQuestions) {
		e.state.Daily.PerfectScoresToday++
	}
	if q.Subject != "" {
		e.state.Weekly.SubjectsThisWeek.Add(q.Subject)
	}

	var completed []models.ChallengeDefinition
	for _, c := range e.catalog {
		if e.state.CompletedIDs.Has(c.ID) {
			continue
		}
		if ChallengeMetricValue(c.Metric, &e.state) >= c.Target {
			e.state.CompletedIDs.Add(c.ID)
			completed = append(completed, c)
			e.log.Info("challenge completed", zap.String("challenge", c.ID))
		}
	}

	e.persist(ctx)
	return completed, nil
}

// Progress reports every catalog challenge against its target as of now.
func (e *ChallengeEngine) Progress(ctx context.Context, now time.Time) []models.ChallengeProgress {
	if e.rollover(now) {
		e.persist(ctx)
	}

	out := make([]models.ChallengeProgress, 0, len(e.catalog))
	for _, c := range e.catalog {
		current := ChallengeMetricValue(c.Metric, &e.state)
		percent := 100
		if c.Target > 0 && current < c.Target {
			percent = current * 100 / c.Target
		}
		out = append(out, models.ChallengeProgress{
			Challenge: c,
			Current:   current,
			Completed: e.state.CompletedIDs.Has(c.ID),
			Percent:   percent,
		})
	}
	return out
}

// State returns a copy of the persisted state.
func (e *ChallengeEngine) State() models.ChallengeState {
	st := e.state
	st.CompletedIDs = models.NewStringSet(e.state.CompletedIDs.Sorted()...)
	st.Weekly.SubjectsThisWeek = models.NewStringSet(e.state.Weekly.SubjectsThisWeek.Sorted()...)
	return st
}
