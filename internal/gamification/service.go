package gamification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

// Service coordinates one user's progression engines. It is not safe for
// concurrent use; callers deliver events one at a time.
type Service struct {
	user        models.User
	points      *PointsLedger
	streak      *StreakTracker
	challenges  *ChallengeEngine
	badges      *BadgeEngine
	stats       *StatsTracker
	leaderboard *Leaderboard
	log         *zap.Logger
}

func NewService(
	user models.User,
	points *PointsLedger,
	streak *StreakTracker,
	challenges *ChallengeEngine,
	badges *BadgeEngine,
	stats *StatsTracker,
	leaderboard *Leaderboard,
	log *zap.Logger,
) *Service {
	return &Service{
		user:        user,
		points:      points,
		streak:      streak,
		challenges:  challenges,
		badges:      badges,
		stats:       stats,
		leaderboard: leaderboard,
		log:         log.Named("progression").With(zap.String("user_id", user.ID)),
	}
}

// Open loads every engine for user from kv.
func Open(ctx context.Context, kv store.Store, user models.User, now time.Time, log *zap.Logger) *Service {
	records := NewStore(kv, log)
	return openUser(ctx, records, user, now, NewLeaderboard(ctx, records, log), log)
}

// openUser loads user's own engines and attaches them to a shared board.
func openUser(ctx context.Context, records *Store, user models.User, now time.Time, board *Leaderboard, log *zap.Logger) *Service {
	return NewService(
		user,
		NewPointsLedger(ctx, records, user.ID, log),
		NewStreakTracker(ctx, records, user.ID, log),
		NewChallengeEngine(ctx, records, user.ID, now, log),
		NewBadgeEngine(ctx, records, user.ID, log),
		NewStatsTracker(ctx, records, user.ID, log),
		board,
		log,
	)
}

// ── Quiz Completion ─────────────────────────────────────

// OnQuizCompleted applies a finished quiz to every engine in a fixed order:
// points, streak, challenges (with their bonus points), stats, badges and the
// leaderboard. A step that rejects its input is logged and skipped; the
// remaining steps still run and nothing is rolled back.
func (s *Service) OnQuizCompleted(ctx context.Context, now time.Time, q models.QuizCompletion) models.RewardSummary {
	summary := models.RewardSummary{
		NewlyCompletedChallenges: []models.ChallengeDefinition{},
		NewlyUnlockedBadges:      []models.BadgeDefinition{},
	}

	quizPoints, err := s.points.AwardQuizCompletion(ctx, q.Score, q.TotalQuestions)
	if err != nil {
		s.log.Warn("skipping quiz completion points", zap.Error(err))
	}
	summary.QuizPoints = quizPoints

	summary.CurrentStreak = s.streak.RecordActivity(ctx, now)

	completed, err := s.challenges.RecordQuizCompletion(ctx, now, QuizResult{
		Score:          q.Score,
		TotalQuestions: q.TotalQuestions,
		Subject:        q.Subject,
	})
	if err != nil {
		s.log.Warn("skipping challenge progress", zap.Error(err))
	}
	for _, c := range completed {
		if _, err := s.points.Deposit(ctx, c.RewardPoints, "Challenge: "+c.Name); err != nil {
			s.log.Warn("skipping challenge reward", zap.String("challenge", c.ID), zap.Error(err))
			continue
		}
		summary.ChallengePoints += c.RewardPoints
		summary.NewlyCompletedChallenges = append(summary.NewlyCompletedChallenges, c)
	}

	snapshot := s.stats.RecordQuiz(ctx, now, q, s.points.Total(), summary.CurrentStreak)

	if unlocked := s.badges.Evaluate(ctx, snapshot); len(unlocked) > 0 {
		summary.NewlyUnlockedBadges = unlocked
	}

	s.leaderboard.Upsert(ctx, s.user.ID, s.user.Name, s.points.Total(), now)

	summary.PointsAwarded = summary.QuizPoints + summary.ChallengePoints
	summary.TotalPoints = s.points.Total()

	s.log.Info("quiz completed",
		zap.Int("score", q.Score),
		zap.Int("total_questions", q.TotalQuestions),
		zap.String("subject", q.Subject),
		zap.Int("points_awarded", summary.PointsAwarded),
		zap.Int("challenges", len(summary.NewlyCompletedChallenges)),
		zap.Int("badges", len(summary.NewlyUnlockedBadges)))

	return summary
}

// ── Per-Answer Reward ───────────────────────────────────

// OnAnswerSelected awards the per-answer reward for a correct answer. Wrong
// answers are reported back without points.
func (s *Service) OnAnswerSelected(ctx context.Context, correct bool) models.AnswerFeedback {
	feedback := models.AnswerFeedback{Correct: correct}
	if correct {
		if _, err := s.points.AwardCorrectAnswer(ctx); err != nil {
			s.log.Warn("skipping answer reward", zap.Error(err))
		} else {
			feedback.PointsAwarded = CorrectAnswerPoints
		}
	}
	feedback.TotalPoints = s.points.Total()
	return feedback
}

// ── Render Outputs ──────────────────────────────────────

func (s *Service) User() models.User {
	return s.user
}

func (s *Service) TotalPoints() int {
	return s.points.Total()
}

func (s *Service) Streak() models.StreakInfo {
	return s.streak.Info()
}

func (s *Service) Badges() models.BadgeSummary {
	return s.badges.Summary()
}

func (s *Service) Challenges(ctx context.Context, now time.Time) []models.ChallengeProgress {
	return s.challenges.Progress(ctx, now)
}

func (s *Service) Leaderboard(n int) models.LeaderboardResponse {
	return s.leaderboard.Standings(s.user.ID, n)
}

func (s *Service) Stats() models.StatsSnapshot {
	return s.stats.Snapshot()
}

// Progress gathers every render output for the user.
func (s *Service) Progress(ctx context.Context, now time.Time, standings int) models.ProgressResponse {
	return models.ProgressResponse{
		User:        s.user,
		TotalPoints: s.TotalPoints(),
		Streak:      s.Streak(),
		Badges:      s.Badges(),
		Challenges:  s.Challenges(ctx, now),
		Leaderboard: s.Leaderboard(standings),
		Stats:       s.Stats(),
	}
}
