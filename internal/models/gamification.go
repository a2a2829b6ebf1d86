package models

import "time"

// ── Persisted Records ─────────────────────────────────────

type PointsBalance struct {
	UserID string `json:"user_id"`
	Total  int    `json:"total"`
}

type StreakRecord struct {
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastActiveDay string `json:"last_active_day,omitempty"`
}

type DailyProgress struct {
	QuizzesToday       int `json:"quizzes_today"`
	HighScoresToday    int `json:"high_scores_today"`
	PerfectScoresToday int `json:"perfect_scores_today"`
}

type WeeklyProgress struct {
	QuizzesThisWeek  int       `json:"quizzes_this_week"`
	SubjectsThisWeek StringSet `json:"subjects_this_week"`
}

type ChallengeState struct {
	LastResetDay  string         `json:"last_reset_day"`
	LastResetWeek string         `json:"last_reset_week"`
	CompletedIDs  StringSet      `json:"completed_ids"`
	Daily         DailyProgress  `json:"daily_progress"`
	Weekly        WeeklyProgress `json:"weekly_progress"`
}

type BadgeState struct {
	UserID      string    `json:"user_id"`
	UnlockedIDs StringSet `json:"unlocked_ids"`
}

type StatsSnapshot struct {
	QuizzesCompleted    int            `json:"quizzes_completed"`
	PerfectScores       int            `json:"perfect_scores"`
	FastCompletions     int            `json:"fast_completions"`
	TotalPoints         int            `json:"total_points"`
	CurrentStreak       int            `json:"current_streak"`
	SubjectQuizzes      map[string]int `json:"subject_quizzes"`
	EarlyMorningQuizzes int            `json:"early_morning_quizzes"`
	LateNightQuizzes    int            `json:"late_night_quizzes"`
}

type LeaderboardEntry struct {
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	Points        int       `json:"points"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// ── Catalog Definitions ───────────────────────────────────

type ChallengeScope string

const (
	ScopeDaily  ChallengeScope = "daily"
	ScopeWeekly ChallengeScope = "weekly"
)

// Prefix is the id prefix shared by every challenge of the scope.
func (s ChallengeScope) Prefix() string {
	return string(s) + "_"
}

type ChallengeMetric string

const (
	MetricQuizzesToday       ChallengeMetric = "quizzes_today"
	MetricHighScoresToday    ChallengeMetric = "high_scores_today"
	MetricPerfectScoresToday ChallengeMetric = "perfect_scores_today"
	MetricQuizzesThisWeek    ChallengeMetric = "quizzes_this_week"
	MetricSubjectsThisWeek   ChallengeMetric = "subjects_this_week"
)

type ChallengeDefinition struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Icon         string          `json:"icon"`
	Scope        ChallengeScope  `json:"scope"`
	Metric       ChallengeMetric `json:"metric"`
	Target       int             `json:"target"`
	RewardPoints int             `json:"reward_points"`
}

type StatMetric string

const (
	StatQuizzesCompleted StatMetric = "quizzes_completed"
	StatPerfectScores    StatMetric = "perfect_scores"
	StatFastCompletions  StatMetric = "fast_completions"
	StatCurrentStreak    StatMetric = "current_streak"
	StatTotalPoints      StatMetric = "total_points"
	StatSubjectQuizzes   StatMetric = "subject_quizzes"
	StatEarlyMorning     StatMetric = "early_morning_quizzes"
	StatLateNight        StatMetric = "late_night_quizzes"
)

type BadgeDefinition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Icon        string     `json:"icon"`
	Description string     `json:"description"`
	Metric      StatMetric `json:"metric"`
	Subject     string     `json:"subject,omitempty"` // only for StatSubjectQuizzes
	Threshold   int        `json:"threshold"`
}

// ── Event Inputs ──────────────────────────────────────────

type QuizCompletion struct {
	Score            int     `json:"score" validate:"gte=0"`
	TotalQuestions   int     `json:"total_questions" validate:"gt=0"`
	Subject          string  `json:"subject,omitempty"`
	TimeTakenSeconds float64 `json:"time_taken_seconds" validate:"gte=0"`
}

type AnswerSelectedRequest struct {
	Correct bool `json:"correct"`
}

// ── Response Types ────────────────────────────────────────

type RewardSummary struct {
	PointsAwarded            int                   `json:"points_awarded"`
	QuizPoints               int                   `json:"quiz_points"`
	ChallengePoints          int                   `json:"challenge_points"`
	TotalPoints              int                   `json:"total_points"`
	CurrentStreak            int                   `json:"current_streak"`
	NewlyCompletedChallenges []ChallengeDefinition `json:"newly_completed_challenges"`
	NewlyUnlockedBadges      []BadgeDefinition     `json:"newly_unlocked_badges"`
}

type AnswerFeedback struct {
	Correct       bool `json:"correct"`
	PointsAwarded int  `json:"points_awarded"`
	TotalPoints   int  `json:"total_points"`
}

type StreakInfo struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type BadgeStatus struct {
	Badge    BadgeDefinition `json:"badge"`
	Unlocked bool            `json:"unlocked"`
}

type BadgeSummary struct {
	Unlocked int           `json:"unlocked"`
	Total    int           `json:"total"`
	Badges   []BadgeStatus `json:"badges"`
}

type ChallengeProgress struct {
	Challenge ChallengeDefinition `json:"challenge"`
	Current   int                 `json:"current"`
	Completed bool                `json:"completed"`
	Percent   int                 `json:"percent"`
}

type LeaderboardRow struct {
	Rank          int    `json:"rank"`
	Medal         string `json:"medal,omitempty"` // top three only
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	Points        int    `json:"points"`
	IsCurrentUser bool   `json:"is_current_user"`
}

type LeaderboardResponse struct {
	Entries     []LeaderboardRow `json:"entries"`
	CurrentUser *LeaderboardRow  `json:"current_user,omitempty"`
}

type ProgressResponse struct {
	User        User                `json:"user"`
	TotalPoints int                 `json:"total_points"`
	Streak      StreakInfo          `json:"streak"`
	Badges      BadgeSummary        `json:"badges"`
	Challenges  []ChallengeProgress `json:"challenges"`
	Leaderboard LeaderboardResponse `json:"leaderboard"`
	Stats       StatsSnapshot       `json:"stats"`
}
