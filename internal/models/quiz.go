package models

import "time"

// QuizQuestion is the answer key for one question of a quiz session. The
// question text lives with the client; the server only needs to grade.
type QuizQuestion struct {
	ID      string `json:"id" validate:"required,max=64"`
	Options int    `json:"options" validate:"gte=2,lte=6"`
	Correct int    `json:"correct" validate:"gte=0,ltfield=Options"`
}

type StartQuizRequest struct {
	Subject   string         `json:"subject" validate:"omitempty,max=32"`
	Questions []QuizQuestion `json:"questions" validate:"required,min=1,max=100,dive"`
}

type SubmitAnswerRequest struct {
	QuestionIndex  int `json:"question_index" validate:"gte=0"`
	SelectedOption int `json:"selected_option" validate:"gte=0"`
}

type QuizSession struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject,omitempty"`
	TotalQuestions int       `json:"total_questions"`
	Answered       int       `json:"answered"`
	Correct        int       `json:"correct"`
	StartedAt      time.Time `json:"started_at"`
}

type AnswerResult struct {
	QuestionIndex int            `json:"question_index"`
	CorrectOption int            `json:"correct_option"`
	Feedback      AnswerFeedback `json:"feedback"`
}

type QuizOutcome struct {
	SessionID        string        `json:"session_id"`
	Score            int           `json:"score"`
	TotalQuestions   int           `json:"total_questions"`
	Skipped          int           `json:"skipped"`
	TimeTakenSeconds int           `json:"time_taken_seconds"`
	Rewards          RewardSummary `json:"rewards"`
}
