// Package quiz grades quiz sessions and turns their answers and submissions
// into progression events.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/gamification"
	"github.com/hamar-padhai/progression/internal/models"
)

var (
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrQuestionNotFound = errors.New("question index out of range")
	ErrInvalidOption    = errors.New("selected option out of range")
)

const unanswered = -1

// Events delivers progression events for a user. *gamification.Runner
// satisfies it.
type Events interface {
	Do(ctx context.Context, userID string, fn func(svc *gamification.Service, now time.Time) error) error
}

type session struct {
	id        string
	userID    string
	subject   string
	questions []models.QuizQuestion
	answers   []int
	startedAt time.Time
}

func (s *session) correct() int {
	n := 0
	for i, q := range s.questions {
		if s.answers[i] == q.Correct {
			n++
		}
	}
	return n
}

func (s *session) answered() int {
	n := 0
	for _, a := range s.answers {
		if a != unanswered {
			n++
		}
	}
	return n
}

func (s *session) view() models.QuizSession {
	return models.QuizSession{
		ID:             s.id,
		Subject:        s.subject,
		TotalQuestions: len(s.questions),
		Answered:       s.answered(),
		Correct:        s.correct(),
		StartedAt:      s.startedAt,
	}
}

// Manager holds open quiz sessions in memory. A session ends when it is
// submitted.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	events   Events
	clock    func() time.Time
	log      *zap.Logger
}

func NewManager(events Events, clock func() time.Time, log *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		events:   events,
		clock:    clock,
		log:      log.Named("quiz"),
	}
}

// Start opens a session for userID over the given answer key.
func (m *Manager) Start(userID string, req models.StartQuizRequest) models.QuizSession {
	s := &session{
		id:        uuid.NewString(),
		userID:    userID,
		subject:   req.Subject,
		questions: append([]models.QuizQuestion(nil), req.Questions...),
		answers:   make([]int, len(req.Questions)),
		startedAt: m.clock(),
	}
	for i := range s.answers {
		s.answers[i] = unanswered
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.log.Info("quiz started",
		zap.String("user_id", userID),
		zap.String("session_id", s.id),
		zap.String("subject", s.subject),
		zap.Int("questions", len(s.questions)))
	return s.view()
}

func (m *Manager) Get(userID, sessionID string) (models.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return models.QuizSession{}, err
	}
	return s.view(), nil
}

// Answer grades one answer. Each question takes a single answer; a correct
// one is rewarded immediately.
func (m *Manager) Answer(ctx context.Context, userID, sessionID string, req models.SubmitAnswerRequest) (models.AnswerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return models.AnswerResult{}, err
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(s.questions) {
		return models.AnswerResult{}, fmt.Errorf("answer %d of %d: %w", req.QuestionIndex, len(s.questions), ErrQuestionNotFound)
	}
	q := s.questions[req.QuestionIndex]
	if req.SelectedOption < 0 || req.SelectedOption >= q.Options {
		return models.AnswerResult{}, fmt.Errorf("option %d of %d: %w", req.SelectedOption, q.Options, ErrInvalidOption)
	}
	if s.answers[req.QuestionIndex] != unanswered {
		return models.AnswerResult{}, ErrAlreadyAnswered
	}

	correct := req.SelectedOption == q.Correct
	var feedback models.AnswerFeedback
	err = m.events.Do(ctx, userID, func(svc *gamification.Service, _ time.Time) error {
		feedback = svc.OnAnswerSelected(ctx, correct)
		return nil
	})
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("answer selected: %w", err)
	}
	s.answers[req.QuestionIndex] = req.SelectedOption

	return models.AnswerResult{
		QuestionIndex: req.QuestionIndex,
		CorrectOption: q.Correct,
		Feedback:      feedback,
	}, nil
}

// Submit closes the session and completes the quiz. Unanswered questions
// count as skipped; the time taken is whole seconds since Start.
func (m *Manager) Submit(ctx context.Context, userID, sessionID string) (models.QuizOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return models.QuizOutcome{}, err
	}

	elapsed := int(m.clock().Sub(s.startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	outcome := models.QuizOutcome{
		SessionID:        s.id,
		Score:            s.correct(),
		TotalQuestions:   len(s.questions),
		Skipped:          len(s.questions) - s.answered(),
		TimeTakenSeconds: elapsed,
	}

	err = m.events.Do(ctx, userID, func(svc *gamification.Service, now time.Time) error {
		outcome.Rewards = svc.OnQuizCompleted(ctx, now, models.QuizCompletion{
			Score:            outcome.Score,
			TotalQuestions:   outcome.TotalQuestions,
			Subject:          s.subject,
			TimeTakenSeconds: float64(elapsed),
		})
		return nil
	})
	if err != nil {
		return models.QuizOutcome{}, fmt.Errorf("quiz completed: %w", err)
	}
	delete(m.sessions, s.id)

	m.log.Info("quiz submitted",
		zap.String("user_id", userID),
		zap.String("session_id", s.id),
		zap.Int("score", outcome.Score),
		zap.Int("total_questions", outcome.TotalQuestions),
		zap.Int("time_taken_seconds", elapsed))
	return outcome, nil
}

// lookup must be called with mu held. Sessions of other users are reported
// as missing.
func (m *Manager) lookup(userID, sessionID string) (*session, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.userID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}
