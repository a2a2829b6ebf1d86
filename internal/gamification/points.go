package gamification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
)

var (
	ErrInvalidAmount = errors.New("deposit amount must be a positive integer")
	ErrInvalidQuiz   = errors.New("quiz result needs 0 <= score <= total and total > 0")
)

const (
	QuizCompletionPoints = 50
	PerfectQuizBonus     = 100
	CorrectAnswerPoints  = 10
)

// QuizCompletionReward returns base points plus the perfect-score bonus.
func QuizCompletionReward(correct, total int) int {
	if correct == total {
		return QuizCompletionPoints + PerfectQuizBonus
	}
	return QuizCompletionPoints
}

func validQuiz(correct, total int) bool {
	return total > 0 && correct >= 0 && correct <= total
}

// PointsLedger holds one user's point balance. It only ever grows.
type PointsLedger struct {
	records *Store
	log     *zap.Logger
	balance models.PointsBalance
}

func NewPointsLedger(ctx context.Context, records *Store, userID string, log *zap.Logger) *PointsLedger {
	balance := loadRecord(ctx, records, pointsKey(userID), models.PointsBalance{UserID: userID})
	balance.UserID = userID
	if balance.Total < 0 {
		balance.Total = 0
	}
	return &PointsLedger{
		records: records,
		log:     log.Named("points").With(zap.String("user_id", userID)),
		balance: balance,
	}
}

// Deposit adds amount to the balance and returns the new total.
func (p *PointsLedger) Deposit(ctx context.Context, amount int, reason string) (int, error) {
	if amount <= 0 {
		return p.balance.Total, fmt.Errorf("deposit %d (%s): %w", amount, reason, ErrInvalidAmount)
	}

	p.balance.Total += amount
	p.records.save(ctx, pointsKey(p.balance.UserID), p.balance)
	p.log.Debug("points awarded",
		zap.Int("amount", amount),
		zap.String("reason", reason),
		zap.Int("total", p.balance.Total))
	return p.balance.Total, nil
}

// AwardQuizCompletion deposits the completion reward for a finished quiz and
// returns the amount awarded.
func (p *PointsLedger) AwardQuizCompletion(ctx context.Context, correct, total int) (int, error) {
	if !validQuiz(correct, total) {
		return 0, fmt.Errorf("award quiz %d/%d: %w", correct, total, ErrInvalidQuiz)
	}
	reward := QuizCompletionReward(correct, total)
	if _, err := p.Deposit(ctx, reward, fmt.Sprintf("Quiz पूरा! %d/%d", correct, total)); err != nil {
		return 0, err
	}
	return reward, nil
}

func (p *PointsLedger) AwardCorrectAnswer(ctx context.Context) (int, error) {
	return p.Deposit(ctx, CorrectAnswerPoints, "सही जवाब!")
}

func (p *PointsLedger) Total() int {
	return p.balance.Total
}
