package gamification

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/auth"
	"github.com/hamar-padhai/progression/internal/middleware"
	"github.com/hamar-padhai/progression/internal/models"
)

type Handler struct {
	runner    *Runner
	standings int
	validate  *validator.Validate
	log       *zap.Logger
}

func NewHandler(runner *Runner, standings int, log *zap.Logger) *Handler {
	if standings <= 0 {
		standings = DefaultStandingsSize
	}
	return &Handler{
		runner:    runner,
		standings: standings,
		validate:  validator.New(),
		log:       log.Named("http"),
	}
}

// ── Progress ────────────────────────────────────────────

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, func(svc *Service, now time.Time) any {
		return svc.Progress(r.Context(), now, h.standings)
	})
}

func (h *Handler) GetBadges(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, func(svc *Service, _ time.Time) any {
		return svc.Badges()
	})
}

func (h *Handler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, func(svc *Service, now time.Time) any {
		return svc.Challenges(r.Context(), now)
	})
}

// ── Leaderboard ─────────────────────────────────────────

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r.URL.Query(), "limit", h.standings)
	if limit == 0 || limit > 100 {
		limit = h.standings
	}
	h.render(w, r, func(svc *Service, _ time.Time) any {
		return svc.Leaderboard(limit)
	})
}

// ── Events ──────────────────────────────────────────────

func (h *Handler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerSelectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	h.render(w, r, func(svc *Service, _ time.Time) any {
		return svc.OnAnswerSelected(r.Context(), req.Correct)
	})
}

func (h *Handler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizCompletion
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "total_questions must be positive; score and time_taken_seconds must not be negative"})
		return
	}
	if req.Score > req.TotalQuestions {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "score cannot exceed total_questions"})
		return
	}

	h.render(w, r, func(svc *Service, now time.Time) any {
		return svc.OnQuizCompleted(r.Context(), now, req)
	})
}

// ── Helpers ─────────────────────────────────────────────

// render runs fn for the authenticated user and writes its result.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, fn func(svc *Service, now time.Time) any) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var resp any
	err := h.runner.Do(r.Context(), userID, func(svc *Service, now time.Time) error {
		resp = fn(svc, now)
		return nil
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
			return
		}
		h.log.Error("progression request failed", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
