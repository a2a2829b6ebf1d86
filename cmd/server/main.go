package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/auth"
	"github.com/hamar-padhai/progression/internal/config"
	"github.com/hamar-padhai/progression/internal/gamification"
	"github.com/hamar-padhai/progression/internal/logger"
	"github.com/hamar-padhai/progression/internal/middleware"
	"github.com/hamar-padhai/progression/internal/quiz"
	"github.com/hamar-padhai/progression/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// run returns instead of exiting so deferred closes always happen.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	kv, err := store.Open(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("open progression store: %w", err)
	}
	defer kv.Close()

	// Initialize services
	directory := auth.NewDirectory(kv)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	runner := gamification.NewRunner(kv, directory, time.Now, loc, zl)
	quizzes := quiz.NewManager(runner, time.Now, zl)

	// Initialize handlers
	authHandler := auth.NewHandler(directory, tokens, time.Now, zl)
	progressHandler := gamification.NewHandler(runner, cfg.Leaderboard.Size, zl)
	quizHandler := quiz.NewHandler(quizzes, zl)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/me/name", authHandler.Rename).Methods("PUT")

	// Progression routes
	protected.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/badges", progressHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/challenges", progressHandler.GetChallenges).Methods("GET")
	protected.HandleFunc("/leaderboard", progressHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/answers", progressHandler.SelectAnswer).Methods("POST")
	protected.HandleFunc("/quiz/complete", progressHandler.CompleteQuiz).Methods("POST")

	// Quiz session routes
	protected.HandleFunc("/quizzes", quizHandler.Start).Methods("POST")
	protected.HandleFunc("/quizzes/{id}", quizHandler.Get).Methods("GET")
	protected.HandleFunc("/quizzes/{id}/answers", quizHandler.Answer).Methods("POST")
	protected.HandleFunc("/quizzes/{id}/submit", quizHandler.Submit).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver), zap.String("timezone", loc.String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zl.Info("Shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			zl.Error("Server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
	return nil
}
