package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/auth"
	"github.com/hamar-padhai/progression/internal/config"
	"github.com/hamar-padhai/progression/internal/gamification"
	"github.com/hamar-padhai/progression/internal/logger"
	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errUsage) {
			log.Printf("Command failed: %v", err)
		}
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred closes always happen.
func run() error {
	// Define subcommands
	quizCmd := flag.NewFlagSet("quiz", flag.ExitOnError)
	answerCmd := flag.NewFlagSet("answer", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	leaderboardCmd := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	renameCmd := flag.NewFlagSet("rename", flag.ExitOnError)

	// Quiz flags
	quizScore := quizCmd.Int("score", 0, "Correct answers")
	quizTotal := quizCmd.Int("total", 0, "Questions in the quiz (required)")
	quizSubject := quizCmd.String("subject", "", "Subject, e.g. physics")
	quizSeconds := quizCmd.Int("seconds", 0, "Time taken in whole seconds")

	// Answer flags
	answerCorrect := answerCmd.Bool("correct", false, "Whether the selected answer was correct")

	// Leaderboard flags
	leaderboardSize := leaderboardCmd.Int("n", gamification.DefaultStandingsSize, "Rows to show")

	// Rename flags
	renameName := renameCmd.String("name", "", "New display name (required)")

	if len(os.Args) < 2 {
		printUsage()
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zl.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	ctx := context.Background()
	kv, err := store.Open(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("open progression store: %w", err)
	}
	defer kv.Close()

	directory := auth.NewDirectory(kv)
	user, err := directory.CurrentProfile(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	runner := gamification.NewRunner(kv, directory, time.Now, loc, zl)

	var out any
	switch os.Args[1] {
	case "quiz":
		quizCmd.Parse(os.Args[2:])
		if *quizTotal <= 0 || *quizScore < 0 || *quizScore > *quizTotal || *quizSeconds < 0 {
			fmt.Println("Error: need -total > 0, 0 <= -score <= -total and -seconds >= 0")
			quizCmd.PrintDefaults()
			return errUsage
		}
		completion := models.QuizCompletion{
			Score:            *quizScore,
			TotalQuestions:   *quizTotal,
			Subject:          *quizSubject,
			TimeTakenSeconds: float64(*quizSeconds),
		}
		err = runner.Do(ctx, user.ID, func(svc *gamification.Service, now time.Time) error {
			out = svc.OnQuizCompleted(ctx, now, completion)
			return nil
		})

	case "answer":
		answerCmd.Parse(os.Args[2:])
		err = runner.Do(ctx, user.ID, func(svc *gamification.Service, _ time.Time) error {
			out = svc.OnAnswerSelected(ctx, *answerCorrect)
			return nil
		})

	case "status":
		statusCmd.Parse(os.Args[2:])
		err = runner.Do(ctx, user.ID, func(svc *gamification.Service, now time.Time) error {
			out = svc.Progress(ctx, now, cfg.Leaderboard.Size)
			return nil
		})

	case "leaderboard":
		leaderboardCmd.Parse(os.Args[2:])
		err = runner.Do(ctx, user.ID, func(svc *gamification.Service, _ time.Time) error {
			out = svc.Leaderboard(*leaderboardSize)
			return nil
		})

	case "rename":
		renameCmd.Parse(os.Args[2:])
		if *renameName == "" {
			fmt.Println("Error: -name flag is required")
			renameCmd.PrintDefaults()
			return errUsage
		}
		out, err = directory.Rename(ctx, user.ID, *renameName)

	default:
		printUsage()
		return errUsage
	}

	if err != nil {
		zl.Error("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		return err
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Println("Progression CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  progress quiz -total N [-score N] [-subject NAME] [-seconds N]")
	fmt.Println("  progress answer [-correct]")
	fmt.Println("  progress status")
	fmt.Println("  progress leaderboard [-n N]")
	fmt.Println("  progress rename -name NAME")
	fmt.Println("\nAll commands act on the local profile, which is created on first use.")
}
