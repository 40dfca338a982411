package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/percent"
)

const jokeRefreshTimeout = 2 * time.Minute

// newJokeRefreshTask asks Gemini for a fresh joke list and stores it in the
// jokes setting. The previous list stays in place when generation fails.
func newJokeRefreshTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "joke_refresh")

	return func(ctx context.Context) error {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(ctx, jokeRefreshTimeout)
		defer cancel()

		jokes, err := deps.GeminiClient.GenerateJokes(ctx, deps.Config.Gemini.JokeCount)
		if err != nil {
			return fmt.Errorf("failed to generate jokes: %w", err)
		}

		encoded, err := percent.EncodeJokes(jokes)
		if err != nil {
			return fmt.Errorf("failed to encode jokes: %w", err)
		}

		if err := deps.Store.UpsertSetting(ctx, database.SettingJokes, encoded); err != nil {
			return fmt.Errorf("failed to save jokes: %w", err)
		}

		log.InfoContext(ctx, "Joke list refreshed", "count", len(jokes), "duration", time.Since(startTime))
		return nil
	}
}
