// Package main contains the entrypoint for the percentbot Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/percentbot/internal/admin"
	"github.com/edgard/percentbot/internal/bot"
	"github.com/edgard/percentbot/internal/bot/handlers"
	"github.com/edgard/percentbot/internal/bot/tasks"
	"github.com/edgard/percentbot/internal/config"
	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/gemini"
	"github.com/edgard/percentbot/internal/logger"
	"github.com/edgard/percentbot/internal/percent"
	"github.com/edgard/percentbot/internal/ratelimit"
	"github.com/edgard/percentbot/internal/stats"
	"github.com/edgard/percentbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the process
// exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	if err := store.InitializeSettings(ctx, map[string]string{
		database.SettingPercentageText: cfg.Percent.DefaultTemplate,
	}); err != nil {
		log.Error("Failed to seed default settings", "error", err)
		return 1
	}

	var gemClient gemini.Client
	if cfg.Gemini.Enabled() {
		gemClient, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
	} else {
		log.Info("Gemini API key not set, joke refresh disabled")
	}

	generator := percent.NewGenerator(store, cfg.Percent.DefaultTemplate, cfg.Percent.DefaultJokes, log)
	aggregator := stats.NewAggregator(store, nil)
	flow := admin.NewFlow(store, cfg.Admin.UserIDs, cfg.Admin.SessionTTL, nil, log)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.PerUserPerMinute > 0 {
		limiter = ratelimit.New(cfg.RateLimit.PerUserPerMinute, cfg.RateLimit.Burst, nil)
	}

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Generator: generator,
		Stats:     aggregator,
		Admin:     flow,
		Limiter:   limiter,
	}
	tDeps := tasks.TaskDeps{
		Logger:       log,
		Store:        store,
		Admin:        flow,
		Limiter:      limiter,
		GeminiClient: gemClient,
		Config:       cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewTemplateTextHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	hDeps.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", hDeps.BotInfo.ID, "bot_username", hDeps.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, log, handlers.BotCommands(hDeps)); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
