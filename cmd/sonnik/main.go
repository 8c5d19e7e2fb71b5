// Package main contains the entrypoint for Sonnik, the dream-interpretation
// service with web and Telegram front-ends.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/sonnik/internal/bot"
	"github.com/edgard/sonnik/internal/bot/handlers"
	"github.com/edgard/sonnik/internal/bot/tasks"
	"github.com/edgard/sonnik/internal/completion"
	"github.com/edgard/sonnik/internal/config"
	"github.com/edgard/sonnik/internal/credential"
	"github.com/edgard/sonnik/internal/database"
	"github.com/edgard/sonnik/internal/dialog"
	"github.com/edgard/sonnik/internal/logger"
	"github.com/edgard/sonnik/internal/prompt"
	"github.com/edgard/sonnik/internal/telegram"
	"github.com/edgard/sonnik/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	provider, err := completion.NewProvider(ctx, cfg.AI, &http.Client{})
	if err != nil {
		log.Error("Failed to initialize completion provider", "provider", cfg.AI.Provider, "error", err)
		return 1
	}
	gateway := completion.NewGateway(provider, cfg.AI.Timeout, completion.Fallbacks{
		Error:       cfg.Messages.GatewayError,
		Unavailable: cfg.Messages.GatewayUnavailable,
	}, log)

	composer, err := prompt.NewComposer(cfg.AI.SystemPrompt, nil)
	if err != nil {
		log.Error("Failed to initialize prompt composer", "error", err)
		return 1
	}

	svc := dialog.NewService(dialog.Deps{
		Store:         store,
		Composer:      composer,
		Completer:     gateway,
		Hasher:        credential.NewHasher(0),
		Messages:      cfg.Messages,
		HistoryWindow: cfg.Conversation.HistoryWindow,
		Logger:        log,
	})

	var tg *tgbot.Bot
	if cfg.Telegram.Enabled {
		tg, err = newTelegram(ctx, cfg, log, svc, store)
		if err != nil {
			log.Error("Failed to set up Telegram bot", "error", err)
			return 1
		}
	}

	var webServer bot.WebServer
	if cfg.Web.Enabled {
		webServer = web.NewServer(web.Deps{
			Config:       cfg.Web,
			Messages:     cfg.Messages,
			HistoryLimit: cfg.Conversation.DisplayHistoryLimit,
			Service:      svc,
			Store:        store,
			Stats:        gateway,
			Logger:       log,
		})
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, tg, webServer, sched)

	log.Info("Starting Sonnik...", "telegram", cfg.Telegram.Enabled, "web", cfg.Web.Enabled)
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Sonnik stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Sonnik stopped gracefully.")
	return 0
}

func newTelegram(ctx context.Context, cfg *config.Config, log *slog.Logger, svc *dialog.Service, store database.Store) (*tgbot.Bot, error) {
	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Service:  svc,
		Sessions: store,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.DefaultHandler(hDeps)),
	)
	if err != nil {
		return nil, err
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		return nil, err
	}
	if err := telegram.SetCommands(ctx, tg, log, cmdHandlers); err != nil {
		log.Warn("Could not publish command menu", "error", err)
	}
	return tg, nil
}
