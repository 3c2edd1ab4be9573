// Command engage-tender runs the engagement round tracker bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Optionally connects to Postgres for the submission audit trail.
//   - Long-polls the Telegram gateway and dispatches updates to the
//     classifier and moderator command handlers.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/onnwee/engage-tender/archive"
	"github.com/onnwee/engage-tender/config"
	"github.com/onnwee/engage-tender/links"
	"github.com/onnwee/engage-tender/server"
	"github.com/onnwee/engage-tender/session"
	"github.com/onnwee/engage-tender/telegram"
	"github.com/onnwee/engage-tender/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing("engage-tender", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	// Optional archive database; an empty DB_DSN disables the audit trail.
	db, err := archive.Connect(cfg.DBDsn)
	if err != nil {
		slog.Error("failed to open archive db", slog.Any("err", err))
		os.Exit(1)
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close archive db", slog.Any("err", err))
			}
		}()
		migrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := archive.Migrate(migrateCtx, db)
		cancel()
		if err != nil {
			slog.Error("archive migration failed", slog.Any("err", err))
			os.Exit(1)
		}
		slog.Info("archive enabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		slog.Error("telegram connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("connected to telegram", slog.String("bot", api.Self.UserName))

	store := session.NewStore(cfg.OpenOnCreate, cfg.MaxLinksPerUser)
	bot := telegram.New(api, store, links.New(cfg.LinkHosts), archive.New(db), cfg)

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(ctx, store, db, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	poller := &telegram.Poller{API: api, Bot: bot}
	poller.Run(ctx)

	slog.Info("shutting down")
}
