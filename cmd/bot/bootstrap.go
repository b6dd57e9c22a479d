package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"signal-copier-bot/internal/engine"
	"signal-copier-bot/internal/engine/engineobs"
	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/store"
	"signal-copier-bot/internal/telegram"
	"signal-copier-bot/internal/terminal/mt5"
	"signal-copier-bot/internal/terminal/sim"
	"signal-copier-bot/internal/terminal/terminalobs"
	"signal-copier-bot/internal/trace"
	"signal-copier-bot/internal/tradelog"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old journal files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("COPIER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeTerminal initializes and returns the terminal with observability
func initializeTerminal(ctx context.Context, cfg *store.Config) interfaces.Terminal {
	var term interfaces.Terminal
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
		term = sim.New()
	} else {
		term = mt5.New(mt5.Params{
			BridgeURL: cfg.Terminal.BridgeURL,
			Timeout:   time.Duration(cfg.Terminal.TimeoutSeconds) * time.Second,
		})
	}

	// Wrap with observability middleware
	return terminalobs.Wrap(term)
}

// initializeEngine initializes and returns the decision engine with observability
func initializeEngine(settings *store.Settings, state *engine.State, term interfaces.Terminal) (*engine.Engine, interfaces.Engine) {
	eng := engine.New(settings, state, term)

	// Wrap with observability middleware
	return eng, engineobs.Wrap(eng)
}

// initializeTelegram connects the Telegram client and command dispatcher
func initializeTelegram(cfg *store.Config, commands *telegram.Commands) (*telegram.Client, error) {
	return telegram.NewClient(telegram.Params{
		Token:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		SourceChatID:  cfg.Telegram.SourceChatID,
		NotifyChatIDs: cfg.Telegram.NotifyChatIDs,
	}, commands)
}
