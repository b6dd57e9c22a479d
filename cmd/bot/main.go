package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-copier-bot/internal/copier"
	"signal-copier-bot/internal/dedup"
	"signal-copier-bot/internal/engine"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/notify"
	"signal-copier-bot/internal/report"
	"signal-copier-bot/internal/store"
	"signal-copier-bot/internal/telegram"
	"signal-copier-bot/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Fatal(err)
	}

	compressOldLogs(ctx)

	settings := store.NewSettings(cfg)
	state := engine.NewState()

	term := initializeTerminal(ctx, cfg)
	if err := term.Start(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Terminal connection failed", err)
		log.Fatal(err)
	}
	defer term.Stop(context.Background())

	// The equity baseline anchors the safety breaker for the whole run;
	// without it the bot must not trade.
	acct, err := term.Account(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Cannot read initial equity", err)
		log.Fatal(err)
	}
	state.SetInitialEquity(acct.Equity)
	logger.Info(ctx, "Initial equity captured", "equity", acct.Equity.String())

	eng, obsEngine := initializeEngine(settings, state, term)

	commands := telegram.NewCommands(settings, state, term, eng)
	client, err := initializeTelegram(cfg, commands)
	if err != nil {
		logger.ErrorWithErr(ctx, "Telegram connection failed", err)
		log.Fatal(err)
	}

	hub := notify.NewHub(telegram.NewSink(client))
	go hub.Run(ctx)
	go client.Run(ctx)

	cache := dedup.New(dedup.Options{
		MaxEntries:          cfg.Dedup.MaxEntries,
		TTL:                 time.Duration(cfg.Dedup.TTLMinutes) * time.Minute,
		NormalizeWhitespace: cfg.Dedup.NormalizeWhitespace,
	})
	pipe := copier.NewPipeline(cache, obsEngine, hub)

	hub.Publish(ctx, telegram.StartupMessage(settings.Snapshot()))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	reportTick := time.NewTicker(60 * time.Second)
	defer reportTick.Stop()

	logger.Info(ctx, "Bot started", "mode", cfg.Mode)
	for {
		select {
		case text := <-client.Alerts():
			pipe.Process(ctx, text)
		case <-reportTick.C:
			if !cfg.Report.Enabled {
				continue
			}
			if ok, _ := report.ShouldRunNow(cfg.Report.RunAfter); ok {
				if p, err := report.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "Daily summary written", "file", p)
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			if cfg.Report.Enabled {
				if p, err := report.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "Daily summary written", "file", p)
				}
			}
			cancel()
			_ = trace.Shutdown(context.Background())
			_ = logger.Shutdown(context.Background())
			return
		case <-ctx.Done():
			return
		}
	}
}
