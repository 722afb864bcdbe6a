package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"moderbot/internal/bot"
	"moderbot/internal/config"
	"moderbot/internal/i18n"
	"moderbot/internal/logger"
	"moderbot/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.FetchPath())
	if err != nil {
		stdlog.Fatalf("load config: %v", err)
	}

	log := logger.New("moderbot", cfg.Bot.Debug)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("bot failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	stores, err := storage.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer stores.Close()

	b, err := bot.New(ctx, bot.Config{
		Token:           cfg.Bot.Token,
		AdminIDs:        cfg.Bot.AdminIDs,
		DefaultLanguage: i18n.Parse(cfg.Bot.DefaultLanguage),
		LPTimeout:       cfg.Bot.LPTimeout,
		Debug:           cfg.Bot.Debug,
		Workers:         cfg.Bot.Workers,
		SessionCapacity: cfg.Bot.SessionCapacity,
		SessionTTL:      cfg.Bot.SessionTTL,
	}, bot.Options{
		Stores:   stores,
		Logger:   log,
		Registry: prometheus.DefaultRegisterer,
	})
	if err != nil {
		return err
	}

	if err := b.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	b.Stop()

	return nil
}
