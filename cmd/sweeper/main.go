package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/database"
	"github.com/obunabot/obuna_go_server/internal/pkg/logger"
	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/sweep"
)

// One-shot expiry sweep, for cron setups that prefer an external
// scheduler over the in-process one.
var dryRun = flag.Bool("dry-run", false, "list expiring and expired subscriptions without touching anything")

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("obuna-sweeper", cfg.Server.Mode != "release")

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	subRepo := repository.NewSubscriptionRepository(db)
	destRepo := repository.NewDestinationRepository(db)

	if *dryRun {
		report(subRepo, cfg)
		return
	}

	tg := telegram.NewClient(cfg.Telegram.BotToken,
		time.Duration(cfg.Telegram.RequestTimeout)*time.Second)
	sweeper := sweep.NewSweeper(subRepo, destRepo, tg, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	warned, expired, err := sweeper.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sweep failed")
	}
	log.Info().Int("warned", warned).Int("expired", expired).Msg("sweep complete")
}

func report(subRepo *repository.SubscriptionRepository, cfg *config.Config) {
	now := time.Now().UTC()
	window := time.Duration(cfg.Subscription.WarningDays) * 24 * time.Hour

	expiring, err := subRepo.ListExpiring(now, window)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list expiring subscriptions")
	}
	expired, err := subRepo.ListExpired(now)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list expired subscriptions")
	}

	for _, sub := range expiring {
		log.Info().Int64("subscription_id", sub.ID).Int64("telegram_id", sub.User.TelegramID).
			Time("end_date", sub.EndDate).Int("days_left", sub.DaysLeft(now)).
			Msg("would warn")
	}
	for _, sub := range expired {
		log.Info().Int64("subscription_id", sub.ID).Int64("telegram_id", sub.User.TelegramID).
			Time("end_date", sub.EndDate).Msg("would expire")
	}
	log.Info().Int("expiring", len(expiring)).Int("expired", len(expired)).Msg("dry run done")
}
