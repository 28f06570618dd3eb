package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/api"
	"github.com/obunabot/obuna_go_server/internal/api/handler"
	"github.com/obunabot/obuna_go_server/internal/bot"
	"github.com/obunabot/obuna_go_server/internal/database"
	"github.com/obunabot/obuna_go_server/internal/pkg/logger"
	"github.com/obunabot/obuna_go_server/internal/pkg/pubsub"
	"github.com/obunabot/obuna_go_server/internal/pkg/session"
	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/pkg/ws"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/service"
	"github.com/obunabot/obuna_go_server/internal/sweep"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("obuna-server", cfg.Server.Mode != "release")

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telegram client and conversation sessions.
	tg := telegram.NewClient(cfg.Telegram.BotToken,
		time.Duration(cfg.Telegram.RequestTimeout)*time.Second)
	sessions := session.NewStore(rdb, time.Duration(cfg.Subscription.SessionTTLMin)*time.Minute)

	// Payment events: published on submit/decide, fanned out to the
	// dashboard over WebSocket.
	events := pubsub.NewPublisher(rdb)
	wsHub := ws.NewHub()
	go func() {
		subscriber := pubsub.NewSubscriber(rdb)
		err := subscriber.Subscribe(ctx, func(event *pubsub.PaymentEvent) {
			wsHub.Broadcast(event.Type, event)
		})
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("payment event subscriber stopped")
		}
	}()

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	destRepo := repository.NewDestinationRepository(db)
	cardRepo := repository.NewCardRepository(db)

	registrationService := service.NewRegistrationService(userRepo)
	subService := service.NewSubscriptionService(subRepo, cfg)
	paymentService := service.NewPaymentService(paymentRepo, destRepo, subService, tg, events, cfg)
	accessService := service.NewAccessService(userRepo, subRepo)
	statsService := service.NewStatsService(userRepo, paymentRepo, subRepo, destRepo)

	// Bot long-poller.
	tgBot := bot.New(
		tg, sessions, cfg,
		registrationService, paymentService, accessService, subService, statsService,
		userRepo, cardRepo, destRepo, paymentRepo,
	)
	go tgBot.Run(ctx)

	// Daily expiry sweep with a startup catch-up run.
	sweeper := sweep.NewSweeper(subRepo, destRepo, tg, cfg)
	scheduler := sweep.NewScheduler(sweeper,
		cfg.Subscription.CheckHourUTC,
		time.Duration(cfg.Subscription.StartupDelay)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	// Dashboard API.
	router := api.NewRouter(
		handler.NewAuthHandler(cfg),
		handler.NewPaymentHandler(paymentRepo, paymentService),
		handler.NewStatsHandler(statsService),
		handler.NewDestinationHandler(destRepo),
		handler.NewCardHandler(cardRepo),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret),
		cfg,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router.Setup(),
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("bye")
}
