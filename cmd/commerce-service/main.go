package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/instantin-me/commerce-core/internal/config"
	"github.com/instantin-me/commerce-core/internal/db"
	"github.com/instantin-me/commerce-core/internal/drop"
	"github.com/instantin-me/commerce-core/internal/eventbus"
	"github.com/instantin-me/commerce-core/internal/order"
	"github.com/instantin-me/commerce-core/internal/product"
	"github.com/instantin-me/commerce-core/internal/raffle"
	"github.com/instantin-me/commerce-core/internal/transport"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "commerce-service").Logger()

	log.Info().Msg("Commerce service starting...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	var notifier order.Notifier
	publisher, err := eventbus.NewRabbitMQPublisher(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable; notification events will be dropped")
		notifier = eventbus.NopNotifier{}
	} else {
		defer publisher.Close()
		notifier = publisher
	}

	ledger := product.NewLedger()
	productRepo := product.NewRepository(dbConn.Pool)
	orderRepo := order.NewRepository(dbConn.Pool)
	dropRepo := drop.NewRepository(dbConn.Pool)
	raffleRepo := raffle.NewRepository(dbConn.Pool)

	productSvc := product.NewService(dbConn, productRepo, ledger)
	orderSvc := order.NewService(dbConn, orderRepo, productRepo, ledger, dropRepo, notifier, cfg.PlatformFeePct())
	dropSvc := drop.NewService(dbConn, dropRepo)
	raffleSvc := raffle.NewService(dbConn, raffleRepo, notifier)

	sweeper := order.NewSweeper(orderSvc, orderRepo, cfg.ReservationTTL(), cfg.SweepInterval())
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      transport.NewRouter(orderSvc, productSvc, dropSvc, raffleSvc),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
