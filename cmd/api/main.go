package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepkit-store/internal/catalog"
	"prepkit-store/internal/client"
	"prepkit-store/internal/config"
	"prepkit-store/internal/repository"
	"prepkit-store/internal/server"
	"prepkit-store/internal/service"
	"prepkit-store/internal/worker"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	setupLogger(&cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := client.InitSqliteClient(cfg.DatabaseURL)
	gateway := client.NewRazorpayClient(&cfg.Razorpay)
	drive, err := client.NewDriveClient(ctx, &cfg.Drive)
	if err != nil {
		log.Fatal().Err(err).Msg("init drive client")
	}
	mailer := client.NewSMTPSender(&cfg.SMTP)
	plans := catalog.NewResolver(cfg.PlanFolders)

	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)
	jobRepo := repository.NewFulfillmentJobRepository(db)

	fulfillmentService := service.NewFulfillmentService(drive, mailer, plans)
	paymentService := service.NewPaymentService(db, gateway, orderRepo, eventRepo, jobRepo)
	adminService := service.NewAdminService(db, orderRepo, mailer, fulfillmentService,
		time.Duration(cfg.SMTP.SendDelayMS)*time.Millisecond)

	fulfiller := &worker.Fulfiller{
		Jobs:        jobRepo,
		Orders:      orderRepo,
		Service:     fulfillmentService,
		Interval:    time.Duration(cfg.Worker.IntervalSeconds) * time.Second,
		BatchSize:   cfg.Worker.BatchSize,
		MaxAttempts: cfg.Worker.MaxAttempts,
		Lease:       30 * time.Second,
	}
	go fulfiller.Run(ctx)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(paymentService, adminService, cfg.Admin.APIKey)

	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")
	cancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func setupLogger(cfg *config.Log) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}
