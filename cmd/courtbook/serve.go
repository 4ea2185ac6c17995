package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchpoint/courtbook/internal/app"
	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/config"
	"github.com/matchpoint/courtbook/internal/events"
	"github.com/matchpoint/courtbook/internal/storage/postgres"
	transporthttp "github.com/matchpoint/courtbook/internal/transport/http"
	"github.com/matchpoint/courtbook/migrations"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the booking API and the hold sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.App) error {
	logger := log.Default()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		return err
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		return err
	}

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.BookingExchange)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		pub = amqpPub
	} else {
		logger.Printf("WARN: AMQP_URL not set, booking events disabled")
	}

	clk := clock.NewSystem()
	bookingRepo := postgres.NewBookingRepository(pool)
	venueRepo := postgres.NewVenueRepository(pool)

	bus := events.NewBus()
	notifier := app.NewNotifier(bookingRepo, bus)

	holdSvc := app.NewHoldService(bookingRepo, venueRepo, clk,
		app.WithHoldTTL(cfg.HoldTTL),
		app.WithPublisher(pub),
		app.WithChangeListener(notifier),
	)
	paymentSvc := app.NewPaymentService(bookingRepo, clk,
		app.WithPaymentPublisher(pub),
		app.WithPaymentChangeListener(notifier),
	)
	availSvc := app.NewAvailabilityService(venueRepo, venueRepo, bookingRepo, clk)
	sweeper := app.NewSweeper(bookingRepo, clk, cfg.SweepInterval,
		app.WithSweeperPublisher(pub),
		app.WithSweeperChangeListener(notifier),
		app.WithSweeperLogger(logger),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/bookings", transporthttp.HandleCreateBooking(holdSvc))
	mux.Handle("/bookings/", transporthttp.HandleBookingAction(paymentSvc))
	mux.Handle("/availability/slots", transporthttp.HandleSlots(availSvc))
	mux.Handle("/availability/courts", transporthttp.HandleCourtStatuses(availSvc))
	mux.Handle("/availability/durations", transporthttp.HandleDurations(availSvc))
	mux.Handle("/availability/alternatives", transporthttp.HandleAlternatives(availSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(parseCSV(cfg.CORSOrigins), mux), logger)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sweeper.Run(stopCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("sweeper stopped: %v", err)
		}
	}()

	logger.Printf("api listening on %s", cfg.HTTPAddr)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
	return nil
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
