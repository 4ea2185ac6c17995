package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchpoint/courtbook/internal/app"
	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/config"
	"github.com/matchpoint/courtbook/internal/events"
	"github.com/matchpoint/courtbook/internal/storage/postgres"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Cancel expired holds once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			var pub events.Publisher = events.NopPublisher{}
			if cfg.AMQPURL != "" {
				amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.BookingExchange)
				if err != nil {
					return err
				}
				defer amqpPub.Close()
				pub = amqpPub
			}

			sweeper := app.NewSweeper(postgres.NewBookingRepository(pool), clock.NewSystem(), cfg.SweepInterval,
				app.WithSweeperPublisher(pub))

			n, err := sweeper.SweepOnce(ctx)
			if err != nil {
				return err
			}
			log.Printf("cancelled %d expired holds", n)
			return nil
		},
	}
}
