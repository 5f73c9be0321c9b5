package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/offerlab/offerdb/internal/config"
	"github.com/offerlab/offerdb/internal/infra/db"
	"github.com/offerlab/offerdb/internal/infra/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "offerdb",
	Short: "Offer database: packages, offers and their line items",
	Long: `offerdb owns the offer database used to price lab offers.

It serves a small JSON API over the packages, offers, persons and projects tables,
applies schema migrations and dumps tables for inspection.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/example.yaml", "YAML config file (APP_* env vars override it)")
}

// setup loads the config and builds the logger every command starts from.
func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.App.Env), nil
}

func dsn(cfg config.Config) (string, error) {
	return db.DSN(cfg.Database.User, cfg.Database.Password, cfg.Database.Host)
}

func connect(ctx context.Context, cfg config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	return db.Connect(ctx, db.Options{
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Host:     cfg.Database.Host,
		MaxConns: cfg.Database.MaxConns,
		TraceSQL: cfg.App.Env == "dev",
	}, log)
}
