package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/offerlab/offerdb/internal/infra/db"
	httpx "github.com/offerlab/offerdb/internal/infra/http"
	"github.com/offerlab/offerdb/internal/repository"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !skipMigrations {
			url, err := dsn(cfg)
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx, url, log); err != nil {
				log.Error().Err(err).Msg("migrations failed")
				return err
			}
		}

		pool, err := connect(ctx, cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("db connect failed")
			return err
		}
		defer pool.Close()
		log.Info().Str("host", pool.Config().ConnConfig.Host).Msg("db connected")

		srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, repository.New(pool, log), log)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
				stop()
			}
		}()
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server started")

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		log.Info().Msg("graceful shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply migrations on startup")
	rootCmd.AddCommand(serveCmd)
}
