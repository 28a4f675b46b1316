// Command portalctl runs administrative tasks against the portal database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"

	"github.com/georgemunganga/vendor-portal/internal/app"
	"github.com/georgemunganga/vendor-portal/internal/pkg/config"
	"github.com/georgemunganga/vendor-portal/internal/pkg/database"
	"github.com/georgemunganga/vendor-portal/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Administrative tasks for the vendor onboarding portal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(requestCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is the process state shared by every subcommand.
type env struct {
	cfg    *config.Config
	db     *sql.DB
	redis  *redis.Client
	logger *zap.Logger
}

func open(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return &env{cfg: cfg, db: db, redis: redis.NewClient(opts), logger: log}, nil
}

func (e *env) Close() {
	e.redis.Close()
	e.db.Close()
	e.logger.Sync()
}

// portal opens the environment and builds the services.
func portal(ctx context.Context) (*app.App, *env, error) {
	e, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(e.cfg, e.db, e.redis, e.logger)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return a, e, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			applied, err := database.Migrate(ctx, e.db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
			}
			return nil
		},
	}
}
