// Package cli implements knowctl, the operator tool for admin accounts,
// catalog seeding and attempt exports.
package cli

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/database"
	"github.com/knowlympics/knowlympics-backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "knowctl",
		Short:         "Operator tool for the Knowlympics backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newCreateAdminCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}

// env holds the connections a command needs. Close releases them.
type env struct {
	cfg  *config.Config
	log  zerolog.Logger
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func connect(ctx context.Context, withRedis bool) (*env, error) {
	cfg := config.Load()
	log := logger.SetupTo(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, pool: pool}

	if withRedis {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		e.rdb = rdb
	}
	return e, nil
}

func (e *env) Close() {
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
	e.pool.Close()
}
