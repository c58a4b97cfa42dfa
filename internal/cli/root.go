// Package cli defines the cobra command tree for the pulse tool.
package cli

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"place_pulse/internal/adapters/observability"
	redisad "place_pulse/internal/adapters/redis"
	"place_pulse/internal/shared"
	mysqlrepo "place_pulse/internal/storage/mysql"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pulse",
		Short:         "Import, classify and aggregate place feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := shared.Load()
			log.Logger = observability.NewLogger(cfg.AppEnv)
			observability.Serve()
		},
	}

	root.AddCommand(
		newImportCmd(),
		newClassifyCmd(),
	)

	return root
}

// openRepo opens the MySQL pool and wraps it in the storage repo.
func openRepo(cfg shared.Config) (*mysqlrepo.Repo, *sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return mysqlrepo.New(db), db, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("closing database")
	}
}

// invalidateAggregates drops all cached aggregate views after a write pass
// so the next read recomputes them.
func invalidateAggregates(cfg shared.Config) {
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.DelPrefix(context.Background(), "sentiment:"); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
