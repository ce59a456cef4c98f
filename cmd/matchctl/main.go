// Command matchctl is the administrator CLI for reviewing donors and
// requests and matching donors to requests.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/cmd/matchctl/commands"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/lock"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/adapters/repository"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/config"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/services"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/logging"
)

func main() {
	app := &commands.AppContext{Ctx: context.Background(), Out: os.Stdout}

	rootCmd, cleanup := newRootCmd(app, initApp)
	rootCmd.AddCommand(commands.DonorsCmd(app))
	rootCmd.AddCommand(commands.RequestsCmd(app))
	rootCmd.AddCommand(commands.StatsCmd(app))

	err := rootCmd.Execute()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the root command around setup. The returned func
// releases whatever setup acquired and must run after Execute whether or
// not the command failed.
func newRootCmd(app *commands.AppContext, setup func(*commands.AppContext) ([]func(), error)) (*cobra.Command, func()) {
	var cleanup []func()

	rootCmd := &cobra.Command{
		Use:          "matchctl",
		Short:        "Donor matching administration",
		Long:         `Review donor registrations and patient requests, and match approved donors to requests.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cleanup, err = setup(app)
			return err
		},
	}

	return rootCmd, func() {
		for _, fn := range cleanup {
			fn()
		}
	}
}

// initApp wires the lifecycle service against the configured store.
func initApp(app *commands.AppContext) ([]func(), error) {
	cfg, err := config.LoadFrom(viper.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	cleanup := []func(){func() { _ = logger.Sync() }}

	var store ports.RecordStore
	switch cfg.StoreBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return cleanup, fmt.Errorf("failed to open database: %w", err)
		}
		cleanup = append(cleanup, func() { db.Close() })
		store = repository.NewPostgresStore(db, logger)
	default:
		logger.Warn("using in-memory store, changes are discarded on exit")
		store = repository.NewMemoryStore()
	}

	var locker ports.RecordLocker = lock.NewLocalLocker()
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		cleanup = append(cleanup, func() { client.Close() })
		locker = lock.NewRedisLocker(client, cfg.LockTTL, logger)
	}

	app.Lifecycle = services.NewLifecycleService(store, locker, logger)
	logger.Debug("matchctl initialised", zap.String("store", cfg.StoreBackend))
	return cleanup, nil
}
