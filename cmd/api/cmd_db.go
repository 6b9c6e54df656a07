package main

import (
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/seed"
	"storefront/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// api migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync()

		return database.RunMigrations(db.DB(), log)
	},
}

// api migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, db, err := bootDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return database.GetMigrationStatus(db.DB())
	},
}

// api seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the catalog with the starter products and ensure the seed admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootDB()
		if err != nil {
			return err
		}
		defer db.Close()
		defer log.Sync()

		ctx := cmd.Context()
		redisClient := server.NewRedisClient(ctx, cfg.Redis, log)
		if redisClient != nil {
			defer redisClient.Close()
		}

		seeder := seed.New(
			repository.NewTransactor(db.DB()),
			server.NewUserService(cfg, db.DB(), log),
			server.NewCatalog(redisClient, log),
			log,
		)
		if err := seeder.Run(ctx, cfg.Seed); err != nil {
			log.Error("Seeding failed", zap.Error(err))
			return err
		}
		log.Info("Data imported")
		return nil
	},
}

// bootDB loads configuration and opens the database connection
func bootDB() (*config.Config, *zap.Logger, *database.Service, error) {
	cfg, log, err := boot()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
