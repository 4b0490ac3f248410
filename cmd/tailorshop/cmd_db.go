package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/config"
	"github.com/shashiranjanraj/tailorshop/database/seeders"
	"github.com/shashiranjanraj/tailorshop/pkg/database"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/migration"
)

// withDB loads config, connects to Mongo and runs fn.
func withDB(fn func(ctx context.Context, db *database.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	logger.Setup(config.AppEnv(), os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer db.Close(context.Background()) //nolint:errcheck
	return fn(ctx, db)
}

// tailorshop migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			n, err := migration.New(db.Database, cmd.OutOrStdout()).Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
			return nil
		})
	},
}

// tailorshop migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			n, err := migration.New(db.Database, cmd.OutOrStdout()).Rollback(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) rolled back\n", n)
			return nil
		})
	},
}

// tailorshop migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			return migration.New(db.Database, cmd.OutOrStdout()).Status(ctx)
		})
	},
}

// tailorshop seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			return seeders.RunAll(ctx, seeders.Env{
				Auth:          services.NewAuthService(repositories.NewUserRepository(db.Database)),
				AdminUsername: config.AdminUsername(),
				AdminPassword: config.AdminPassword(),
				Out:           cmd.OutOrStdout(),
			})
		})
	},
}
