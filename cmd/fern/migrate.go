package main

import (
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL prefill store migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(func(cfg *config.Config, logger ectologger.Logger) error {
				db, err := openDatabase(cfg, logger)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := db.PingContext(cmd.Context()); err != nil {
					return err
				}
				return newMigrations(cfg, logger).MigratePostgres(db.DB.DB, cfg.DatabaseName)
			})
		},
	}
}

func openDatabase(cfg *config.Config, logger ectologger.Logger) (*database.DatabaseInstance, error) {
	return database.Open(database.Config{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
}

func newMigrations(cfg *config.Config, logger ectologger.Logger) *database.MigrationService {
	return database.NewMigrationService(logger, database.MigrationConfig{
		Folder:       cfg.DatabaseMigrationFolderPath,
		Version:      uint(cfg.DatabaseMigrationVersion),
		Force:        cfg.DatabaseMigrationForce,
		AutoRollback: cfg.DatabaseMigrationAutoRollback,
	})
}
