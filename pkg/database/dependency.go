package database

import (
	"context"
	"fmt"
	"time"
)

// Dependency brings the database up during startup: it verifies the
// connection and applies pending migrations.
type Dependency struct {
	db         *DatabaseInstance
	name       string
	migrations *MigrationService
}

// NewDependency wraps db for the startup sequence. migrations may be nil.
func NewDependency(db *DatabaseInstance, databaseName string, migrations *MigrationService) *Dependency {
	return &Dependency{
		db:         db,
		name:       databaseName,
		migrations: migrations,
	}
}

func (d *Dependency) GetName() string {
	return "database"
}

func (d *Dependency) DependsOn() []string {
	return nil
}

func (d *Dependency) Start(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if d.migrations == nil {
		return nil
	}

	return d.migrations.MigratePostgres(d.db.DB.DB, d.name)
}

func (d *Dependency) Stop(_ context.Context) error {
	return d.db.Close()
}
