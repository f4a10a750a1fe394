package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

var upMigrationPattern = regexp.MustCompile(`^(\d+)_.+\.up\.sql$`)

// MigrationConfig controls how the prefill schema is brought up to date.
type MigrationConfig struct {
	// Folder holds the *.up.sql / *.down.sql files. Relative paths are tried
	// as given and then against the working directory.
	Folder string
	// Version pins the schema version. Zero applies every pending migration.
	Version uint
	// Force marks the schema as being at this version before migrating.
	Force int
	// AutoRollback clears a dirty schema back to the version it had before
	// the failed run. The run still fails.
	AutoRollback bool
}

// MigrationService applies the db/pg migrations with golang-migrate.
type MigrationService struct {
	config MigrationConfig
	logger ectologger.Logger
}

func NewMigrationService(logger ectologger.Logger, config MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
	}
}

// migrateLogger adapts ectologger to migrate.Logger.
type migrateLogger struct {
	logger ectologger.Logger
}

func (l migrateLogger) Verbose() bool {
	return false
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// folder returns the migration folder, resolved against the working
// directory when the configured path does not exist as given.
func (ms *MigrationService) folder() (string, error) {
	folder := ms.config.Folder
	if _, err := os.Stat(folder); err == nil {
		return filepath.Abs(folder)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve working directory")
	}
	folder = filepath.Join(wd, ms.config.Folder)
	if _, err := os.Stat(folder); err != nil {
		return "", errors.Wrapf(err, "migration folder %s does not exist", ms.config.Folder)
	}
	return folder, nil
}

// MigratePostgres brings the schema of databaseName up to date.
func (ms *MigrationService) MigratePostgres(db *sql.DB, databaseName string) error {
	folder, err := ms.folder()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: databaseName})
	if err != nil {
		return errors.Wrap(err, "failed to create postgres migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, driver)
	if err != nil {
		return errors.Wrap(err, "failed to create migrator")
	}
	m.Log = migrateLogger{logger: ms.logger}

	return ms.apply(m, folder)
}

// migrator is the part of *migrate.Migrate the service drives.
type migrator interface {
	Version() (uint, bool, error)
	Force(version int) error
	Migrate(version uint) error
	Up() error
}

func (ms *MigrationService) apply(m migrator, folder string) error {
	if ms.config.Force != 0 {
		if err := m.Force(ms.config.Force); err != nil {
			return errors.Wrapf(err, "failed to force schema to version %d", ms.config.Force)
		}
	}

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "failed to read schema version")
	}

	if ms.config.Version != 0 {
		err = m.Migrate(ms.config.Version)
	} else {
		err = m.Up()
	}

	switch {
	case err == nil:
		ms.logger.WithField("from_version", before).Info("Applied prefill store migrations")
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		ms.logger.WithField("version", before).Debug("Prefill store schema is up to date")
		return nil
	}

	if strings.Contains(err.Error(), "no migration found for version") {
		// The database is ahead of the folder, usually after a rollback of the
		// binary. Pin it to the newest migration we ship.
		latest, latestErr := latestVersion(folder)
		if latestErr != nil {
			return errors.Wrap(latestErr, "failed to find latest migration")
		}
		ms.logger.WithField("version", before).Warnf("Schema version is unknown, forcing version %d", latest)
		return errors.Wrapf(m.Force(latest), "failed to force schema to version %d", latest)
	}

	ms.logger.WithError(err).Error("Prefill store migration failed")

	current, dirty, versionErr := m.Version()
	if versionErr != nil || !dirty || !ms.config.AutoRollback {
		return errors.Wrap(err, "failed to apply migrations")
	}

	target := int(before)
	if target == 0 && current > 0 {
		target = int(current) - 1
	}
	ms.logger.Warnf("Schema is dirty at version %d, reverting to version %d", current, target)
	if forceErr := m.Force(target); forceErr != nil {
		return errors.Wrapf(forceErr, "failed to revert schema to version %d", target)
	}
	return errors.Wrap(err, "failed to apply migrations")
}

// latestVersion returns the highest version among the up migrations in folder.
func latestVersion(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, err
	}

	latest := -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := upMigrationPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, err
		}
		if version > latest {
			latest = version
		}
	}

	if latest < 0 {
		return 0, errors.Errorf("no migrations found in %s", folder)
	}
	return latest, nil
}
