package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	version  uint
	dirty    bool
	upErr    error
	migrated uint
	forced   []int
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	if f.version == 0 && !f.dirty {
		return 0, false, migrate.ErrNilVersion
	}
	return f.version, f.dirty, nil
}

func (f *fakeMigrator) Force(version int) error {
	f.forced = append(f.forced, version)
	f.version = uint(version)
	f.dirty = false
	return nil
}

func (f *fakeMigrator) Migrate(version uint) error {
	f.migrated = version
	return f.upErr
}

func (f *fakeMigrator) Up() error {
	return f.upErr
}

func migrationFolder(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	return dir
}

func newTestMigrations(config MigrationConfig) *MigrationService {
	return NewMigrationService(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}), config)
}

func TestLatestVersion(t *testing.T) {
	dir := migrationFolder(t,
		"000001_create_prefill_store.up.sql",
		"000001_create_prefill_store.down.sql",
		"000003_index.up.sql",
		"000002_other.up.sql",
		"README.md",
	)

	latest, err := latestVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, latest)

	_, err = latestVersion(migrationFolder(t))
	assert.Error(t, err)
}

func TestMigrationFolder(t *testing.T) {
	dir := migrationFolder(t, "000001_a.up.sql")

	folder, err := newTestMigrations(MigrationConfig{Folder: dir}).folder()
	require.NoError(t, err)
	assert.Equal(t, dir, folder)

	_, err = newTestMigrations(MigrationConfig{Folder: filepath.Join(dir, "missing")}).folder()
	assert.Error(t, err)
}

func TestApply_UpToDate(t *testing.T) {
	m := &fakeMigrator{version: 1, upErr: migrate.ErrNoChange}

	require.NoError(t, newTestMigrations(MigrationConfig{}).apply(m, ""))
	assert.Empty(t, m.forced)
}

func TestApply_PinnedVersion(t *testing.T) {
	m := &fakeMigrator{}

	require.NoError(t, newTestMigrations(MigrationConfig{Version: 2}).apply(m, ""))
	assert.Equal(t, uint(2), m.migrated)
}

func TestApply_ForceBeforeMigrating(t *testing.T) {
	m := &fakeMigrator{version: 4, dirty: true}

	require.NoError(t, newTestMigrations(MigrationConfig{Force: 3}).apply(m, ""))
	assert.Equal(t, []int{3}, m.forced)
}

func TestApply_UnknownVersionPinsLatest(t *testing.T) {
	dir := migrationFolder(t, "000001_a.up.sql", "000002_b.up.sql")
	m := &fakeMigrator{version: 7, upErr: errors.New("no migration found for version 7")}

	require.NoError(t, newTestMigrations(MigrationConfig{}).apply(m, dir))
	assert.Equal(t, []int{2}, m.forced)
}

func TestApply_DirtyRollsBack(t *testing.T) {
	boom := errors.New("syntax error")
	m := &fakeMigrator{version: 1}
	m.upErr = boom

	svc := newTestMigrations(MigrationConfig{AutoRollback: true})
	// The failed run leaves the schema dirty at the next version.
	dirtying := &dirtyingMigrator{fakeMigrator: m, dirtyAt: 2}

	err := svc.apply(dirtying, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, m.forced)
}

func TestApply_DirtyWithoutRollback(t *testing.T) {
	boom := errors.New("syntax error")
	m := &fakeMigrator{version: 1, upErr: boom}

	err := newTestMigrations(MigrationConfig{}).apply(&dirtyingMigrator{fakeMigrator: m, dirtyAt: 2}, "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.forced)
}

type dirtyingMigrator struct {
	*fakeMigrator
	dirtyAt uint
}

func (d *dirtyingMigrator) Up() error {
	err := d.fakeMigrator.Up()
	if err != nil {
		d.version = d.dirtyAt
		d.dirty = true
	}
	return err
}
