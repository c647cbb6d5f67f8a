package database

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// MigrationConfig controls how migrations are applied at startup
type MigrationConfig struct {
	FolderPath string
	Version    uint // migrate to a specific version; 0 means latest
	Force      int  // force-set the schema version before migrating
}

// MigrationLogger adapts ectologger to the migrate logging interface
type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return true
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

// resolveMigrationFolder tries the configured path as-is, then relative to
// the working directory.
func resolveMigrationFolder(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	wd, _ := os.Getwd()
	candidate := wd + "/" + path
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

// RunMigrations applies the SQL migrations in cfg.FolderPath to the connected
// database.
func RunMigrations(db DB, databaseName string, cfg MigrationConfig, logger ectologger.Logger) error {
	folder := resolveMigrationFolder(cfg.FolderPath)
	if _, err := os.Stat(folder); err != nil {
		return errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", folder))
	}

	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, "creating migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, driver)
	if err != nil {
		logger.WithError(err).Error("Failed to create migrate instance")
		return err
	}
	m.Log = MigrationLogger{Logger: logger}

	if cfg.Force != 0 {
		if err := m.Force(cfg.Force); err != nil {
			logger.WithError(err).Errorf("Failed to force database to version %d", cfg.Force)
			return err
		}
	}

	if cfg.Version != 0 {
		err = m.Migrate(cfg.Version)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "running migrations")
	}

	version, dirty, _ := m.Version()
	logger.WithFields(map[string]any{
		"version": version,
		"dirty":   dirty,
	}).Info("Database migrations applied")

	return nil
}
