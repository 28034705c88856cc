package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*/*.sql
var migrationFS embed.FS

// RunMigrations applies all pending migrations for the dialect and returns version info.
// It works on its own connection and closes it before returning.
func RunMigrations(dialect Dialect, dsn string) (uint, bool, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return 0, false, fmt.Errorf("failed to open %s database for migrations: %w", dialect, err)
	}

	var driver database.Driver
	switch dialect {
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DialectMySQL:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		err = fmt.Errorf("unsupported dialect: %s", dialect)
	}
	if err != nil {
		db.Close()
		return 0, false, fmt.Errorf("failed to create %s driver: %w", dialect, err)
	}

	source, err := iofs.New(migrationFS, "migrations/"+string(dialect))
	if err != nil {
		driver.Close()
		return 0, false, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(dialect), driver)
	if err != nil {
		source.Close()
		driver.Close()
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Closing the instance closes the driver and with it the migration connection.
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			slog.Warn("Failed to close migration instance", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return 0, false, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}
