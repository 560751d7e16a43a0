package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/envsecrets/internal/database"
)

// RunMigrations applies every pending migration under migrations/<driver>.
// Running it against an up-to-date schema is a no-op.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string) error {
	source, err := migrationSource(dbDriver)
	if err != nil {
		return err
	}

	logger.Info("running database migrations", slog.String("driver", dbDriver), slog.String("source", source))

	m, err := migrate.New(source, migrationDatabaseURL(dbDriver, dbConnectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

func migrationSource(dbDriver string) (string, error) {
	switch dbDriver {
	case database.DriverPostgres:
		return "file://migrations/postgresql", nil
	case database.DriverMySQL:
		return "file://migrations/mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", dbDriver)
	}
}

// migrationDatabaseURL prefixes a bare go-sql-driver DSN with mysql://, which
// golang-migrate needs to pick its driver. PostgreSQL URLs already carry a scheme.
func migrationDatabaseURL(dbDriver, dsn string) string {
	if dbDriver == database.DriverMySQL && !strings.HasPrefix(dsn, "mysql://") {
		return "mysql://" + dsn
	}
	return dsn
}
