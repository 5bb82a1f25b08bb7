package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// quietLogger keeps goose from printing every applied version; failures
// still surface through the returned error.
type quietLogger struct{}

func (quietLogger) Fatalf(format string, v ...interface{}) { log.Fatalf(format, v...) }
func (quietLogger) Printf(string, ...interface{})          {}

// Migrate applies the embedded migrations for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	gooseDialect := "mysql"
	if driver == DriverSQLite {
		gooseDialect = "sqlite3"
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(quietLogger{})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationVersion reports the latest applied migration.
func MigrationVersion(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	gooseDialect := "mysql"
	if driver == DriverSQLite {
		gooseDialect = "sqlite3"
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return 0, fmt.Errorf("goose dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
