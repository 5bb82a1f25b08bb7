// Package database opens the relational store backing the lifecycle
// engine.  Two drivers are supported: MySQL for deployments and an
// embedded SQLite file for local runs and tests.  Both share the same
// schema and the same SQL; Dialect carries the few differences.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported values for Options.Driver.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options describes how to reach the store.
//
// Fields:
//  Driver      – "mysql" or "sqlite".
//  User/Pass   – MySQL credentials; Pass may be empty.
//  Host/Port   – MySQL address.
//  Name        – MySQL schema name.
//  SQLitePath  – database file used when Driver is "sqlite".
//  AutoMigrate – apply embedded migrations after connecting.
type Options struct {
	Driver      string
	User        string
	Pass        string
	Host        string
	Port        string
	Name        string
	SQLitePath  string
	AutoMigrate bool
}

// Dialect captures the SQL differences between drivers.
type Dialect struct {
	Name string
	// ForUpdate is appended to SELECTs that lock a row for the rest of the
	// transaction.  SQLite has no row locks; a single pooled connection
	// serializes writers instead.
	ForUpdate string
}

// DialectFor returns the dialect of a supported driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverMySQL:
		return Dialect{Name: DriverMySQL, ForUpdate: " FOR UPDATE"}, nil
	case DriverSQLite:
		return Dialect{Name: DriverSQLite}, nil
	}
	return Dialect{}, fmt.Errorf("database: unsupported driver %q", driver)
}

// Open connects to the configured store, verifies the connection and,
// when requested, applies migrations.
func Open(ctx context.Context, opts Options) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	var db *sql.DB
	switch opts.Driver {
	case DriverMySQL:
		db, err = openMySQL(opts)
	case DriverSQLite:
		db, err = openSQLite(opts.SQLitePath)
	}
	if err != nil {
		return nil, Dialect{}, err
	}

	// Ping with timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	if opts.AutoMigrate {
		if err := Migrate(ctx, db, opts.Driver); err != nil {
			_ = db.Close()
			return nil, Dialect{}, err
		}
	}
	return db, dialect, nil
}

func openMySQL(opts Options) (*sql.DB, error) {
	auth := opts.User
	if opts.Pass != "" {
		auth = fmt.Sprintf("%s:%s", opts.User, opts.Pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, opts.Host, opts.Port, opts.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: transactions run strictly one after another.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}
