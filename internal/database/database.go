package database

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"tastemate/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	*sqlx.DB
}

// DataSourceName builds the driver-specific DSN. SQLite gets foreign keys
// and a busy timeout so concurrent writers wait instead of failing.
func DataSourceName(cfg config.DB) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.Path), nil
	case config.DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DbHOST,
			cfg.DbPORT,
			cfg.DbUSER,
			cfg.DbPASSWORD,
			cfg.DbNAME,
			cfg.DbSSLMODE,
		), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func ConnectDB(cfg *config.Config) (*DB, error) {
	connStr, err := DataSourceName(cfg.DB)
	if err != nil {
		return nil, err
	}

	if cfg.DB.Driver == config.DriverSQLite {
		if dir := filepath.Dir(cfg.DB.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		log.Printf("Opening SQLite database: %s", cfg.DB.Path)
	} else {
		log.Printf("Connecting to database: host=%s, dbname=%s", cfg.DB.DbHOST, cfg.DB.DbNAME)
	}

	db, err := sqlx.Connect(cfg.DB.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DB.Driver == config.DriverSQLite {
		// the file lock serializes writers anyway
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	dbStruct := &DB{db}

	if err := dbStruct.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	if err := dbStruct.HealthCheck(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	log.Printf("Connected to %s", cfg.DB.Driver)
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

// RunMigrations applies the embedded schema for the active driver. Every
// statement is CREATE ... IF NOT EXISTS, so it is safe on each start.
func (db *DB) RunMigrations() error {
	path := fmt.Sprintf("migrations/%s.sql", db.DriverName())

	migrationSQL, err := migrationsFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("schema not found for driver %s: %w", db.DriverName(), err)
	}

	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema is up to date")
	return nil
}

func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	return db.Ping()
}
