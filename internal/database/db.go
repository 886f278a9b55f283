package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/bellmemo/bell-memo/internal/config"
	"github.com/bellmemo/bell-memo/internal/constants"
	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/migrations"
)

// busyTimeoutMS lets concurrent API writers wait for the SQLite lock instead of failing
const busyTimeoutMS = 5000

type DB struct {
	conn *sql.DB
	cfg  *config.Config
}

func New(cfg *config.Config) (*DB, error) {
	path := cfg.GetDatabasePath()

	if err := os.MkdirAll(filepath.Dir(path), constants.DataDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	logger.Debug("Database path: %s", path)

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", path, busyTimeoutMS)
}

func (db *DB) initialize() error {
	var version string
	if err := db.conn.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query sqlite version: %w", err)
	}
	logger.Debug("SQLite version %s", version)

	if _, err := db.Migrations().RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Migrations returns a runner bound to this connection
func (db *DB) Migrations() *migrations.MigrationRunner {
	return migrations.NewMigrationRunner(db.conn)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file in use
func (db *DB) Path() string {
	return db.cfg.GetDatabasePath()
}
