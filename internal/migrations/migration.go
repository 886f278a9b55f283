package migrations

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/bellmemo/bell-memo/internal/logger"
)

// Migration represents a single schema change
type Migration struct {
	ID          string                 // Unique identifier, sorted lexically (e.g. "001_add_memo_index")
	Description string                 // Human-readable description
	Up          func(tx *sql.Tx) error // Apply
	Down        func(tx *sql.Tx) error // Revert (optional)
}

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// MigrationRunner applies migrations and tracks them in schema_migrations
type MigrationRunner struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrationRunner creates a runner over the built-in migrations
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return newRunner(db, getAllMigrations())
}

func newRunner(db *sql.DB, migrations []Migration) *MigrationRunner {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return &MigrationRunner{db: db, migrations: sorted}
}

func (mr *MigrationRunner) createMigrationsTable() error {
	_, err := mr.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (mr *MigrationRunner) appliedSet() (map[string]bool, error) {
	if err := mr.createMigrationsTable(); err != nil {
		return nil, err
	}

	rows, err := mr.db.Query("SELECT id FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan migration id: %w", err)
		}
		applied[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migrations: %w", err)
	}
	return applied, nil
}

// inTx runs steps in one transaction, rolling back on the first failure
func (mr *MigrationRunner) inTx(label string, steps ...func(tx *sql.Tx) error) error {
	tx, err := mr.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction for %s: %w", label, err)
	}

	for _, step := range steps {
		if err := step(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Failed to rollback transaction: %v", rbErr)
			}
			return fmt.Errorf("%s failed: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", label, err)
	}
	return nil
}

// RunMigrations applies every pending migration in ID order
func (mr *MigrationRunner) RunMigrations() (int, error) {
	applied, err := mr.appliedSet()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range mr.migrations {
		if applied[m.ID] {
			logger.Debug("Migration %s already applied, skipping", m.ID)
			continue
		}

		logger.Debug("Running migration: %s - %s", m.ID, m.Description)
		record := func(tx *sql.Tx) error {
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (id, description, applied_at) VALUES (?, ?, ?)",
				m.ID, m.Description, time.Now().UTC(),
			)
			return err
		}
		if err := mr.inTx("migration "+m.ID, m.Up, record); err != nil {
			return count, err
		}
		count++
	}

	if count > 0 {
		logger.Info("Applied %d database migration(s)", count)
	}
	return count, nil
}

// GetMigrationStatus returns the status of all migrations
func (mr *MigrationRunner) GetMigrationStatus() ([]MigrationStatus, error) {
	applied, err := mr.appliedSet()
	if err != nil {
		return nil, err
	}

	status := make([]MigrationStatus, 0, len(mr.migrations))
	for _, m := range mr.migrations {
		status = append(status, MigrationStatus{
			ID:          m.ID,
			Description: m.Description,
			Applied:     applied[m.ID],
		})
	}
	return status, nil
}

// SchemaVersion reports the PRAGMA user_version written by the migrations
func (mr *MigrationRunner) SchemaVersion() (int, error) {
	var version int
	if err := mr.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// RollbackMigration reverts one applied migration that has a Down step
func (mr *MigrationRunner) RollbackMigration(migrationID string) error {
	var target *Migration
	for i := range mr.migrations {
		if mr.migrations[i].ID == migrationID {
			target = &mr.migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %s not found", migrationID)
	}
	if target.Down == nil {
		return fmt.Errorf("migration %s does not support rollback", migrationID)
	}

	applied, err := mr.appliedSet()
	if err != nil {
		return err
	}
	if !applied[migrationID] {
		return fmt.Errorf("migration %s is not applied", migrationID)
	}

	logger.Info("Rolling back migration: %s - %s", target.ID, target.Description)
	forget := func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE id = ?", migrationID)
		return err
	}
	return mr.inTx("rollback "+migrationID, target.Down, forget)
}
