package migrations

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/bellmemo/bell-memo/internal/constants"
)

// getAllMigrations returns all available migrations in order
func getAllMigrations() []Migration {
	return []Migration{
		{
			ID:          "000_initial_schema",
			Description: "Create MemoData table (schema version 1)",
			Up:          migration000Up,
			Down:        migration000Down,
		},
		// Add new migrations here in chronological order
	}
}

// memoColumns lists the MemoData columns and their declared types.
var memoColumns = []struct {
	Name string
	Type string
}{
	{"id", "TEXT"},
	{"title", "TEXT"},
	{"content", "TEXT"},
	{"created", "INTEGER"},
	{"updated", "INTEGER"},
}

func migration000Up(tx *sql.Tx) error {
	var tableExists bool
	err := tx.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name=?
	`, constants.MemoTable).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check if %s table exists: %w", constants.MemoTable, err)
	}

	if tableExists {
		// A database written by an earlier client; accept it if the columns line up
		if err := verifyMemoSchema(tx); err != nil {
			return err
		}
	} else {
		_, err = tx.Exec(fmt.Sprintf(`
			CREATE TABLE %s (
				id TEXT NOT NULL PRIMARY KEY,
				title TEXT,
				content TEXT,
				created INTEGER,
				updated INTEGER
			)
		`, constants.MemoTable))
		if err != nil {
			return fmt.Errorf("failed to create %s table: %w", constants.MemoTable, err)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", constants.SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

func migration000Down(tx *sql.Tx) error {
	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", constants.MemoTable)); err != nil {
		return fmt.Errorf("failed to drop %s table: %w", constants.MemoTable, err)
	}
	if _, err := tx.Exec("PRAGMA user_version = 0"); err != nil {
		return fmt.Errorf("failed to reset schema version: %w", err)
	}
	return nil
}

// verifyMemoSchema checks an existing MemoData table against the expected columns
func verifyMemoSchema(tx *sql.Tx) error {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", constants.MemoTable))
	if err != nil {
		return fmt.Errorf("failed to get table info: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]string)
	primaryKey := ""
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		existing[name] = strings.ToUpper(dataType)
		if pk > 0 {
			primaryKey = name
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating table info: %w", err)
	}

	var missing []string
	for _, col := range memoColumns {
		if _, ok := existing[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("existing %s table is missing columns: %s", constants.MemoTable, strings.Join(missing, ", "))
	}
	if primaryKey != "id" {
		return fmt.Errorf("existing %s table must use id as primary key, found %q", constants.MemoTable, primaryKey)
	}
	return nil
}
