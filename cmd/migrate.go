package cmd

import (
	"bufio"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long: `Manage database migrations and schema changes.

This command provides utilities to check migration status and manage database schema changes.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of database migrations",
	Long: `Display which database migrations have been applied and which are pending,
together with the schema version stored in the database file.`,
	RunE: showMigrationStatus,
}

var migrateRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pending database migrations",
	Long: `Manually run any pending database migrations.

Note: Migrations are automatically run when the application starts, so this command
is typically only needed for troubleshooting or advanced use cases.`,
	RunE: runMigrations,
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback [migration-id]",
	Short: "Revert an applied migration",
	Long: `Revert one applied migration. Rolling back the initial schema drops every memo.

The migration is applied again the next time bell-memo opens the database.`,
	Args: cobra.ExactArgs(1),
	RunE: rollbackMigration,
}

var rollbackYes bool

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateRunCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
	migrateRollbackCmd.Flags().BoolVarP(&rollbackYes, "yes", "y", false, "Do not ask for confirmation")
}

func migrationRunner() (*migrations.MigrationRunner, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return db.Migrations(), nil
}

func showMigrationStatus(cmd *cobra.Command, args []string) error {
	runner, err := migrationRunner()
	if err != nil {
		return err
	}

	status, err := runner.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "MIGRATION ID\tSTATUS\tDESCRIPTION\n")
	fmt.Fprintf(w, "------------\t------\t-----------\n")
	for _, migration := range status {
		statusText := "PENDING"
		if migration.Applied {
			statusText = "APPLIED"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", migration.ID, statusText, migration.Description)
	}
	w.Flush()

	appliedCount := lo.CountBy(status, func(m migrations.MigrationStatus) bool {
		return m.Applied
	})

	version, err := runner.SchemaVersion()
	if err != nil {
		return err
	}

	fmt.Printf("\nTotal migrations: %d\n", len(status))
	fmt.Printf("Applied: %d\n", appliedCount)
	fmt.Printf("Pending: %d\n", len(status)-appliedCount)
	fmt.Printf("Schema version: %d\n", version)

	return nil
}

func runMigrations(cmd *cobra.Command, args []string) error {
	runner, err := migrationRunner()
	if err != nil {
		return err
	}

	count, err := runner.RunMigrations()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if count == 0 {
		fmt.Println("Database is up to date.")
		return nil
	}
	fmt.Printf("Applied %d migration(s).\n", count)
	return nil
}

func rollbackMigration(cmd *cobra.Command, args []string) error {
	runner, err := migrationRunner()
	if err != nil {
		return err
	}

	if !rollbackYes && !confirm(bufio.NewReader(os.Stdin), fmt.Sprintf("Roll back %s? (y/N): ", args[0])) {
		fmt.Println("Rollback cancelled.")
		return nil
	}

	if err := runner.RollbackMigration(args[0]); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	fmt.Printf("Rolled back %s.\n", args[0])
	return nil
}
