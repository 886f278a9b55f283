package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/config"
	"github.com/bellmemo/bell-memo/internal/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bell-memo configuration",
	Long: `Initialize bell-memo configuration interactively or with flags.
This command writes the configuration file, creates the data directory and
creates the memo database at the current schema version.`,
	RunE:        runInit,
	Annotations: map[string]string{skipDatabase: "true"},
}

var (
	initDataDir     string
	initInteractive bool
	initForce       bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "Data directory for storing the memo database")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Run interactive setup")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("Configuration already exists at: %s\n", configPath)
		if !confirm(reader, "Do you want to overwrite it? (y/N): ") {
			fmt.Println("Configuration initialization cancelled.")
			return nil
		}
	}

	if initInteractive {
		fmt.Println("=== bell-memo Configuration Setup ===")
		fmt.Println()

		defaultDataDir := config.GetDefaultDataDirectory()
		fmt.Printf("Data directory [%s]: ", defaultDataDir)
		input, _ := reader.ReadString('\n')
		if input = strings.TrimSpace(input); input != "" {
			initDataDir = input
		} else {
			initDataDir = defaultDataDir
		}
	}
	if initDataDir != "" {
		initDataDir = expandPath(initDataDir)
	}

	cfg, err := config.InitializeConfig(initDataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	store, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer store.Close()

	version, err := store.Migrations().SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Println("\n=== Configuration Summary ===")
	fmt.Printf("Config file:     %s\n", configPath)
	fmt.Printf("Data directory:  %s\n", cfg.DataDirectory)
	fmt.Printf("Database path:   %s\n", cfg.GetDatabasePath())
	fmt.Printf("Schema version:  %d\n", version)

	fmt.Println("\nConfiguration initialized successfully!")
	fmt.Println("You can now use 'bell-memo' commands to manage your memos.")
	return nil
}

func confirm(reader *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
