package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/config"
	"github.com/bellmemo/bell-memo/internal/database"
	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/services"
)

var (
	db        *database.DB
	svc       *services.Services
	appConfig *config.Config
	debugFlag bool
	Version   = "dev" // Version is set from main.go
)

// skipDatabase marks commands that manage configuration only and must run
// without opening the database. Subcommands inherit it.
const skipDatabase = "bell-memo/skip-database"

var rootCmd = &cobra.Command{
	Use:     "bell-memo",
	Short:   "A small memo store with a search entry point",
	Version: Version,
	Long: `bell-memo stores memos in a local SQLite database and accepts search
queries from the command line, an HTTP API or an MCP client.

First time users should run 'bell-memo init' to set up the configuration.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initAppConfig,
}

func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

func needsDatabase(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipDatabase]; ok {
			return false
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func initAppConfig(cmd *cobra.Command, args []string) error {
	if debugFlag {
		logger.SetDebugMode(true)
	}
	if !needsDatabase(cmd) {
		return nil
	}

	var err error
	appConfig, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w (run 'bell-memo init' to set it up)", err)
	}

	// Enable debug mode from flag or config
	if debugFlag || appConfig.Debug {
		logger.SetDebugMode(true)
		logger.Debug("Configuration loaded from: %s", func() string {
			path, _ := config.GetConfigPath()
			return path
		}())
		logger.Debug("Data directory: %s", appConfig.DataDirectory)
		logger.Debug("Database path: %s", appConfig.GetDatabasePath())
	}

	svc, _, err = services.Open(appConfig, os.Stdout)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	db = svc.Store
	return nil
}
