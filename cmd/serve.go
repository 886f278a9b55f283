package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/api"
	"github.com/bellmemo/bell-memo/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start an HTTP API server that exposes the memo store and the search
entry point via REST endpoints:

  GET  /api/v1/health
  GET  /api/v1/memos?limit=&offset=
  POST /api/v1/memos            (one memo object or an array, inserted atomically)
  GET  /api/v1/memos/{id}
  GET  /api/v1/search?query=
  POST /api/v1/search           (search intent JSON)

Host and port default to the server-host and server-port configuration keys.

Examples:
  bell-memo serve
  bell-memo serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind the server to (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to bind the server to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		appConfig.ServerHost = serveHost
	}
	if servePort != 0 {
		appConfig.ServerPort = servePort
	}
	addr := appConfig.ServerAddr()

	logger.Info("Initializing HTTP API server...")
	apiServer := api.NewAPIServer(svc, Version)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start(addr)
	}()

	fmt.Printf("\nbell-memo HTTP API\n")
	fmt.Printf("Server URL: http://%s\n", addr)
	fmt.Printf("Health:     http://%s/api/v1/health\n", addr)
	fmt.Printf("\nExample API calls:\n")
	fmt.Printf("   curl http://%s/api/v1/memos\n", addr)
	fmt.Printf("   curl 'http://%s/api/v1/search?query=meeting'\n", addr)
	fmt.Printf("\nPress Ctrl+C to stop the server\n\n")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down gracefully...", sig)
		if err := apiServer.Stop(); err != nil {
			logger.Error("Error during server shutdown: %v", err)
			return err
		}
		logger.Info("Server stopped successfully")
		return db.Close()
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error: %v", err)
			return err
		}
		return nil
	}
}
