package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for LLM integration",
	Long: `Start a Model Context Protocol (MCP) server on stdio.

Tools:
- add_memo: Create a memo (optional id, title, content)
- get_memo: Retrieve a memo by ID
- list_memos: List memos with pagination
- search: Deliver a query to the search handler

Resources:
- memos://recent: Most recently created memos
- memos://stats: Memo count and schema version

To use with Claude Desktop, add this to your claude_desktop_config.json:
{
  "mcpServers": {
    "bell-memo": {
      "command": "bell-memo",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, so search diagnostics and logs go to stderr
	logger.SetOutput(os.Stderr)
	logger.Info("Starting MCP server...")

	mcpServices := svc.WithSearchOutput(os.Stderr)
	memoServer := mcp.NewMemoServer(mcpServices, Version)

	logger.Info("MCP server ready. Listening on stdio...")
	if err := server.ServeStdio(memoServer.GetMCPServer()); err != nil && !errors.Is(err, io.EOF) {
		logger.Error("MCP server error: %v", err)
		return err
	}

	logger.Info("MCP server shutting down")
	return nil
}
