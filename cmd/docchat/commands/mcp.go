// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes document QA tools to LLM agents via stdio
package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docchat-labs/docchat/internal/mcp"
)

var mcpDocsDir string

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docchat as an MCP (Model Context Protocol) server over stdio,
exposing the document corpus as ask/search tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  docchat mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "docchat": {
  #       "command": "docchat",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	cmd.Flags().StringVar(&mcpDocsDir, "docs", "", "Documents directory (overrides DOCCHAT_DOCS_DIR)")

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	qa, cleanup, err := buildAgent(ctx, mcpDocsDir, false)
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcpserver.NewMCPServer(
		"Docchat Document QA",
		"0.1.0",
	)
	mcp.RegisterTools(server, qa)

	if !quiet {
		log.Println("Docchat MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, shutting down...")
		}
		return nil
	case err := <-serverErr:
		return err
	}
}
