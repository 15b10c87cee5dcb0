package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ctxport/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server communicates over stdio using JSON-RPC. It exposes the
export_conversation, fetch_conversations and list_platforms tools.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "ctxport": {
        "command": "/path/to/ctxport",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Export:   exportService,
		Registry: adapterRegistry,
	}

	server, err := mcp.NewServer(ports, version)
	if err != nil {
		return err
	}

	return server.Run(cmd.Context())
}
