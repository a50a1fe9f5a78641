package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/mcp"
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

The server exposes the retrieve, ingest_file and collection_info tools, the
ragcore://collection resource and the prompt templates.

By default, the server communicates over stdio using JSON-RPC. Use --port to
serve streamable HTTP instead; Prometheus metrics are then available at
/metrics on the same port.

Examples:
  # Stdio mode (default, for desktop assistants)
  ragcore mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ragcore mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ragcore": {
        "command": "/path/to/ragcore",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		RAG:      ragService,
		Defaults: currentRAGSettings(),
		Prompts:  promptStore,
	}

	var opts []mcp.Option
	if port > 0 && metricsHandler != nil {
		opts = append(opts, mcp.WithHTTPHandler("/metrics", metricsHandler))
	}

	server, err := mcp.NewServer(ports, opts...)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
