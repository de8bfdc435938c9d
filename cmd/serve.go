package cmd

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"overseerr-mcp/tools"
)

// serveCmd starts the MCP tool server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP tool server",
	Long: `Start serving the tool set over the configured transport. The stdio
transport speaks MCP on stdin/stdout; sse and http listen on host:port.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&transport, "transport", "t", "", "transport: stdio, sse, or http (overrides config)")
	serveCmd.Flags().StringVar(&host, "host", "", "listen host for sse/http (overrides config)")
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port for sse/http (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("transport") {
		cfg.Server.Transport = transport
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	toolServer := tools.NewServer(cfg, logger)
	mcpServer := toolServer.MCPServer(version)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	logger.Info().
		Str("transport", cfg.Server.Transport).
		Str("version", version).
		Msg("Starting MCP server")

	switch cfg.Server.Transport {
	case "stdio":
		return server.ServeStdio(mcpServer)
	case "sse":
		sseServer := server.NewSSEServer(mcpServer)
		logger.Info().Str("addr", addr).Msg("Listening for SSE connections")
		return sseServer.Start(addr)
	case "http":
		httpServer := server.NewStreamableHTTPServer(mcpServer)
		logger.Info().Str("addr", addr).Msg("Listening for HTTP connections")
		return httpServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s", cfg.Server.Transport)
	}
}
