package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	tnmcp "github.com/ajitpratap0/thermalnetwork/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  friction_factor   Darcy friction factor for a Reynolds number
  size_pipe         pipe size for a flow rate and pressure loss per meter
  source_side_load  ground-side load of a heat pump
  resolve_loop      loop order of a district GeoJSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			srv := tnmcp.NewServer(version, cfg.Pipe.FluidTemperature, logger)

			// mcp-go reports transport errors through a standard log.Logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: thermalnetwork MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
