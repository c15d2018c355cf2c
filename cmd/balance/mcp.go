package main

import (
	"balanceboard/internal/gateway/app"
	"balanceboard/internal/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the decision tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := app.NewCore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer core.Close()
		return server.ServeStdio(mcp.NewServer(core.Service, version))
	},
}
