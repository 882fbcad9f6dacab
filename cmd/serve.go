package cmd

import (
	"fmt"

	mcpserver "github.com/lukman83/phonescope/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Starting phonescope MCP server on stdio...")

	if err := mcpserver.Serve(buildController()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
