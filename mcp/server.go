package mcp

import (
	"github.com/lukman83/phonescope/internal/frontend"
	"github.com/mark3labs/mcp-go/server"
)

func newServer(ctrl *frontend.Controller) *server.MCPServer {
	s := server.NewMCPServer(
		"phonescope",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	registerTools(s, ctrl)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(ctrl *frontend.Controller) error {
	return server.ServeStdio(newServer(ctrl))
}
