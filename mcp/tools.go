package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/lukman83/phonescope/internal/frontend"
	"github.com/lukman83/phonescope/internal/search"
	"github.com/lukman83/phonescope/internal/sites"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(s *server.MCPServer, ctrl *frontend.Controller) {
	// search_phones
	searchTool := mcp.NewTool("search_phones",
		mcp.WithDescription("Search phone listings through the scraping API and return the rendered HTML results"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text phone search query"),
		),
		mcp.WithString("mode",
			mcp.Description("Display mode: basic or detailed (default: basic)"),
			mcp.Enum("basic", "detailed"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum results per site (default: 10)"),
		),
		mcp.WithString("sites",
			mcp.Description("Comma-separated source identifiers (default: gsmarena)"),
		),
	)
	s.AddTool(searchTool, searchPhonesHandler(ctrl))

	// export_results
	exportTool := mcp.NewTool("export_results",
		mcp.WithDescription("Return the last completed search as indented JSON"),
	)
	s.AddTool(exportTool, exportResultsHandler(ctrl))
}

func searchPhonesHandler(ctrl *frontend.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		siteList := sites.Defaults()
		if v := request.GetString("sites", ""); v != "" {
			siteList = strings.Split(v, ",")
		}

		req, err := search.NewRequest(
			request.GetString("query", ""),
			request.GetString("mode", "basic"),
			strconv.Itoa(request.GetInt("max_results", 10)),
			siteList,
		)
		if err != nil {
			return mcp.NewToolResultError(search.UserMessage(err)), nil
		}

		outcome, err := ctrl.Search(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(search.UserMessage(err)), nil
		}
		return mcp.NewToolResultText(string(outcome.Markup)), nil
	}
}

func exportResultsHandler(ctrl *frontend.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		artifact, ok, err := ctrl.Export()
		if err != nil {
			return mcp.NewToolResultError("export error: " + err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultText("No search has completed yet."), nil
		}
		return mcp.NewToolResultText(string(artifact.Data)), nil
	}
}
