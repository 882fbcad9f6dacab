package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/lukman83/phonescope/internal/export"
	"github.com/lukman83/phonescope/internal/render"
	"github.com/lukman83/phonescope/internal/search"
	"github.com/lukman83/phonescope/internal/sites"
	"github.com/lukman83/phonescope/internal/ui"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search phones and render the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("mode", "", "Display mode: basic, detailed")
	searchCmd.Flags().String("max-results", "", "Maximum results per site")
	searchCmd.Flags().StringSlice("sites", nil, "Sites to search (default: registered defaults)")
	searchCmd.Flags().String("format", "html", "Output format: html, table, json")
	searchCmd.Flags().String("out", "", "Write output to this file instead of stdout")
	searchCmd.Flags().Bool("export", false, "Also export the raw results as phone_search_<ms>.json")
	searchCmd.Flags().String("export-dir", "", "Directory for --export (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = cfg.DefaultMode
	}
	maxResults, _ := cmd.Flags().GetString("max-results")
	if maxResults == "" {
		maxResults = strconv.Itoa(cfg.DefaultMaxResults)
	}
	siteList, _ := cmd.Flags().GetStringSlice("sites")
	if len(siteList) == 0 {
		siteList = sites.Defaults()
	}
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	doExport, _ := cmd.Flags().GetBool("export")
	exportDir, _ := cmd.Flags().GetString("export-dir")
	if exportDir == "" {
		exportDir = cfg.ExportDir
	}

	req, err := search.NewRequest(args[0], mode, maxResults, siteList)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	ctrl := buildController(search.WithIndicator(spin))

	ctx := search.WithProgress(context.Background(), spin.Update)
	outcome, err := ctrl.Search(ctx, req)
	if err != nil {
		return errors.New(search.UserMessage(err))
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "table":
		render.FormatTable(out, outcome.Snapshot.Response, req.Mode)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome.Snapshot.Response); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
	default:
		fmt.Fprintln(out, outcome.Markup)
	}

	if doExport {
		artifact, ok, err := ctrl.Export()
		if err != nil {
			return err
		}
		if ok {
			path, err := export.WriteFile(exportDir, artifact)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported results to %s\n", path)
		}
	}

	return nil
}
