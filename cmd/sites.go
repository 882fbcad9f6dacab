package cmd

import (
	"fmt"

	"github.com/lukman83/phonescope/internal/sites"
	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the source sites the search API can query",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range sites.List() {
			marker := " "
			if s.Default {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), " %s %-12s %s\n", marker, s.ID, s.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
