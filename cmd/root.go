package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/lukman83/phonescope/config"
	"github.com/lukman83/phonescope/internal/frontend"
	"github.com/lukman83/phonescope/internal/httputil"
	"github.com/lukman83/phonescope/internal/search"
	"github.com/lukman83/phonescope/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg       *config.Config
	logger    *zap.Logger
	transport http.RoundTripper
)

var rootCmd = &cobra.Command{
	Use:   "phonescope",
	Short: "phonescope - phone search front-end for the scraping API",
	Long:  "A Go-based CLI, web UI, and MCP server that queries the phone scraping API and renders the listings.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = cfg.NewLogger()
		if err != nil {
			return err
		}
		base, err := httputil.NewTransport(cfg.ProxyURL)
		if err != nil {
			return err
		}
		transport = &httputil.LoggingTransport{Base: base, Logger: logger}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the search API (\"/search\" is appended)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for the search call")
	rootCmd.PersistentFlags().String("proxy", "", "HTTP or SOCKS5 proxy URL for API calls")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this rotated file")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetDuration("timeout"); v > 0 {
		cfg.HTTPTimeout = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("proxy"); v != "" {
		cfg.ProxyURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-file"); v != "" {
		cfg.LogFile = v
	}
}

// buildController wires the API client, submitter, and session state.
func buildController(opts ...search.Option) *frontend.Controller {
	client := httputil.NewHTTPClient(transport, cfg.HTTPTimeout)
	opts = append([]search.Option{search.WithLogger(logger)}, opts...)
	submitter := search.NewSubmitter(client, cfg.APIURL, opts...)
	return frontend.NewController(submitter, session.New(), logger)
}
