package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/lukman83/phonescope/internal/sites"
	"github.com/lukman83/phonescope/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the browser search UI",
	RunE:  runWeb,
}

func init() {
	webCmd.Flags().String("port", "", "HTTP port (default from $PHONESCOPE_WEB_PORT or 3000)")
	rootCmd.AddCommand(webCmd)
}

func runWeb(cmd *cobra.Command, args []string) error {
	port := cfg.WebPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.SearchRate), cfg.SearchBurst)
	srv := web.NewServer(buildController(), limiter, logger, web.Defaults{
		Mode:       cfg.DefaultMode,
		MaxResults: cfg.DefaultMaxResults,
		Sites:      sites.Defaults(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Listen(fmt.Sprintf(":%s", port))
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
