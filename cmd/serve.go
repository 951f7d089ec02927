package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgeline/pagesmith/internal/build"
	"github.com/forgeline/pagesmith/internal/campaign"
	"github.com/forgeline/pagesmith/internal/config"
	"github.com/forgeline/pagesmith/internal/engine"
	"github.com/forgeline/pagesmith/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build, serve, and live-reload while authoring",
	Long: `Perform a full build, then serve the output directory locally, watch the
source tree, rebuild the affected pages on change, and push a reload to every
connected browser when a rebuild finishes.

Examples:
  pagesmith serve                  # serve on the configured host/port
  pagesmith serve --port 3000      # override the port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := newLogger()

	registry, err := campaign.Load(cfg.Site.CampaignsFile)
	if err != nil {
		return err
	}
	eng := engine.New(cfg.Site.SourceDir, logger)

	baseOpts := build.Options{
		SourceDir: cfg.Site.SourceDir,
		OutputDir: cfg.Site.OutputDir,
		Campaigns: registry,
		Engine:    eng,
		Logger:    logger,
	}

	// Initial full build so there is something to serve.
	if _, err := build.Build(baseOpts); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	// Rebuild-scope policy: classify each changed path, merge the scopes, and
	// hand the resulting page subset to the orchestrator. nil changed paths
	// mean "rebuild everything".
	rebuild := func(ctx context.Context, changed []string) error {
		var plan build.Plan
		if changed == nil {
			plan = build.Plan{All: true}
		} else {
			for _, p := range changed {
				plan = build.Merge(plan, build.Classify(cfg.Site.SourceDir, p))
			}
		}
		if plan.IsZero() {
			return nil
		}

		files, err := plan.Files(cfg.Site.SourceDir)
		if err != nil {
			return err
		}

		opts := baseOpts
		opts.Files = files
		result, err := build.Build(opts)
		if err != nil {
			return err
		}
		if result.Errors > 0 {
			return fmt.Errorf("rebuild completed with %d errors", result.Errors)
		}
		return nil
	}

	srv, err := server.New(cfg, rebuild, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		if shutdownErr := srv.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error(ctx, shutdownErr, "shutdown error")
		}
		cancel()
	}()

	fmt.Printf("Serving at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
