package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgeline/pagesmith/internal/build"
	"github.com/forgeline/pagesmith/internal/campaign"
	"github.com/forgeline/pagesmith/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build [page...]",
	Short: "Build campaign pages into the output directory",
	Long: `Build every campaign page found under the source directory, or only the
given source-relative pages when arguments are supplied. Campaign asset trees
are always mirrored into the output directory.

Examples:
  pagesmith build                                # full build
  pagesmith build summer-sale/checkout.html      # rebuild one page`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := newLogger()

	registry, err := campaign.Load(cfg.Site.CampaignsFile)
	if err != nil {
		return err
	}

	opts := build.Options{
		SourceDir: cfg.Site.SourceDir,
		OutputDir: cfg.Site.OutputDir,
		Campaigns: registry,
		Logger:    logger,
	}
	if len(args) > 0 {
		opts.Files = args
	}

	result, err := build.Build(opts)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d pages in %v\n", result.Built, result.Duration.Round(time.Millisecond))
	if result.Errors > 0 {
		return fmt.Errorf("build completed with %d errors", result.Errors)
	}
	return nil
}
