// Package cmd provides the command-line interface for pagesmith.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--port, --source, ...)
//  2. Environment variables with the PAGESMITH_ prefix
//     (PAGESMITH_SERVER_PORT, PAGESMITH_SITE_OUTPUT_DIR, ...)
//  3. The .pagesmith.yml configuration file in the working directory
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgeline/pagesmith/internal/logging"
)

var cfgFile string
var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagesmith",
	Short: "A multi-campaign page generator with a live-reload dev server",
	Long: `Pagesmith builds multi-page campaign bundles from templated sources and
serves them locally with live browser reload while you author.

Each campaign is an isolated content tree identified by its slug, with its own
pages, layouts, includes, and assets. Pages are plain markup files with YAML
front matter rendered through html/template.

Quick Start:
  pagesmith build                 Build all campaigns into the output directory
  pagesmith serve                 Build, serve, watch, and live-reload`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .pagesmith.yml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("source", "", "source directory (default src)")
	rootCmd.PersistentFlags().String("output", "", "output directory (default dist)")
	rootCmd.PersistentFlags().String("campaigns", "", "campaign registry file (default campaigns.yml)")

	_ = viper.BindPFlag("site.source_dir", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("site.output_dir", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("site.campaigns_file", rootCmd.PersistentFlags().Lookup("campaigns"))
}

// initConfig wires viper to the config file and PAGESMITH_ environment
// variables. A missing config file is fine; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pagesmith")
	}

	viper.SetEnvPrefix("PAGESMITH")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the --log-level flag
func newLogger() logging.Logger {
	level := logging.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: os.Stderr,
	})
}
