// Package config provides configuration management for pagesmith using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files (.pagesmith.yml), environment
// variable overrides with the PAGESMITH_ prefix, and validation. It manages
// server settings, the source/output directory layout, the campaign registry
// location, and development options like live reload.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Site        SiteConfig        `mapstructure:"site"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type SiteConfig struct {
	SourceDir     string `mapstructure:"source_dir"`
	OutputDir     string `mapstructure:"output_dir"`
	CampaignsFile string `mapstructure:"campaigns_file"`
}

type DevelopmentConfig struct {
	LiveReload bool `mapstructure:"live_reload"`
	DebounceMs int  `mapstructure:"debounce_ms"`
}

// Defaults for the project-standard source layout.
const (
	DefaultSourceDir     = "src"
	DefaultOutputDir     = "dist"
	DefaultCampaignsFile = "campaigns.yml"
)

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Site.SourceDir == "" {
		config.Site.SourceDir = DefaultSourceDir
	}
	if config.Site.OutputDir == "" {
		config.Site.OutputDir = DefaultOutputDir
	}
	if config.Site.CampaignsFile == "" {
		config.Site.CampaignsFile = DefaultCampaignsFile
	}
	if !viper.IsSet("development.live_reload") {
		config.Development.LiveReload = true
	}
	if config.Development.DebounceMs == 0 {
		config.Development.DebounceMs = 300
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Port 0 is allowed for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateSiteConfig validates the source/output layout paths
func validateSiteConfig(config *SiteConfig) error {
	for name, path := range map[string]string{
		"source_dir":     config.SourceDir,
		"output_dir":     config.OutputDir,
		"campaigns_file": config.CampaignsFile,
	} {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, path, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
