// Package internal contains the core implementation packages for pagesmith.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the pagesmith CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - build: Build orchestration, page discovery, output path derivation,
//     and rebuild-scope classification
//   - campaign: Campaign registry loading and lookup
//   - config: Configuration management with validation
//   - engine: html/template adapter with campaign-aware template functions
//   - errors: Per-page error collection and aggregation
//   - logging: Structured logging on top of log/slog
//   - renderer: Two-pass page rendering (body, then layout)
//   - server: Development server with static serving, rebuild coordination,
//     and the live-reload push channel
//   - watcher: File system monitoring with debouncing
//
// # Inter-Package Communication
//
// The build package is the hub: the CLI drives it directly for one-shot
// builds, and the server drives it through a rebuild callback so that the
// server itself owns no build policy. The watcher delivers debounced change
// batches; the server classifies them via the build package and broadcasts a
// reload over the push channel after each successful rebuild.
//
// For detailed documentation, see the individual package documentation.
package internal
