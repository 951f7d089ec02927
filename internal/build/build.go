// Package build orchestrates page builds: it discovers page sources, splits
// front matter, resolves output locations and layouts, renders each page
// through the template engine, and mirrors campaign asset trees into the
// output root.
//
// A build is an aggregate operation. Per-page failures are recorded and
// counted but never abort the run; only configuration-level problems (missing
// source tree, unreadable campaign registry) fail the whole build.
package build

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/forgeline/pagesmith/internal/campaign"
	"github.com/forgeline/pagesmith/internal/config"
	"github.com/forgeline/pagesmith/internal/engine"
	"github.com/forgeline/pagesmith/internal/errors"
	"github.com/forgeline/pagesmith/internal/logging"
	"github.com/forgeline/pagesmith/internal/renderer"
)

// Options configures one build invocation. Zero values fall back to the
// project-standard layout; a nil Files means full discovery, while an empty
// non-nil Files renders no pages but still copies campaign assets.
type Options struct {
	SourceDir string
	OutputDir string
	Campaigns *campaign.Registry
	Engine    *engine.Engine
	Files     []string
	Logger    logging.Logger
}

// Result is the aggregate outcome of a build
type Result struct {
	Built    int
	Errors   int
	Duration time.Duration
}

// Build runs one build. The exit-status policy for Result.Errors > 0 belongs
// to the calling CLI, not here.
func Build(opts Options) (Result, error) {
	start := time.Now()
	ctx := context.Background()

	if opts.SourceDir == "" {
		opts.SourceDir = config.DefaultSourceDir
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}
	log := opts.Logger.WithComponent("build")

	if _, err := os.Stat(opts.SourceDir); err != nil {
		return Result{}, fmt.Errorf("source directory %s: %w", opts.SourceDir, err)
	}
	if opts.Campaigns == nil {
		reg, err := campaign.Load(config.DefaultCampaignsFile)
		if err != nil {
			return Result{}, err
		}
		opts.Campaigns = reg
	}
	if opts.Engine == nil {
		opts.Engine = engine.New(opts.SourceDir, opts.Logger)
	}

	files := opts.Files
	if files == nil {
		var err error
		files, err = Discover(opts.SourceDir)
		if err != nil {
			return Result{}, fmt.Errorf("discovering pages: %w", err)
		}
	}

	collector := errors.NewErrorCollector()
	built := 0
	for _, rel := range files {
		ok := buildPage(ctx, opts, log, collector, rel)
		if ok {
			built++
		}
	}

	copyAssets(ctx, opts, log, collector)

	result := Result{
		Built:    built,
		Errors:   collector.ErrorCount(),
		Duration: time.Since(start),
	}
	log.Info(ctx, "build finished",
		"built", result.Built,
		"errors", result.Errors,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// buildPage renders and writes one page. It returns true when the page was
// built; skips and failures are logged and recorded on the collector.
func buildPage(ctx context.Context, opts Options, log logging.Logger, collector *errors.ErrorCollector, rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))

	fail := func(slug string, err error, stage string) bool {
		collector.Add(errors.PageError{
			Campaign: slug,
			File:     rel,
			Message:  fmt.Sprintf("%s: %v", stage, err),
			Severity: errors.SeverityError,
		})
		log.Error(ctx, err, "page build failed", "file", rel, "stage", stage)
		return false
	}

	slug, _, hasSlug := strings.Cut(rel, "/")
	if !hasSlug {
		collector.Add(errors.PageError{
			File:     rel,
			Message:  "page is not inside a campaign directory",
			Severity: errors.SeverityWarning,
		})
		log.Warn(ctx, nil, "page outside any campaign, skipping", "file", rel)
		return false
	}

	camp, known := opts.Campaigns.Lookup(slug)
	if !known {
		collector.Add(errors.PageError{
			Campaign: slug,
			File:     rel,
			Message:  "no campaign registered for slug",
			Severity: errors.SeverityWarning,
		})
		log.Warn(ctx, nil, "no campaign registered for slug, skipping", "slug", slug, "file", rel)
		return false
	}

	raw, err := os.ReadFile(filepath.Join(opts.SourceDir, filepath.FromSlash(rel)))
	if stderrors.Is(err, fs.ErrNotExist) {
		// The source page is gone; retire its derived output instead of
		// failing the build, so incremental rebuilds converge after a delete.
		removeOutput(ctx, opts, log, rel)
		return false
	}
	if err != nil {
		return fail(slug, err, "read")
	}

	fm := map[string]interface{}{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return fail(slug, err, "parse")
	}
	if _, ok := fm["title"]; !ok {
		fm["title"] = defaultTitle(rel)
	}

	outRel, url := OutputLocation(rel, fm)

	layout, err := readLayout(opts.SourceDir, slug, fm)
	if err != nil {
		return fail(slug, err, "layout")
	}

	html, err := renderer.RenderPage(opts.Engine, renderer.Input{
		Body:        string(body),
		FrontMatter: fm,
		Campaign:    camp.Context(),
		Page:        renderer.PageMeta{URL: url, InputPath: rel},
		Layout:      layout,
		Markdown:    strings.EqualFold(path.Ext(rel), ".md"),
	})
	if err != nil {
		return fail(slug, err, "render")
	}

	outPath := filepath.Join(opts.OutputDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fail(slug, err, "write")
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return fail(slug, err, "write")
	}

	log.Debug(ctx, "page built", "file", rel, "output", outRel, "url", url)
	return true
}

// removeOutput deletes the derived output of a deleted source page. A page
// emitted under a permalink override cannot be derived without its front
// matter; its output stays until the next full build.
func removeOutput(ctx context.Context, opts Options, log logging.Logger, rel string) {
	outRel, _ := OutputLocation(rel, nil)
	outPath := filepath.Join(opts.OutputDir, filepath.FromSlash(outRel))

	if err := os.Remove(outPath); err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			log.Warn(ctx, err, "removing output of deleted page", "file", rel)
		}
		return
	}
	// Drop the page's directory when the removal emptied it.
	_ = os.Remove(filepath.Dir(outPath))
	log.Info(ctx, "output removed for deleted page", "file", rel, "output", outRel)
}

// readLayout loads the page's layout source. A layout that simply does not
// exist renders the page without one; that is not an error.
func readLayout(sourceDir, slug string, fm map[string]interface{}) (string, error) {
	name := DefaultLayout
	if v, ok := fm["page_layout"].(string); ok && v != "" {
		name = v
	}

	data, err := os.ReadFile(filepath.Join(sourceDir, slug, LayoutsDir, filepath.FromSlash(name)))
	if stderrors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading layout %s: %w", name, err)
	}
	return string(data), nil
}

// copyAssets mirrors every campaign's assets directory into the output root,
// regardless of which pages this invocation rendered. Incremental builds must
// still leave assets in place.
func copyAssets(ctx context.Context, opts Options, log logging.Logger, collector *errors.ErrorCollector) {
	for _, camp := range opts.Campaigns.All() {
		src := filepath.Join(opts.SourceDir, camp.Slug, AssetsDir)
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			continue
		}

		dst := filepath.Join(opts.OutputDir, camp.Slug)
		if err := copyTree(src, dst); err != nil {
			collector.Add(errors.PageError{
				Campaign: camp.Slug,
				File:     filepath.ToSlash(filepath.Join(camp.Slug, AssetsDir)),
				Message:  fmt.Sprintf("copying assets: %v", err),
				Severity: errors.SeverityError,
			})
			log.Error(ctx, err, "asset copy failed", "campaign", camp.Slug)
			continue
		}
		log.Debug(ctx, "assets copied", "campaign", camp.Slug)
	}
}

// defaultTitle derives a presentable title from a page's file name when front
// matter declares none. Casers are stateful, so one is built per call.
func defaultTitle(rel string) string {
	base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}
