// Package engine adapts html/template for campaign page rendering.
//
// The adapter binds one Engine to a source root per build/serve session and
// deliberately performs no template caching: include and layout files are
// re-read from disk on every render call, which is what makes incremental
// rebuilds pick up edits to shared files without a process restart.
//
// Template functions are not ambient. Every function map is constructed per
// render call with the active render context captured explicitly, so a filter
// can resolve the campaign currently in scope without reading process-global
// state, and concurrent renders can never observe each other's context.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/forgeline/pagesmith/internal/logging"
)

// includesDir is the per-campaign directory include files resolve under.
const includesDir = "_includes"

// maxIncludeDepth bounds include nesting so a cyclic include renders empty
// instead of overflowing the stack.
const maxIncludeDepth = 16

// schemeRE matches absolute URLs (any URL scheme prefix).
var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Context is the variable bindings visible to one template evaluation. It is
// assembled fresh per render call and never shared across concurrent renders.
type Context map[string]interface{}

// Engine wraps html/template with campaign-aware template functions
type Engine struct {
	root   string
	md     goldmark.Markdown
	logger logging.Logger
}

// New creates an engine bound to a source root
func New(root string, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}

	return &Engine{
		root: root,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		logger: logger.WithComponent("engine"),
	}
}

// Root returns the source root the engine is bound to
func (e *Engine) Root() string {
	return e.root
}

// Render parses src with the function map bound to rc and executes it against
// rc. Parsing per call is intentional; see the package comment.
func (e *Engine) Render(src string, rc Context) (string, error) {
	tmpl, err := template.New("page").Funcs(e.funcs(rc, 0)).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, rc); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// Markdown converts a markdown document to HTML
func (e *Engine) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// funcs builds the per-render function map. rc is captured so every function
// receives the active render context explicitly; depth tracks include nesting.
func (e *Engine) funcs(rc Context, depth int) template.FuncMap {
	return template.FuncMap{
		"asset":       func(name string) string { return assetPath(rc, name) },
		"link":        func(name string) string { return prettyLink(rc, name) },
		"safe":        safeHTML,
		"include":     func(name string, pairs ...interface{}) template.HTML { return e.include(rc, depth, name, pairs...) },
		"markdownify": e.markdownify,
	}
}

// campaignSlug resolves the slug of the campaign in the current render
// context, if one is in scope.
func campaignSlug(rc Context) (string, bool) {
	camp, ok := rc["campaign"].(map[string]interface{})
	if !ok {
		return "", false
	}
	slug, ok := camp["slug"].(string)
	return slug, ok && slug != ""
}

// assetPath rewrites a bare asset filename to the campaign's asset namespace.
// Absolute URLs pass through; with no campaign in scope the name is returned
// unchanged rather than failing the render.
func assetPath(rc Context, name string) string {
	if schemeRE.MatchString(name) {
		return name
	}
	slug, ok := campaignSlug(rc)
	if !ok {
		return name
	}
	return "/" + slug + "/" + name
}

// prettyLink rewrites a page filename to its pretty URL under the campaign
// slug: always extensionless with a trailing slash, with index collapsing to
// the campaign root.
func prettyLink(rc Context, name string) string {
	if strings.HasPrefix(name, "#") || strings.HasPrefix(name, "/") || schemeRE.MatchString(name) {
		return name
	}
	slug, ok := campaignSlug(rc)
	if !ok {
		return name
	}
	trimmed := strings.TrimSuffix(name, ".html")
	if trimmed == "index" {
		return "/" + slug + "/"
	}
	return "/" + slug + "/" + trimmed + "/"
}

// safeHTML marks a value as pre-escaped HTML. The value itself is never
// altered; templates pipe through it to opt out of contextual escaping.
func safeHTML(v interface{}) template.HTML {
	switch s := v.(type) {
	case template.HTML:
		return s
	case string:
		return template.HTML(s)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}

// markdownify converts a markdown fragment to HTML inside a template
func (e *Engine) markdownify(v interface{}) (template.HTML, error) {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	out, err := e.Markdown(s)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

// include renders <slug>/_includes/<name> with an include-local scope built
// from alternating key/value arguments. Each key is exposed both as a
// top-level variable and as a field of the "include" container, and the
// caller's surrounding bindings stay readable. The scope is a fresh map per
// call, so it is released when the call returns regardless of render outcome.
//
// A missing campaign renders nothing; a missing or unparsable include file is
// logged and renders empty so the surrounding page still completes. Nesting
// past maxIncludeDepth renders empty, which breaks include cycles.
func (e *Engine) include(rc Context, depth int, name string, pairs ...interface{}) template.HTML {
	slug, ok := campaignSlug(rc)
	if !ok {
		return ""
	}
	if depth >= maxIncludeDepth {
		e.logger.Warn(context.Background(), nil, "include depth limit reached", "include", name, "campaign", slug)
		return ""
	}

	// Bare include names default to the markup extension.
	if filepath.Ext(name) == "" {
		name += ".html"
	}
	path := filepath.Join(e.root, slug, includesDir, filepath.FromSlash(name))
	src, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn(context.Background(), err, "include not readable", "include", name, "campaign", slug)
		return ""
	}

	scope := make(Context, len(rc)+len(pairs)/2+1)
	for k, v := range rc {
		scope[k] = v
	}
	local := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			e.logger.Warn(context.Background(), nil, "include argument key is not a string", "include", name)
			continue
		}
		local[key] = pairs[i+1]
		scope[key] = pairs[i+1]
	}
	scope["include"] = local

	tmpl, err := template.New(name).Funcs(e.funcs(scope, depth+1)).Parse(string(src))
	if err != nil {
		e.logger.Warn(context.Background(), err, "include failed to parse", "include", name, "campaign", slug)
		return ""
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, scope); err != nil {
		e.logger.Warn(context.Background(), err, "include failed to render", "include", name, "campaign", slug)
		return ""
	}

	return template.HTML(buf.String())
}
