package build

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// Directory names reserved inside a campaign's source tree.
const (
	LayoutsDir  = "_layouts"
	IncludesDir = "_includes"
	AssetsDir   = "assets"

	// DefaultLayout is used when front matter declares no page_layout.
	DefaultLayout = "base.html"
)

// IsMarkup reports whether a path names a renderable page source
func IsMarkup(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".md":
		return true
	}
	return false
}

// hasReservedSegment reports whether any segment of a slash-separated path is
// a layouts or includes directory.
func hasReservedSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg == LayoutsDir || seg == IncludesDir {
			return true
		}
	}
	return false
}

// Discover walks the source root and returns all markup files as
// source-relative slash paths, excluding layout and include trees and
// anything under a dot-directory.
func Discover(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != root && (strings.HasPrefix(name, ".") || name == LayoutsDir || name == IncludesDir) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !IsMarkup(p) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// OutputLocation derives the output file (relative to the output root) and the
// public URL for a page. A permalink in front matter overrides derivation;
// otherwise an index page collapses to its campaign root and any other page
// becomes a pretty URL backed by its own index.html.
func OutputLocation(rel string, fm map[string]interface{}) (outRel, url string) {
	if p, ok := fm["permalink"].(string); ok && p != "" {
		p = strings.Trim(p, "/")
		return path.Join(p, "index.html"), "/" + p + "/"
	}

	rel = path.Clean(filepath.ToSlash(rel))
	name := strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(name) == "index" {
		name = path.Dir(name)
	}
	return path.Join(name, "index.html"), "/" + name + "/"
}
