package build

import (
	"path/filepath"
	"strings"
)

// Plan is the rebuild scope derived from one or more changed paths.
//
// The zero Plan means "nothing to do". Exactly one of the scope fields is
// meaningful on a non-zero plan: All rebuilds every page, Slug (with SlugWide)
// rebuilds every page of one campaign, Page rebuilds a single page, and
// AssetsOnly re-copies asset trees without rendering anything.
type Plan struct {
	All        bool
	SlugWide   bool
	Slug       string
	Page       string
	AssetsOnly bool
}

// IsZero reports whether the plan carries no work
func (p Plan) IsZero() bool {
	return p == Plan{}
}

// Classify maps one changed path to a rebuild scope. A change under a layouts
// or includes directory rebuilds every page of the affected campaign, since
// any of them may reference it; a changed markup page rebuilds only itself;
// anything else is an asset and only triggers the asset copy. Paths that
// cannot be related to the source root fall back to a full rebuild.
func Classify(sourceDir, changed string) Plan {
	rel, err := filepath.Rel(sourceDir, changed)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Plan{All: true}
	}
	rel = filepath.ToSlash(rel)

	slug, _, hasSlug := strings.Cut(rel, "/")
	if hasReservedSegment(rel) {
		if !hasSlug {
			return Plan{All: true}
		}
		return Plan{SlugWide: true, Slug: slug}
	}
	if IsMarkup(rel) {
		return Plan{Page: rel}
	}
	return Plan{AssetsOnly: true}
}

// Merge combines two plans into the smallest scope covering both. Scopes that
// do not nest cleanly escalate to a full rebuild rather than tracking an
// arbitrary set.
func Merge(a, b Plan) Plan {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case a == b:
		return a
	case a.All || b.All:
		return Plan{All: true}
	case a.AssetsOnly:
		return b
	case b.AssetsOnly:
		return a
	}

	// Two render scopes left. A page change nested under a slug-wide rebuild
	// of the same campaign is already covered.
	if a.SlugWide && b.Page != "" && pageSlug(b.Page) == a.Slug {
		return a
	}
	if b.SlugWide && a.Page != "" && pageSlug(a.Page) == b.Slug {
		return b
	}
	return Plan{All: true}
}

// Files resolves the plan to the page subset to hand to Build. nil means full
// discovery; an empty non-nil slice renders no pages (asset copy still runs).
func (p Plan) Files(sourceDir string) ([]string, error) {
	switch {
	case p.IsZero() || p.AssetsOnly:
		return []string{}, nil
	case p.All:
		return nil, nil
	case p.Page != "":
		return []string{p.Page}, nil
	}

	all, err := Discover(sourceDir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(all))
	for _, f := range all {
		if pageSlug(f) == p.Slug {
			files = append(files, f)
		}
	}
	return files, nil
}

func pageSlug(rel string) string {
	slug, _, _ := strings.Cut(rel, "/")
	return slug
}
