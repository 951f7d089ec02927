package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		changed string
		want    Plan
	}{
		{
			name:    "markup page rebuilds itself",
			changed: "src/summer/checkout.html",
			want:    Plan{Page: "summer/checkout.html"},
		},
		{
			name:    "markdown page rebuilds itself",
			changed: "src/summer/faq.md",
			want:    Plan{Page: "summer/faq.md"},
		},
		{
			name:    "layout change rebuilds the campaign",
			changed: "src/summer/_layouts/base.html",
			want:    Plan{SlugWide: true, Slug: "summer"},
		},
		{
			name:    "include change rebuilds the campaign",
			changed: "src/summer/_includes/cta.html",
			want:    Plan{SlugWide: true, Slug: "summer"},
		},
		{
			name:    "asset change only triggers the copy",
			changed: "src/summer/assets/main.css",
			want:    Plan{AssetsOnly: true},
		},
		{
			name:    "path outside the source root rebuilds everything",
			changed: "elsewhere/summer/index.html",
			want:    Plan{All: true},
		},
		{
			name:    "reserved directory at the root rebuilds everything",
			changed: "src/_layouts",
			want:    Plan{All: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify("src", tt.changed))
		})
	}
}

func TestMerge(t *testing.T) {
	page := Plan{Page: "summer/checkout.html"}
	otherPage := Plan{Page: "summer/index.html"}
	winterPage := Plan{Page: "winter/index.html"}
	summerWide := Plan{SlugWide: true, Slug: "summer"}
	winterWide := Plan{SlugWide: true, Slug: "winter"}
	assets := Plan{AssetsOnly: true}
	all := Plan{All: true}

	tests := []struct {
		name string
		a, b Plan
		want Plan
	}{
		{"zero absorbs into anything", Plan{}, page, page},
		{"anything absorbs zero", summerWide, Plan{}, summerWide},
		{"identical plans collapse", page, page, page},
		{"all dominates", all, page, all},
		{"assets defer to a render scope", assets, page, page},
		{"render scope keeps assets covered", summerWide, assets, summerWide},
		{"page under same slug-wide is absorbed", summerWide, page, summerWide},
		{"page under same slug-wide is absorbed either way", page, summerWide, summerWide},
		{"two distinct pages escalate", page, otherPage, all},
		{"page under a different campaign escalates", summerWide, winterPage, all},
		{"two campaign-wide scopes escalate", summerWide, winterWide, all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
		})
	}
}

func TestMerge_Commutative(t *testing.T) {
	plans := []Plan{
		{},
		{All: true},
		{AssetsOnly: true},
		{SlugWide: true, Slug: "summer"},
		{SlugWide: true, Slug: "winter"},
		{Page: "summer/index.html"},
		{Page: "winter/index.html"},
	}
	for _, a := range plans {
		for _, b := range plans {
			assert.Equal(t, Merge(a, b), Merge(b, a), "Merge(%+v, %+v)", a, b)
		}
	}
}

func TestPlanFiles(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"summer/index.html",
		"summer/checkout.html",
		"winter/index.html",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	t.Run("zero plan renders nothing", func(t *testing.T) {
		files, err := Plan{}.Files(root)
		require.NoError(t, err)
		require.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("assets-only renders nothing", func(t *testing.T) {
		files, err := Plan{AssetsOnly: true}.Files(root)
		require.NoError(t, err)
		require.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("all defers to full discovery", func(t *testing.T) {
		files, err := Plan{All: true}.Files(root)
		require.NoError(t, err)
		assert.Nil(t, files)
	})

	t.Run("single page", func(t *testing.T) {
		files, err := Plan{Page: "summer/checkout.html"}.Files(root)
		require.NoError(t, err)
		assert.Equal(t, []string{"summer/checkout.html"}, files)
	})

	t.Run("slug-wide filters discovery by campaign", func(t *testing.T) {
		files, err := Plan{SlugWide: true, Slug: "summer"}.Files(root)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"summer/index.html", "summer/checkout.html"}, files)
	})
}
