//go:build property

package build

import (
	"path"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestOutputLocationProperties validates the derivation invariants that hold
// for every page regardless of its name or nesting depth.
func TestOutputLocationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	segment := gen.RegexMatch(`[a-z][a-z0-9-]{0,11}`)

	// Property: every derived output path is an index.html, and its URL is the
	// output path's directory with leading and trailing slashes.
	properties.Property("output is index.html under the URL directory", prop.ForAll(
		func(slug, name string) bool {
			rel := slug + "/" + name + ".html"
			outRel, url := OutputLocation(rel, nil)

			if path.Base(outRel) != "index.html" {
				return false
			}
			if !strings.HasPrefix(url, "/") || !strings.HasSuffix(url, "/") {
				return false
			}
			return "/"+outRel == url+"index.html"
		},
		segment, segment,
	))

	// Property: the derived output path never escapes the output root.
	properties.Property("output path stays relative", prop.ForAll(
		func(slug, name string) bool {
			outRel, _ := OutputLocation(slug+"/"+name+".md", nil)
			clean := path.Clean(outRel)
			return clean == outRel && !strings.HasPrefix(clean, "..") && !strings.HasPrefix(clean, "/")
		},
		segment, segment,
	))

	// Property: a permalink always wins over derivation, normalized to one
	// leading and one trailing slash.
	properties.Property("permalink overrides derivation", prop.ForAll(
		func(slug, name, link string) bool {
			fm := map[string]interface{}{"permalink": "/" + link + "/"}
			outRel, url := OutputLocation(slug+"/"+name+".html", fm)
			return outRel == link+"/index.html" && url == "/"+link+"/"
		},
		segment, segment, segment,
	))

	// Property: derivation is a pure function of its inputs.
	properties.Property("derivation is deterministic", prop.ForAll(
		func(slug, name string) bool {
			rel := slug + "/" + name + ".html"
			out1, url1 := OutputLocation(rel, nil)
			out2, url2 := OutputLocation(rel, nil)
			return out1 == out2 && url1 == url2
		},
		segment, segment,
	))

	properties.TestingRun(t)
}
