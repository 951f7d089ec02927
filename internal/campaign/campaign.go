// Package campaign manages the campaign registry: the set of isolated,
// independently-deployable content trees that pages are built for.
//
// The registry is loaded once per build invocation from a YAML document and is
// treated as read-only by the build orchestrator and the template engine. A
// campaign's slug is its unique identifier and doubles as the top-level output
// directory and the namespace for its assets, layouts, and includes.
package campaign

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Campaign is one registry entry. Name and Slug are required; any other keys
// present in the registry document are preserved in Extra and exposed to
// templates alongside them.
type Campaign struct {
	Name  string
	Slug  string
	Extra map[string]interface{}
}

// UnmarshalYAML decodes a registry entry, keeping unknown keys in Extra.
func (c *Campaign) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if name, ok := raw["name"].(string); ok {
		c.Name = name
	}
	if slug, ok := raw["slug"].(string); ok {
		c.Slug = slug
	}
	delete(raw, "name")
	delete(raw, "slug")
	c.Extra = raw

	return nil
}

// Context returns the campaign as a render-context value. Keys are the
// registry document's own keys, so templates address them as written
// ({{ .campaign.name }}, {{ .campaign.cta_text }}, ...).
func (c Campaign) Context() map[string]interface{} {
	ctx := make(map[string]interface{}, len(c.Extra)+2)
	for k, v := range c.Extra {
		ctx[k] = v
	}
	ctx["name"] = c.Name
	ctx["slug"] = c.Slug
	return ctx
}

// Registry holds all campaigns for one build invocation
type Registry struct {
	campaigns []Campaign
	bySlug    map[string]int
}

// NewRegistry builds a registry from a plain list of campaigns. Slugs must be
// unique and non-empty across the whole list.
func NewRegistry(campaigns []Campaign) (*Registry, error) {
	r := &Registry{
		campaigns: campaigns,
		bySlug:    make(map[string]int, len(campaigns)),
	}

	for i, c := range campaigns {
		if c.Slug == "" {
			return nil, fmt.Errorf("campaign %q has no slug", c.Name)
		}
		if _, exists := r.bySlug[c.Slug]; exists {
			return nil, fmt.Errorf("duplicate campaign slug %q", c.Slug)
		}
		r.bySlug[c.Slug] = i
	}

	return r, nil
}

// Load reads the campaign registry document from path. A missing or malformed
// registry file is a fatal configuration error.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading campaign registry %s: %w", path, err)
	}

	var campaigns []Campaign
	if err := yaml.Unmarshal(data, &campaigns); err != nil {
		return nil, fmt.Errorf("parsing campaign registry %s: %w", path, err)
	}

	return NewRegistry(campaigns)
}

// Lookup retrieves a campaign by slug
func (r *Registry) Lookup(slug string) (Campaign, bool) {
	i, ok := r.bySlug[slug]
	if !ok {
		return Campaign{}, false
	}
	return r.campaigns[i], true
}

// All returns all registered campaigns
func (r *Registry) All() []Campaign {
	out := make([]Campaign, len(r.campaigns))
	copy(out, r.campaigns)
	return out
}

// Count returns the number of registered campaigns
func (r *Registry) Count() int {
	return len(r.campaigns)
}
