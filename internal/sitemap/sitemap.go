// Package sitemap holds the static, versioned sitemap definition and the
// synchronizer that reconciles it into the catalog store. The definition
// is the source of truth for Module/Page membership; features and test
// cases are authored separately against the reconciled structure.
package sitemap

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sitemap.yaml
var defaultDefinition []byte

// Definition is the hand-authored, ordered list of module and page
// groupings. Slugs are stable identifiers: they anchor idempotent
// reconciliation and must never change once assigned.
type Definition struct {
	Version int                `yaml:"version"`
	Modules []ModuleDefinition `yaml:"modules"`
}

// ModuleDefinition describes one top-level product area.
type ModuleDefinition struct {
	Slug        string           `yaml:"slug"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Items       []ItemDefinition `yaml:"items"`
}

// ItemDefinition describes one navigable page within a module. The
// persisted page slug is derived as "<moduleSlug>-<id>".
type ItemDefinition struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Route string `yaml:"route"`
}

// PageSlug derives the composite persisted slug for an item.
func PageSlug(moduleSlug, itemID string) string {
	return moduleSlug + "-" + itemID
}

// Load reads a definition from the given path, or the embedded default
// definition when path is empty.
func Load(path string) (*Definition, error) {
	data := defaultDefinition
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sitemap definition: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap definition: %w", err)
	}

	seen := make(map[string]bool, len(def.Modules))
	for _, m := range def.Modules {
		if m.Slug == "" {
			return nil, fmt.Errorf("sitemap module %q has no slug", m.Name)
		}
		if seen[m.Slug] {
			return nil, fmt.Errorf("duplicate module slug: %s", m.Slug)
		}
		seen[m.Slug] = true

		items := make(map[string]bool, len(m.Items))
		for _, it := range m.Items {
			if it.ID == "" {
				return nil, fmt.Errorf("sitemap item %q in module %s has no id", it.Name, m.Slug)
			}
			if items[it.ID] {
				return nil, fmt.Errorf("duplicate item id %s in module %s", it.ID, m.Slug)
			}
			items[it.ID] = true
		}
	}
	return &def, nil
}
