package marketplace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/nova-cli/nova/internal/errs"
)

const manifestFileName = "marketplace.json"

// LoadManifest opens <dir>/marketplace.json, parses it, and validates it
// against the required schema (spec.md §4.8). It never opens bundle
// source directories — only the manifest document itself.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "missing"}
		}
		return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "missing", Detail: err.Error()}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "json", Detail: err.Error()}
	}

	if m.Name == "" {
		return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "schema", Field: "name"}
	}
	if m.Owner.Name == "" {
		return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "schema", Field: "owner.name"}
	}

	seen := make(map[string]bool, len(m.Bundles))
	for _, b := range m.Bundles {
		if b.Name == "" {
			return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "schema", Field: "bundles[].name"}
		}
		if b.Source == "" {
			return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "schema", Field: "bundles[].source"}
		}
		if seen[b.Name] {
			return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "duplicate_bundle", Name: b.Name}
		}
		seen[b.Name] = true

		if pathEscapes(b.Source) {
			return nil, &errs.MarketplaceInvalidManifest{Source: dir, Reason: "path_escape", Field: "bundles[].source", Detail: b.Source}
		}
	}

	return &m, nil
}

// pathEscapes reports whether a bundle-declared relative source path
// resolves outside the marketplace root once cleaned.
func pathEscapes(relPath string) bool {
	if filepath.IsAbs(relPath) {
		return true
	}
	cleaned := filepath.Clean(relPath)
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
