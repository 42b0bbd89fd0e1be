// Package marketplace implements the acquisition engine: parsing a source
// string (C6), fetching it into a working directory (C7), validating its
// manifest (C8), persisting installed-marketplace state (C9), and the
// add/remove/list/get façade that orchestrates all of it (C11).
package marketplace

import (
	"time"

	"github.com/nova-cli/nova/internal/scope"
)

// Owner is the manifest's declared point of contact.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// BundleEntry is one catalog entry inside a marketplace manifest. Source is
// a path relative to the marketplace root; this package never opens it —
// verifying the bundle tree itself belongs to a future bundle-installation
// feature.
type BundleEntry struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Version     string `json:"version,omitempty"`
	Author      *Owner `json:"author,omitempty"`
}

// Manifest is the parsed form of marketplace.json.
type Manifest struct {
	Name        string        `json:"name"`
	Owner       Owner         `json:"owner"`
	Description string        `json:"description,omitempty"`
	Bundles     []BundleEntry `json:"bundles,omitempty"`
}

// Info is the public projection returned by add/remove/list/get.
type Info struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Source      scope.MarketplaceSource `json:"source"`
	BundleCount int                     `json:"bundle_count"`
}

// State is one record in data.json, keyed externally by Name. Description
// and BundleCount are cached from the manifest at acquisition time
// (supplementing spec.md's bare state record, see DESIGN.md) so that list()
// does not need to re-open every marketplace.json on every call.
type State struct {
	Name            string                  `json:"name"`
	Source          scope.MarketplaceSource `json:"source"`
	InstallLocation string                  `json:"installLocation"`
	LastUpdated     time.Time               `json:"lastUpdated"`
	Description     string                  `json:"description,omitempty"`
	BundleCount     int                     `json:"bundleCount"`
}
