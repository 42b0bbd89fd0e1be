// Package scope defines the configuration schema shared by all three scope
// files (global, project, user) and by the merged effective configuration.
// Every field is optional so that an absent file, an empty file, and a
// partial file are all valid documents.
package scope

import "regexp"

// Scope tags which configuration layer a value came from. Effective is not
// a stored scope; it denotes the result of merging the three stored scopes.
type Scope string

const (
	Global    Scope = "global"
	Project   Scope = "project"
	User      Scope = "user"
	Effective Scope = "effective"
)

// NamePattern is the validation rule for marketplace names: 1-100 chars,
// letters, digits, underscore, hyphen.
var NamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// SourceType discriminates MarketplaceSource's active variant. URL is
// reserved (see spec.md §9 Open Questions): the source parser never
// produces it and the scope reader's validation rejects it.
type SourceType string

const (
	SourceGitHub SourceType = "github"
	SourceGit    SourceType = "git"
	SourceLocal  SourceType = "local"
	SourceURL    SourceType = "url" // reserved, not implemented
)

// MarketplaceSource is the tagged variant describing how a marketplace was
// (or should be) acquired. Only one of Repo/URL/Path is populated,
// matching Type.
type MarketplaceSource struct {
	Type SourceType `yaml:"type" json:"type" validate:"required,oneof=github git local"`
	Repo string     `yaml:"repo,omitempty" json:"repo,omitempty"`
	URL  string     `yaml:"url,omitempty" json:"url,omitempty"`
	Path string     `yaml:"path,omitempty" json:"path,omitempty"`
}

// String renders the source the way a pretty-printer would show it to a
// user (used in error messages and `marketplace show` output).
func (s MarketplaceSource) String() string {
	switch s.Type {
	case SourceGitHub:
		return "github:" + s.Repo
	case SourceGit:
		return s.URL
	case SourceLocal:
		return s.Path
	default:
		return string(s.Type)
	}
}

// MarketplaceConfigEntry is one line of a scope file's `marketplaces` list.
type MarketplaceConfigEntry struct {
	Name   string            `yaml:"name" json:"name" validate:"required"`
	Source MarketplaceSource `yaml:"source" json:"source" validate:"required"`
}

// LoggingConfig is only meaningful in the Global scope; its presence in
// Project or User is a hard validation error (spec.md §4.2).
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Config is the schema shared by ScopeConfig (Global/Project/User) and
// EffectiveConfig, following the teacher's Config/ConfigV2 alias pattern:
// one struct, several names for the roles it plays.
type Config struct {
	Marketplaces []MarketplaceConfigEntry `yaml:"marketplaces,omitempty" json:"marketplaces,omitempty"`
	Logging      *LoggingConfig           `yaml:"logging,omitempty" json:"logging,omitempty"`

	// Extra preserves unknown top-level keys verbatim so a write-back
	// never silently drops user content. Populated by the scope reader,
	// consulted by the config mutator when it rewrites a file.
	Extra map[string]any `yaml:"-" json:"-"`

	// Environment is populated only on EffectiveConfig by the env
	// overlay (NOVA_APP__ENVIRONMENT); always empty on a stored scope.
	Environment string `yaml:"-" json:"-"`
}

// ScopeConfig is the type used for a single stored scope file.
type ScopeConfig = Config

// EffectiveConfig is the type used for the merged, env-overlaid result.
type EffectiveConfig = Config

// Clone returns a deep-enough copy for merge operations to mutate safely.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	out := &Config{
		Environment: c.Environment,
	}
	if c.Logging != nil {
		l := *c.Logging
		out.Logging = &l
	}
	if len(c.Marketplaces) > 0 {
		out.Marketplaces = make([]MarketplaceConfigEntry, len(c.Marketplaces))
		copy(out.Marketplaces, c.Marketplaces)
	}
	if len(c.Extra) > 0 {
		out.Extra = make(map[string]any, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
