// Package merge combines the three stored scopes into one EffectiveConfig
// (C3) and applies the environment-variable overlay (C4). Unlike the
// teacher's 3-way conflict merge, precedence here is total order —
// user > project > global — except for the marketplaces list, which is
// concatenated rather than overridden.
package merge

import (
	"os"

	"github.com/nova-cli/nova/internal/errs"
	"github.com/nova-cli/nova/internal/scope"
)

// Merge combines optional global, project, and user scopes into one
// EffectiveConfig. Any argument may be nil, meaning that scope was absent;
// merge(nil, x) behaves as the identity so the operation is associative:
// Merge(Merge(g, p), u) ≡ Merge(g, Merge(p, u)).
func Merge(global, project, user *scope.Config) (*scope.Config, error) {
	out := &scope.Config{Extra: map[string]any{}}

	scopesInOrder := []struct {
		name string
		cfg  *scope.Config
	}{
		{"global", global},
		{"project", project},
		{"user", user},
	}

	// marketplaces: concatenate in scope order, then check uniqueness.
	origin := make(map[string]string, 8)
	for _, s := range scopesInOrder {
		if s.cfg == nil {
			continue
		}
		for _, m := range s.cfg.Marketplaces {
			if prior, dup := origin[m.Name]; dup {
				return nil, &errs.ConfigValidation{
					Scope:   errs.Scope("effective"),
					Field:   "marketplaces[].name",
					Message: "marketplace name \"" + m.Name + "\" is defined in both " + prior + " and " + s.name + " scopes",
				}
			}
			origin[m.Name] = s.name
			out.Marketplaces = append(out.Marketplaces, m)
		}
	}

	// logging: only ever set in global, so precedence collapses to "take
	// global's value if present."
	if global != nil && global.Logging != nil {
		lc := *global.Logging
		out.Logging = &lc
	}

	// Extra: recursive map merge with user > project > global, applied in
	// ascending precedence so later scopes overwrite earlier ones field by
	// field; non-map values at higher precedence replace lower entirely.
	for _, s := range scopesInOrder {
		if s.cfg == nil || len(s.cfg.Extra) == 0 {
			continue
		}
		out.Extra = mergeMaps(out.Extra, s.cfg.Extra)
	}

	return out, nil
}

// mergeMaps deep-merges override into base, recursing into nested
// map[string]any values and replacing everything else wholesale —
// including lists, per spec.md §4.3 ("for lists other than marketplaces,
// the higher-precedence value replaces the lower entirely").
func mergeMaps(base, override map[string]any) map[string]any {
	if base == nil {
		base = map[string]any{}
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if existing, ok := out[k]; ok {
			existingMap, eok := existing.(map[string]any)
			overrideMap, ook := v.(map[string]any)
			if eok && ook {
				out[k] = mergeMaps(existingMap, overrideMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// Environment variable names recognized by ApplyEnvOverlay.
const (
	EnvAppEnvironment = "NOVA_APP__ENVIRONMENT"
	EnvConfigStrict   = "NOVA_CONFIG__STRICT"
	EnvDataHome       = "NOVA_DATA_HOME"
)

// EnvOverlay is the outcome of reading the recognized NOVA_* variables.
// DataHome reports NOVA_DATA_HOME; the path resolver reads that variable
// directly rather than this field. Strict is consulted by the config store
// façade to decide whether to promote unknown-key warnings.
// Unrecognized NOVA_* variables are ignored, matching spec.md §4.4.
type EnvOverlay struct {
	Environment string
	Strict      bool
	DataHome    string
}

// ApplyEnvOverlay reads the environment and applies NOVA_APP__ENVIRONMENT to
// cfg.Environment, returning the overlay outcome for the caller to act on
// (strict-mode promotion, data-root override) since those do not mutate the
// configuration value itself.
func ApplyEnvOverlay(cfg *scope.Config) EnvOverlay {
	ov := EnvOverlay{
		Environment: os.Getenv(EnvAppEnvironment),
		DataHome:    os.Getenv(EnvDataHome),
	}
	if v := os.Getenv(EnvConfigStrict); v == "true" || v == "1" {
		ov.Strict = true
	}
	if cfg != nil {
		cfg.Environment = ov.Environment
	}
	return ov
}
