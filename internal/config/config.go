// Package config implements the scope reader (C2) and config store façade
// (C5): loading a single YAML scope file into a typed model with structured
// errors, and composing path resolution, reading, merging, and the env
// overlay behind the ConfigStore contract.
package config

import (
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/nova-cli/nova/internal/errs"
	"github.com/nova-cli/nova/internal/scope"
)

var validate = validator.New()

// knownTopLevelKeys are the keys ReadScope understands; anything else is
// preserved in Config.Extra and reported through the warnings slice.
var knownTopLevelKeys = map[string]bool{
	"marketplaces": true,
	"logging":      true,
}

// ReadScope loads path as the given scope. It returns (nil, nil, nil) when
// the file is absent — callers distinguish "not present" from "present but
// empty" by this nil, not by a zero-value Config. An empty file or a YAML
// null document yields a non-nil default Config. Warnings report unknown
// top-level keys; they never cause a read to fail on their own (promotion
// to a hard error is a ConfigStore-level policy, driven by
// NOVA_CONFIG__STRICT).
func ReadScope(path string, sc scope.Scope) (*scope.Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		// yaml/v3 surfaces syntax errors as plain *yaml.TypeError or
		// scanner errors without structured line/column; the message
		// itself already includes "line N" when available.
		return nil, nil, &errs.ConfigYaml{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &scope.Config{}, nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return &scope.Config{}, nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, &errs.ConfigYaml{Scope: errsScope(sc), Path: path, Message: "expected a mapping at the document root"}
	}

	cfg := &scope.Config{Extra: map[string]any{}}
	var warnings []string

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]

		switch key.Value {
		case "marketplaces":
			var entries []scope.MarketplaceConfigEntry
			if err := val.Decode(&entries); err != nil {
				return nil, nil, &errs.ConfigYaml{Scope: errsScope(sc), Path: path, Line: val.Line, Column: val.Column, Message: err.Error()}
			}
			cfg.Marketplaces = entries
		case "logging":
			if sc != scope.Global {
				return nil, nil, &errs.ConfigValidation{Scope: errsScope(sc), Path: path, Field: "logging", Message: "logging is only permitted in the global scope"}
			}
			var lc scope.LoggingConfig
			if err := val.Decode(&lc); err != nil {
				return nil, nil, &errs.ConfigYaml{Scope: errsScope(sc), Path: path, Line: val.Line, Column: val.Column, Message: err.Error()}
			}
			cfg.Logging = &lc
		default:
			var raw any
			if err := val.Decode(&raw); err != nil {
				return nil, nil, &errs.ConfigYaml{Scope: errsScope(sc), Path: path, Line: val.Line, Column: val.Column, Message: err.Error()}
			}
			cfg.Extra[key.Value] = raw
			if !knownTopLevelKeys[key.Value] {
				warnings = append(warnings, key.Value)
			}
		}
	}

	if err := validateScope(cfg, sc, path); err != nil {
		return nil, nil, err
	}

	return cfg, warnings, nil
}

func validateScope(cfg *scope.Config, sc scope.Scope, path string) error {
	seen := make(map[string]bool, len(cfg.Marketplaces))
	for _, m := range cfg.Marketplaces {
		if !scope.NamePattern.MatchString(m.Name) {
			return &errs.ConfigValidation{Scope: errsScope(sc), Path: path, Field: "marketplaces[].name", Message: "name " + quote(m.Name) + " must match [A-Za-z0-9_-]{1,100}"}
		}
		if seen[m.Name] {
			return &errs.ConfigValidation{Scope: errsScope(sc), Path: path, Field: "marketplaces[].name", Message: "duplicate marketplace name " + quote(m.Name)}
		}
		seen[m.Name] = true

		if err := validateSourceShape(m.Source); err != nil {
			return &errs.ConfigValidation{Scope: errsScope(sc), Path: path, Field: "marketplaces[].source", Message: err.Error()}
		}
		if err := validate.Struct(m.Source); err != nil {
			return &errs.ConfigValidation{Scope: errsScope(sc), Path: path, Field: "marketplaces[].source", Message: err.Error()}
		}
	}
	return nil
}

func validateSourceShape(s scope.MarketplaceSource) error {
	switch s.Type {
	case scope.SourceGitHub:
		if s.Repo == "" {
			return errors.New("github source requires repo")
		}
	case scope.SourceGit:
		if s.URL == "" {
			return errors.New("git source requires url")
		}
	case scope.SourceLocal:
		if s.Path == "" {
			return errors.New("local source requires path")
		}
	case scope.SourceURL:
		return errors.New("the url source type is reserved and not yet implemented")
	}
	return nil
}

func errsScope(sc scope.Scope) errs.Scope {
	switch sc {
	case scope.Global:
		return errs.ScopeGlobal
	case scope.Project:
		return errs.ScopeProject
	case scope.User:
		return errs.ScopeUser
	default:
		return errs.Scope(sc)
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}
