package config

import (
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/nova-cli/nova/internal/errs"
	"github.com/nova-cli/nova/internal/scope"
)

// AddEntry appends entry to the marketplaces list of the scope file at
// path, creating the file (and its parent directory) if absent. It fails
// if a marketplace with the same name already exists in that scope's file;
// the broader check against the entire effective config is the façade's
// job (spec.md §4.10). The write is atomic: temp file, then rename.
func AddEntry(path string, sc scope.Scope, entry scope.MarketplaceConfigEntry) error {
	cfg, _, err := ReadScope(path, sc)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &scope.Config{}
	}
	for _, m := range cfg.Marketplaces {
		if m.Name == entry.Name {
			return &errs.ConfigValidation{Scope: errsScope(sc), Path: path, Field: "marketplaces[].name", Message: "marketplace \"" + entry.Name + "\" already exists in this scope"}
		}
	}
	cfg.Marketplaces = append(cfg.Marketplaces, entry)
	return writeScope(path, sc, cfg)
}

// RemoveEntry removes the marketplace named name from the scope file at
// path. If removal empties the marketplaces list, the key is kept with an
// empty sequence rather than deleted, to avoid re-introducing defaults on
// next read (spec.md §4.10). Returns the removed entry so callers can
// report a before-removal snapshot.
func RemoveEntry(path string, sc scope.Scope, name string) (scope.MarketplaceConfigEntry, error) {
	cfg, _, err := ReadScope(path, sc)
	if err != nil {
		return scope.MarketplaceConfigEntry{}, err
	}
	if cfg == nil {
		return scope.MarketplaceConfigEntry{}, &errs.ConfigNotFound{Scope: errsScope(sc), ExpectedPath: path}
	}

	idx := -1
	for i, m := range cfg.Marketplaces {
		if m.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return scope.MarketplaceConfigEntry{}, &errs.MarketplaceNotFound{NameOrSource: name}
	}

	removed := cfg.Marketplaces[idx]
	remaining := make([]scope.MarketplaceConfigEntry, 0, len(cfg.Marketplaces)-1)
	remaining = append(remaining, cfg.Marketplaces[:idx]...)
	remaining = append(remaining, cfg.Marketplaces[idx+1:]...)
	cfg.Marketplaces = remaining

	if err := writeScope(path, sc, cfg); err != nil {
		return scope.MarketplaceConfigEntry{}, err
	}
	return removed, nil
}

// writeScope serializes cfg to YAML and writes it atomically: a sibling
// temp file is written first and renamed over path, so a failure midway
// leaves the original file untouched (spec.md §4.10, §5).
func writeScope(path string, sc scope.Scope, cfg *scope.Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}

	data, err := marshalScope(cfg)
	if err != nil {
		return &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}

	tmp, err := os.CreateTemp(dir, ".nova-config-*.yaml.tmp")
	if err != nil {
		return &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &errs.ConfigIo{Scope: errsScope(sc), Path: path, Message: err.Error()}
	}
	return nil
}

// marshalScope builds the YAML document node by node, following the
// teacher's MarshalV2 approach: explicit key ordering (marketplaces,
// logging, then preserved unknown keys sorted for determinism) rather than
// relying on struct-tag field order, and an always-present `marketplaces`
// key (even when empty) once the file has been written once by this code
// path.
func marshalScope(cfg *scope.Config) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode}
	root := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content, root)

	var mktsNode yaml.Node
	if err := mktsNode.Encode(cfg.Marketplaces); err != nil {
		return nil, err
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "marketplaces"},
		&mktsNode,
	)

	if cfg.Logging != nil {
		var lNode yaml.Node
		if err := lNode.Encode(cfg.Logging); err != nil {
			return nil, err
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "logging"},
			&lNode,
		)
	}

	if len(cfg.Extra) > 0 {
		keys := make([]string, 0, len(cfg.Extra))
		for k := range cfg.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var vNode yaml.Node
			if err := vNode.Encode(cfg.Extra[k]); err != nil {
				return nil, err
			}
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: k},
				&vNode,
			)
		}
	}

	return yaml.Marshal(doc)
}
