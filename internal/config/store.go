package config

import (
	"os"

	"github.com/nova-cli/nova/internal/errs"
	"github.com/nova-cli/nova/internal/merge"
	"github.com/nova-cli/nova/internal/paths"
	"github.com/nova-cli/nova/internal/scope"
)

// Store is the C5 façade contract. FileStore is the only first-party
// implementation; an in-memory or database-backed store satisfies the same
// single-method contract without any deeper interface hierarchy (spec.md
// §9's "Protocol-based ConfigStore seam").
type Store interface {
	Load() (*scope.EffectiveConfig, error)
}

// FileStore reads the three scope files from disk on every Load call — no
// caching, no global singleton (spec.md §9 explicitly calls out and rejects
// the teacher's parse_config()-singleton pattern).
type FileStore struct {
	// WorkingDir is used exclusively for project-root discovery; it
	// defaults to the process's current directory.
	WorkingDir string
}

// NewFileStore builds a FileStore rooted at workingDir. An empty
// workingDir defaults to os.Getwd() lazily, at Load time.
func NewFileStore(workingDir string) *FileStore {
	return &FileStore{WorkingDir: workingDir}
}

// Load discovers, reads, validates, merges, and env-overlays the three
// scopes. Any failure in any scope halts the load and returns the first
// error encountered, ordered Global -> Project -> User (spec.md §4.5).
func (s *FileStore) Load() (*scope.EffectiveConfig, error) {
	wd := s.WorkingDir
	if wd == "" {
		if cwd, err := os.Getwd(); err == nil {
			wd = cwd
		}
	}

	var warnings []string

	globalPath := paths.GlobalConfigFile()
	var globalCfg *scope.Config
	if globalPath != "" {
		cfg, w, err := ReadScope(globalPath, scope.Global)
		if err != nil {
			return nil, err
		}
		globalCfg = cfg
		warnings = append(warnings, w...)
	}

	var projectCfg, userCfg *scope.Config
	if root, ok := paths.FindProjectRoot(wd); ok {
		cfg, w, err := ReadScope(paths.ProjectConfigFile(root), scope.Project)
		if err != nil {
			return nil, err
		}
		projectCfg = cfg
		warnings = append(warnings, w...)

		cfg, w, err = ReadScope(paths.UserConfigFile(root), scope.User)
		if err != nil {
			return nil, err
		}
		userCfg = cfg
		warnings = append(warnings, w...)
	}

	effective, err := merge.Merge(globalCfg, projectCfg, userCfg)
	if err != nil {
		return nil, err
	}

	overlay := merge.ApplyEnvOverlay(effective)
	if overlay.Strict && len(warnings) > 0 {
		return nil, &errs.ConfigValidation{
			Scope:   errs.Scope("effective"),
			Field:   warnings[0],
			Message: "unknown top-level key \"" + warnings[0] + "\" (NOVA_CONFIG__STRICT is set)",
		}
	}

	return effective, nil
}
