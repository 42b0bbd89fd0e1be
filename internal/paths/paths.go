// Package paths resolves the filesystem locations Nova reads and writes:
// the XDG config/data roots and the project-local config tree discovered by
// walking upward from a working directory. It is pure with respect to the
// environment and filesystem layout at call time — it never creates
// directories; writers do that lazily.
package paths

import (
	"os"
	"path/filepath"
)

const (
	appName        = "nova"
	projectDirName = ".nova"
	configFileName = "config.yaml"
	userFileName   = "config.local.yaml"
	stateFileName  = "data.json"
)

func home() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

// ConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config. Empty if
// neither XDG_CONFIG_HOME nor a resolvable $HOME is available — callers
// treat that as the "no writable location" outcome (spec.md §4.1).
func ConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	if h := home(); h != "" {
		return filepath.Join(h, ".config")
	}
	return ""
}

// DataHome returns NOVA_DATA_HOME if set; otherwise $XDG_DATA_HOME, falling
// back to ~/.local/share. Empty if none of these can be resolved.
func DataHome() string {
	if v := os.Getenv("NOVA_DATA_HOME"); v != "" {
		return v
	}
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	if h := home(); h != "" {
		return filepath.Join(h, ".local", "share")
	}
	return ""
}

// GlobalConfigFile returns $XDG_CONFIG_HOME/nova/config.yaml, or "" if no
// config home could be resolved.
func GlobalConfigFile() string {
	ch := ConfigHome()
	if ch == "" {
		return ""
	}
	return filepath.Join(ch, appName, configFileName)
}

// DataRoot returns <DataHome()>/nova (normally $XDG_DATA_HOME/nova), or ""
// if no data home could be resolved.
func DataRoot() string {
	dh := DataHome()
	if dh == "" {
		return ""
	}
	return filepath.Join(dh, appName)
}

// MarketplacesDir returns <data_root>/marketplaces.
func MarketplacesDir() string {
	root := DataRoot()
	if root == "" {
		return ""
	}
	return filepath.Join(root, "marketplaces")
}

// StateFile returns <data_root>/marketplaces/data.json.
func StateFile() string {
	dir := MarketplacesDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, stateFileName)
}

// FindProjectRoot walks upward from dir looking for a .nova/config.yaml,
// returning the first directory containing one. Symlinks in dir itself are
// resolved (so a repository whose working copy is reached through a
// symlinked path still discovers its project root); the walk then proceeds
// directory by directory. Returns "", false if no project root is found
// before reaching the filesystem root.
func FindProjectRoot(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	for {
		if _, err := os.Stat(projectConfigPath(abs)); err == nil {
			return abs, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

func projectConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName, configFileName)
}

// ProjectConfigFile returns <project-root>/.nova/config.yaml for a
// discovered project root.
func ProjectConfigFile(projectRoot string) string {
	return projectConfigPath(projectRoot)
}

// UserConfigFile returns <project-root>/.nova/config.local.yaml for a
// discovered project root. It is only meaningful once a project root has
// been found (spec.md §4.1: "User config ... only if a project root was
// found").
func UserConfigFile(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName, userFileName)
}
