package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-cli/nova/internal/config"
)

func withEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		old, had := os.LookupEnv(k)
		require.NoError(t, os.Setenv(k, v))
		t.Cleanup(func(k, old string, had bool) func() {
			return func() {
				if had {
					os.Setenv(k, old)
				} else {
					os.Unsetenv(k)
				}
			}
		}(k, old, had))
	}
}

// TestFileStore_Load_MergesAllThreeScopes exercises the full C5 pipeline end
// to end: a discoverable project root with both project and user scope
// files, plus a global scope file, must all be read and merged into one
// EffectiveConfig.
func TestFileStore_Load_MergesAllThreeScopes(t *testing.T) {
	configHome := t.TempDir()
	withEnv(t, map[string]string{"XDG_CONFIG_HOME": configHome})

	globalDir := filepath.Join(configHome, "nova")
	require.NoError(t, os.MkdirAll(globalDir, 0o755))
	writeFile(t, globalDir, "config.yaml", `
marketplaces:
  - name: global-mkt
    source:
      type: github
      repo: acme/global
logging:
  level: debug
`)

	projectRoot := t.TempDir()
	novaDir := filepath.Join(projectRoot, ".nova")
	require.NoError(t, os.MkdirAll(novaDir, 0o755))
	writeFile(t, novaDir, "config.yaml", `
marketplaces:
  - name: project-mkt
    source:
      type: git
      url: https://example.com/project.git
`)
	writeFile(t, novaDir, "config.local.yaml", `
marketplaces:
  - name: user-mkt
    source:
      type: local
      path: /tmp/user-mkt
`)

	store := config.NewFileStore(projectRoot)
	effective, err := store.Load()
	require.NoError(t, err)

	require.Len(t, effective.Marketplaces, 3)
	names := []string{effective.Marketplaces[0].Name, effective.Marketplaces[1].Name, effective.Marketplaces[2].Name}
	assert.Equal(t, []string{"global-mkt", "project-mkt", "user-mkt"}, names)

	require.NotNil(t, effective.Logging)
	assert.Equal(t, "debug", effective.Logging.Level)
}

// TestFileStore_Load_NoProjectRootSkipsProjectAndUser confirms that when no
// .nova directory is discoverable from the working directory, only the
// global scope is read and the result still succeeds.
func TestFileStore_Load_NoProjectRootSkipsProjectAndUser(t *testing.T) {
	configHome := t.TempDir()
	withEnv(t, map[string]string{"XDG_CONFIG_HOME": configHome})

	globalDir := filepath.Join(configHome, "nova")
	require.NoError(t, os.MkdirAll(globalDir, 0o755))
	writeFile(t, globalDir, "config.yaml", `
marketplaces:
  - name: global-mkt
    source:
      type: github
      repo: acme/global
`)

	store := config.NewFileStore(t.TempDir())
	effective, err := store.Load()
	require.NoError(t, err)
	require.Len(t, effective.Marketplaces, 1)
	assert.Equal(t, "global-mkt", effective.Marketplaces[0].Name)
}

// TestFileStore_Load_StrictModePromotesUnknownKeyWarning exercises the
// NOVA_CONFIG__STRICT overlay: an unknown top-level key is a warning by
// default but a hard error once strict mode is set.
func TestFileStore_Load_StrictModePromotesUnknownKeyWarning(t *testing.T) {
	configHome := t.TempDir()
	withEnv(t, map[string]string{
		"XDG_CONFIG_HOME":     configHome,
		"NOVA_CONFIG__STRICT": "true",
	})

	globalDir := filepath.Join(configHome, "nova")
	require.NoError(t, os.MkdirAll(globalDir, 0o755))
	writeFile(t, globalDir, "config.yaml", "some_future_key: 1\n")

	store := config.NewFileStore(t.TempDir())
	_, err := store.Load()
	require.Error(t, err)
}
