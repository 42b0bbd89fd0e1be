package merge_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-cli/nova/internal/merge"
	"github.com/nova-cli/nova/internal/scope"
)

func entry(name string) scope.MarketplaceConfigEntry {
	return scope.MarketplaceConfigEntry{
		Name:   name,
		Source: scope.MarketplaceSource{Type: scope.SourceGitHub, Repo: "owner/" + name},
	}
}

func TestMerge_NilIsIdentity(t *testing.T) {
	g := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("a")}}

	out, err := merge.Merge(g, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, g.Marketplaces, out.Marketplaces)

	out2, err := merge.Merge(nil, g, nil)
	require.NoError(t, err)
	assert.Equal(t, g.Marketplaces, out2.Marketplaces)
}

func TestMerge_ConcatenatesInScopeOrder(t *testing.T) {
	g := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("a")}}
	p := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("b")}}
	u := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("c")}}

	out, err := merge.Merge(g, p, u)
	require.NoError(t, err)
	require.Len(t, out.Marketplaces, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{
		out.Marketplaces[0].Name, out.Marketplaces[1].Name, out.Marketplaces[2].Name,
	})
}

func TestMerge_Associative(t *testing.T) {
	g := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("a")}}
	p := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("b")}}
	u := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("c")}}

	gp, err := merge.Merge(g, p, nil)
	require.NoError(t, err)
	left, err := merge.Merge(gp, u, nil)
	require.NoError(t, err)

	pu, err := merge.Merge(p, u, nil)
	require.NoError(t, err)
	right, err := merge.Merge(g, pu, nil)
	require.NoError(t, err)

	assert.Equal(t, left.Marketplaces, right.Marketplaces)
}

func TestMerge_DuplicateNameAcrossScopes_IsValidationError(t *testing.T) {
	g := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("official")}}
	p := &scope.Config{Marketplaces: []scope.MarketplaceConfigEntry{entry("official")}}

	_, err := merge.Merge(g, p, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "global")
	assert.Contains(t, err.Error(), "project")
}

func TestMerge_LoggingOnlyFromGlobal(t *testing.T) {
	g := &scope.Config{Logging: &scope.LoggingConfig{Level: "debug"}}
	out, err := merge.Merge(g, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, out.Logging)
	assert.Equal(t, "debug", out.Logging.Level)
}

func TestMerge_ExtraMapsMergeWithUserPrecedence(t *testing.T) {
	g := &scope.Config{Extra: map[string]any{"theme": map[string]any{"color": "blue", "font": "mono"}}}
	u := &scope.Config{Extra: map[string]any{"theme": map[string]any{"color": "red"}}}

	out, err := merge.Merge(g, nil, u)
	require.NoError(t, err)
	theme := out.Extra["theme"].(map[string]any)
	assert.Equal(t, "red", theme["color"])
	assert.Equal(t, "mono", theme["font"])
}

func TestApplyEnvOverlay_RecognizesVariables(t *testing.T) {
	os.Setenv("NOVA_APP__ENVIRONMENT", "prod")
	os.Setenv("NOVA_CONFIG__STRICT", "true")
	os.Setenv("NOVA_DATA_HOME", "/tmp/nova-data")
	defer os.Unsetenv("NOVA_APP__ENVIRONMENT")
	defer os.Unsetenv("NOVA_CONFIG__STRICT")
	defer os.Unsetenv("NOVA_DATA_HOME")

	cfg := &scope.Config{}
	ov := merge.ApplyEnvOverlay(cfg)
	assert.Equal(t, "prod", ov.Environment)
	assert.True(t, ov.Strict)
	assert.Equal(t, "/tmp/nova-data", ov.DataHome)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestApplyEnvOverlay_UnknownVarsIgnored(t *testing.T) {
	os.Setenv("NOVA_BOGUS_FLAG", "yes")
	defer os.Unsetenv("NOVA_BOGUS_FLAG")

	ov := merge.ApplyEnvOverlay(&scope.Config{})
	assert.False(t, ov.Strict)
}
