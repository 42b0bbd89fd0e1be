package marketplace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-cli/nova/internal/errs"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), []byte(content), 0o644))
}

func TestLoadManifest_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadManifest(dir)
	var invalid *errs.MarketplaceInvalidManifest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "missing", invalid.Reason)
}

func TestLoadManifest_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "{not json")
	_, err := LoadManifest(dir)
	var invalid *errs.MarketplaceInvalidManifest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "json", invalid.Reason)
}

func TestLoadManifest_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"owner": {"name": "acme"}}`)
	_, err := LoadManifest(dir)
	var invalid *errs.MarketplaceInvalidManifest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "schema", invalid.Reason)
	assert.Equal(t, "name", invalid.Field)
}

func TestLoadManifest_MissingOwner(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "acme-bundles"}`)
	_, err := LoadManifest(dir)
	var invalid *errs.MarketplaceInvalidManifest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "owner.name", invalid.Field)
}

func TestLoadManifest_DuplicateBundleName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "acme-bundles",
		"owner": {"name": "acme"},
		"bundles": [
			{"name": "widget", "source": "widget"},
			{"name": "widget", "source": "widget2"}
		]
	}`)
	_, err := LoadManifest(dir)
	var invalid *errs.MarketplaceInvalidManifest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "duplicate_bundle", invalid.Reason)
	assert.Equal(t, "widget", invalid.Name)
}

func TestLoadManifest_PathEscape(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "acme-bundles",
		"owner": {"name": "acme"},
		"bundles": [
			{"name": "widget", "source": "../outside"}
		]
	}`)
	_, err := LoadManifest(dir)
	var invalid *errs.MarketplaceInvalidManifest
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "path_escape", invalid.Reason)
}

func TestLoadManifest_Valid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "acme-bundles",
		"owner": {"name": "acme", "email": "acme@example.com"},
		"description": "Acme's bundle catalog",
		"bundles": [
			{"name": "widget", "source": "widget", "version": "1.0.0"}
		]
	}`)
	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme-bundles", m.Name)
	assert.Len(t, m.Bundles, 1)
}

func TestPathEscapes(t *testing.T) {
	assert.True(t, pathEscapes("/etc/passwd"))
	assert.True(t, pathEscapes("../escape"))
	assert.True(t, pathEscapes("a/../../escape"))
	assert.False(t, pathEscapes("widget"))
	assert.False(t, pathEscapes("nested/widget"))
}
