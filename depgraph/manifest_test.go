package depgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elementastro/lithium-kernel/version"
)

func TestLoadManifestJSON(t *testing.T) {
	dir := t.TempDir()
	content := `{"name":"scope-driver","dependencies":{"focuser-core":"1.2.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "scope-driver", m.Name)
	assert.Equal(t, "1.2.0", m.Deps["focuser-core"].String())
}

func TestLoadManifestXMLHasNoVersions(t *testing.T) {
	dir := t.TempDir()
	content := `<package><name>dome-driver</name><depend>motor-controller</depend></package>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.xml"), []byte(content), 0o644))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "dome-driver", m.Name)
	assert.True(t, m.Deps["motor-controller"].IsZero())
}

func TestLoadManifestYAML(t *testing.T) {
	dir := t.TempDir()
	content := "name: filterwheel-driver\ndependencies:\n  comm-bus: 2.0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.yaml"), []byte(content), 0o644))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "filterwheel-driver", m.Name)
	assert.Equal(t, "2.0.0", m.Deps["comm-bus"].String())
}

func TestLoadManifestPrefersJSONOverOthers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"json-wins"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.yaml"), []byte("name: yaml-loses\n"), 0o644))

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "json-wins", m.Name)
}

func TestLoadManifestMissingNameFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"dependencies":{}}`), 0o644))

	_, err := LoadManifest(dir)
	var merr *ManifestError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, ManifestKindMissingName, merr.Kind)
}

func TestLoadManifestNoneFoundFails(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadManifest(dir)
	var merr *ManifestError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, ManifestKindUnsupported, merr.Kind)
}

func TestIsSystemDependency(t *testing.T) {
	bare, ok := IsSystemDependency("system:libusb")
	assert.True(t, ok)
	assert.Equal(t, "libusb", bare)

	_, ok = IsSystemDependency("focuser-core")
	assert.False(t, ok)
}

func TestEvaluateConstraintCompoundRange(t *testing.T) {
	ok, err := EvaluateConstraint(version.MustParse("1.5.0"), ">=1.0.0, <2.0.0")
	require.NoError(t, err)
	assert.True(t, ok)
}
