package depgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elementastro/lithium-kernel/version"
)

func TestAddDependencyCycleDetection(t *testing.T) {
	g := New()
	g.AddNode("A", version.MustParse("1.0.0"))
	g.AddNode("B", version.MustParse("1.0.0"))
	g.AddNode("C", version.MustParse("1.0.0"))

	require.NoError(t, g.AddDependency("A", "B", version.MustParse("1.0.0")))
	require.NoError(t, g.AddDependency("B", "C", version.MustParse("1.0.0")))
	assert.False(t, g.HasCycle())

	require.NoError(t, g.AddDependency("C", "A", version.MustParse("1.0.0")))
	assert.True(t, g.HasCycle())
}

func TestAddDependencyMissingNode(t *testing.T) {
	g := New()
	g.AddNode("A", version.MustParse("1.0.0"))
	err := g.AddDependency("A", "ghost", version.MustParse("1.0.0"))
	var violation *GraphViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, ViolationMissingNode, violation.Kind)
}

func TestAddDependencyVersionMismatch(t *testing.T) {
	g := New()
	g.AddNode("A", version.MustParse("1.0.0"))
	g.AddNode("B", version.MustParse("1.0.0"))
	err := g.AddDependency("A", "B", version.MustParse("2.0.0"))
	var violation *GraphViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, ViolationVersionMismatch, violation.Kind)
}

func TestRemoveNodeClearsAllMaps(t *testing.T) {
	g := New()
	g.AddNode("A", version.MustParse("1.0.0"))
	g.AddNode("B", version.MustParse("1.0.0"))
	require.NoError(t, g.AddDependency("A", "B", version.MustParse("1.0.0")))

	g.RemoveNode("B")
	assert.False(t, g.HasNode("B"))
	assert.Empty(t, g.GetDependencies("A"))
	assert.Empty(t, g.GetDependents("B"))
}

func TestTopologicalSortOrdersEdges(t *testing.T) {
	g := New()
	for _, n := range []string{"A", "B", "C"} {
		g.AddNode(n, version.MustParse("1.0.0"))
	}
	require.NoError(t, g.AddDependency("A", "B", version.MustParse("1.0.0")))
	require.NoError(t, g.AddDependency("B", "C", version.MustParse("1.0.0")))

	order, ok := g.TopologicalSort()
	require.True(t, ok)
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos["A"], pos["B"])
	assert.Less(t, pos["B"], pos["C"])
}

func TestTopologicalSortFailsOnCycle(t *testing.T) {
	g := New()
	g.AddNode("A", version.MustParse("1.0.0"))
	g.AddNode("B", version.MustParse("1.0.0"))
	require.NoError(t, g.AddDependency("A", "B", version.MustParse("1.0.0")))
	g.adj["B"]["A"] = struct{}{}
	g.rev["A"]["B"] = struct{}{}

	_, ok := g.TopologicalSort()
	assert.False(t, ok)
}

func TestGetAllDependenciesTransitive(t *testing.T) {
	g := New()
	for _, n := range []string{"A", "B", "C"} {
		g.AddNode(n, version.MustParse("1.0.0"))
	}
	require.NoError(t, g.AddDependency("A", "B", version.MustParse("1.0.0")))
	require.NoError(t, g.AddDependency("B", "C", version.MustParse("1.0.0")))

	deps := g.GetAllDependencies("A")
	assert.ElementsMatch(t, []string{"B", "C"}, deps)
}

func TestDetectVersionConflicts(t *testing.T) {
	g := New()
	for _, n := range []string{"A", "B", "T"} {
		g.AddNode(n, version.MustParse("2.0.0"))
	}
	require.NoError(t, g.AddDependency("A", "T", version.MustParse("1.0.0")))
	require.NoError(t, g.AddDependency("B", "T", version.MustParse("2.0.0")))

	conflicts := g.DetectVersionConflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, Node("T"), conflicts[0].Target)
}

func TestDetectVersionConflictsEmptyWhenAgreeing(t *testing.T) {
	g := New()
	for _, n := range []string{"A", "B", "T"} {
		g.AddNode(n, version.MustParse("2.0.0"))
	}
	require.NoError(t, g.AddDependency("A", "T", version.MustParse("1.0.0")))
	require.NoError(t, g.AddDependency("B", "T", version.MustParse("1.0.0")))

	assert.Empty(t, g.DetectVersionConflicts())
}

func TestGroupDependencies(t *testing.T) {
	g := New()
	for _, n := range []string{"A", "B", "C", "D"} {
		g.AddNode(n, version.MustParse("1.0.0"))
	}
	require.NoError(t, g.AddDependency("A", "C", version.MustParse("1.0.0")))
	require.NoError(t, g.AddDependency("B", "D", version.MustParse("1.0.0")))

	g.AddGroup("core", []Node{"A", "B"})
	assert.ElementsMatch(t, []string{"C", "D"}, g.GetGroupDependencies("core"))
}

func TestValidateDependencies(t *testing.T) {
	g := New()
	g.AddNode("A", version.MustParse("1.0.0"))
	g.AddNode("B", version.MustParse("1.0.0"))
	require.NoError(t, g.AddDependency("A", "B", version.MustParse("1.0.0")))
	assert.True(t, g.ValidateDependencies("A"))
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))
}

func TestResolveDependenciesAcrossDirectories(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeManifest(t, dirA, `{"name":"root-a","dependencies":{"shared":"1.0.0"}}`)
	writeManifest(t, dirB, `{"name":"root-b","dependencies":{"shared":"1.0.0"}}`)

	order, err := ResolveDependencies([]string{dirA, dirB})
	require.NoError(t, err)
	assert.Contains(t, order, "root-a")
	assert.Contains(t, order, "root-b")

	count := 0
	for _, n := range order {
		if n == "shared" {
			count++
		}
	}
	assert.Equal(t, 1, count, "shared should be deduplicated across directories")
}

func TestResolveSystemDependenciesTakesMaxVersion(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeManifest(t, dirA, `{"name":"a","dependencies":{"system:libusb":"1.0.0"}}`)
	writeManifest(t, dirB, `{"name":"b","dependencies":{"system:libusb":"2.0.0"}}`)

	deps, err := ResolveSystemDependencies([]string{dirA, dirB})
	require.NoError(t, err)
	require.Contains(t, deps, "libusb")
	assert.True(t, deps["libusb"].Equal(version.MustParse("2.0.0")))
}

func TestResolveParallelDependenciesUsesCache(t *testing.T) {
	dirs := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		d := t.TempDir()
		writeManifest(t, d, `{"name":"pkg","dependencies":{}}`)
		dirs = append(dirs, d)
	}

	g := New()
	order, err := g.ResolveParallelDependencies(dirs)
	require.NoError(t, err)
	assert.Equal(t, []Node{"pkg"}, order)

	// Second pass should be served entirely from cache.
	order2, err := g.ResolveParallelDependencies(dirs)
	require.NoError(t, err)
	assert.Equal(t, order, order2)
}
