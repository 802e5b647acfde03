package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"depsentry/internal/types"
)

func packumentWith(versions ...string) types.Packument {
	pkg := types.Packument{Name: "fixture", Versions: map[string]types.VersionMetadata{}}
	for _, version := range versions {
		pkg.Versions[version] = types.VersionMetadata{
			Version: version,
			Tarball: "https://registry.npmjs.org/fixture/-/fixture-" + version + ".tgz",
		}
	}
	return pkg
}

func flaggedNode(version string) *types.Node {
	return &types.Node{
		Name:      "fixture",
		Version:   version,
		Resolved:  "https://registry.npmjs.org/fixture/-/fixture-" + version + ".tgz",
		Integrity: "sha512-old",
		Children:  map[string]*types.Node{},
		EdgesOut:  map[string]*types.Edge{},
	}
}

func TestSelectPatchVersionHighestSameMajorNonVulnerable(t *testing.T) {
	node := flaggedNode("1.0.0")
	pkg := packumentWith("1.0.0", "1.2.0", "2.0.0")

	version, ok, err := SelectPatchVersion(node, pkg, "<1.2.0", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1.2.0", version)
}

func TestSelectPatchVersionNoSuitableVersion(t *testing.T) {
	node := flaggedNode("1.0.0")
	pkg := packumentWith("1.0.0", "1.1.0")

	_, ok, err := SelectPatchVersion(node, pkg, "<1.2.0", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSelectPatchVersionStaysWithinCurrentMajor(t *testing.T) {
	node := flaggedNode("1.0.0")
	pkg := packumentWith("1.0.0", "1.9.3", "2.4.0", "3.0.0")

	version, ok, err := SelectPatchVersion(node, pkg, "<1.5.0", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1.9.3", version)
}

func TestSelectPatchVersionPinnedMajor(t *testing.T) {
	node := flaggedNode("1.0.0")
	pkg := packumentWith("1.0.0", "1.9.3", "2.4.0", "2.6.1")
	pinned := uint64(2)
	pkg.PinnedMajor = &pinned

	version, ok, err := SelectPatchVersion(node, pkg, "", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2.6.1", version)
}

func TestSelectPatchVersionIgnoresFirstPatchedHint(t *testing.T) {
	node := flaggedNode("1.0.0")
	pkg := packumentWith("1.0.0", "1.2.0", "1.4.0")

	version, ok, err := SelectPatchVersion(node, pkg, "<1.2.0", "1.2.0")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1.4.0", version, "hint must not cap the selection")
}

func TestUpdateNodeRewritesMetadataAndEdges(t *testing.T) {
	node := flaggedNode("1.0.0")
	node.Dependencies = map[string]string{"old-dep": "^1.0.0", "kept-dep": "^2.0.0"}
	node.EdgesOut = map[string]*types.Edge{
		"old-dep":  {Name: "old-dep", Spec: "^1.0.0"},
		"kept-dep": {Name: "kept-dep", Spec: "^2.0.0"},
	}
	node.Children["new-dep"] = registryNode("new-dep", "3.1.0")

	pkg := packumentWith("1.0.0")
	pkg.Versions["1.5.0"] = types.VersionMetadata{
		Version:      "1.5.0",
		Tarball:      "https://registry.npmjs.org/fixture/-/fixture-1.5.0.tgz",
		Integrity:    "sha512-new",
		Deprecated:   "use v2 instead",
		Dependencies: map[string]string{"kept-dep": "^2.1.0", "new-dep": "^3.0.0"},
	}

	updated, err := UpdateNode(node, pkg, "<1.5.0", "")
	require.NoError(t, err)
	require.True(t, updated)

	require.Equal(t, "1.5.0", node.Version)
	require.Equal(t, "https://registry.npmjs.org/fixture/-/fixture-1.5.0.tgz", node.Resolved)
	require.Equal(t, "sha512-new", node.Integrity)
	require.Equal(t, "use v2 instead", node.Deprecated)

	require.NotContains(t, node.EdgesOut, "old-dep", "edge absent from the new dependency map must be detached")
	require.Contains(t, node.EdgesOut, "kept-dep")
	require.Equal(t, "^2.1.0", node.EdgesOut["kept-dep"].Spec)
	require.Contains(t, node.EdgesOut, "new-dep")
	require.Same(t, node.Children["new-dep"], node.EdgesOut["new-dep"].To)

	if diff := cmp.Diff(map[string]string{"kept-dep": "^2.1.0", "new-dep": "^3.0.0"}, node.Dependencies); diff != "" {
		t.Fatalf("unexpected dependency map (-want +got):\n%s", diff)
	}
}

func TestUpdateNodeClearsIntegrityWhenNewVersionHasNone(t *testing.T) {
	node := flaggedNode("1.0.0")
	pkg := packumentWith("1.0.0", "1.3.0")

	updated, err := UpdateNode(node, pkg, "<1.3.0", "")
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, "1.3.0", node.Version)
	require.Empty(t, node.Integrity)
	require.Empty(t, node.Deprecated)
}

func TestUpdateNodeNoCandidateLeavesNodeUntouched(t *testing.T) {
	node := flaggedNode("1.0.0")
	before := *node
	pkg := packumentWith("1.0.0")

	updated, err := UpdateNode(node, pkg, "<=1.0.0", "")
	require.NoError(t, err)
	require.False(t, updated)
	require.Equal(t, before.Version, node.Version)
	require.Equal(t, before.Resolved, node.Resolved)
	require.Equal(t, before.Integrity, node.Integrity)
}
