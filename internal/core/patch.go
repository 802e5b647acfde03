package core

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"depsentry/internal/types"
)

// anyVersion matches every valid version; final selection is the
// maximum candidate satisfying it.
var anyVersion = mustConstraint("*")

// SelectPatchVersion finds the best non-vulnerable version to
// substitute for the node's current version without breaking the
// consumer's major-version contract. When the packument carries a
// pinned major (from the resolver's overrides map), candidates are
// restricted to that major line; otherwise candidates stay within the
// node's current major and versions satisfying vulnerableRange are
// excluded. firstPatched is accepted but not consulted; it is reserved
// input for future narrowing.
func SelectPatchVersion(node *types.Node, pkg types.Packument, vulnerableRange string, firstPatched string) (string, bool, error) {
	_ = firstPatched

	if node == nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("node is required")
	}
	current, err := semver.NewVersion(node.Version)
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("node version %q is not valid semver", node.Version)).
			WithCause(err)
	}

	var vulnerable *semver.Constraints
	if vulnerableRange != "" {
		vulnerable, err = semver.NewConstraint(vulnerableRange)
		if err != nil {
			return "", false, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("vulnerable range %q is not a valid constraint", vulnerableRange)).
				WithCause(err)
		}
	}

	targetMajor := current.Major()
	excludeVulnerable := true
	if pkg.PinnedMajor != nil {
		targetMajor = *pkg.PinnedMajor
		excludeVulnerable = false
	}

	var best *semver.Version
	for raw := range pkg.Versions {
		candidate, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if candidate.Major() != targetMajor {
			continue
		}
		if excludeVulnerable && vulnerable != nil && vulnerable.Check(candidate) {
			continue
		}
		if !anyVersion.Check(candidate) {
			continue
		}
		if best == nil || candidate.GreaterThan(best) {
			best = candidate
		}
	}
	if best == nil {
		return "", false, nil
	}
	return best.Original(), true, nil
}

// UpdateNode applies the best patch version to the node in place:
// version, resolved location, integrity digest, and deprecated flag are
// overwritten from the new version's published metadata, and dependency
// edges are reconciled against the new version's dependency map. There
// is no rollback path; callers must snapshot if they need one. Returns
// false when no suitable version exists.
func UpdateNode(node *types.Node, pkg types.Packument, vulnerableRange string, firstPatched string) (bool, error) {
	target, ok, err := SelectPatchVersion(node, pkg, vulnerableRange, firstPatched)
	if err != nil || !ok {
		return false, err
	}
	meta, found := pkg.Versions[target]
	if !found {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("selected version %s missing from packument", target))
	}

	node.Version = target
	node.Resolved = meta.Tarball
	node.Integrity = meta.Integrity
	node.Deprecated = meta.Deprecated

	reconcileEdges(node, meta.Dependencies)
	node.Dependencies = copyDependencyMap(meta.Dependencies)
	return true, nil
}

// reconcileEdges detaches edges whose target name is absent from the
// new dependency map and adds edges for dependencies the old version
// did not declare.
func reconcileEdges(node *types.Node, newDeps map[string]string) {
	if node.EdgesOut == nil {
		node.EdgesOut = map[string]*types.Edge{}
	}
	for name := range node.EdgesOut {
		if _, ok := newDeps[name]; !ok {
			delete(node.EdgesOut, name)
		}
	}
	for name, spec := range newDeps {
		if edge, ok := node.EdgesOut[name]; ok {
			edge.Spec = spec
			continue
		}
		edge := &types.Edge{Name: name, Spec: spec}
		if node.Children != nil {
			edge.To = node.Children[name]
		}
		node.EdgesOut[name] = edge
	}
}

func copyDependencyMap(deps map[string]string) map[string]string {
	out := make(map[string]string, len(deps))
	for name, spec := range deps {
		out[name] = spec
	}
	return out
}

func mustConstraint(raw string) *semver.Constraints {
	parsed, err := semver.NewConstraint(raw)
	if err != nil {
		panic(err)
	}
	return parsed
}
