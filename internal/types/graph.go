package types

import "depsentry/internal/shared"

// Node is one resolved package occurrence in a dependency graph
// snapshot. Graphs are owned by the external resolver; this package
// reads them for one invocation and persists nothing.
type Node struct {
	Name         string
	Version      string
	Resolved     string
	Integrity    string
	Deprecated   string
	Dependencies map[string]string
	EdgesOut     map[string]*Edge
	Children     map[string]*Node
	// Overrides is populated on the root node only, when the resolver
	// exposes pinned versions (package name -> pinned version).
	Overrides map[string]string
}

// Edge links a node to one of its resolved children.
type Edge struct {
	Name string
	Spec string
	To   *Node
}

// PackageID returns the name@version identifier used for alert lookups
// and deduplication.
func (n *Node) PackageID() string {
	return shared.PackageID(n.Name, n.Version)
}

// DiffEntry is one node-level comparison result between the ideal and
// actual graph snapshots.
type DiffEntry struct {
	Action DiffAction
	Ideal  *Node
	Actual *Node
	// Existing is set when the entry represents a version bump or an
	// unchanged node: it points at the previously installed occurrence.
	Existing *Node
}
