package types

type PolicyAction string

const (
	PolicyActionError   PolicyAction = "error"
	PolicyActionMonitor PolicyAction = "monitor"
	PolicyActionWarn    PolicyAction = "warn"
	PolicyActionIgnore  PolicyAction = "ignore"
)

type DiffAction string

const (
	DiffActionAdded     DiffAction = "added"
	DiffActionRemoved   DiffAction = "removed"
	DiffActionChanged   DiffAction = "changed"
	DiffActionUnchanged DiffAction = "unchanged"
)

type Decision string

const (
	DecisionProceed     Decision = "proceed"
	DecisionProceedWarn Decision = "proceed-with-warnings"
	DecisionAbort       Decision = "abort"
)

type DependencyField string

const (
	DependencyFieldProd     DependencyField = "dependencies"
	DependencyFieldDev      DependencyField = "devDependencies"
	DependencyFieldOptional DependencyField = "optionalDependencies"
	DependencyFieldPeer     DependencyField = "peerDependencies"
)

// DependencyFields is the fixed order in which manifest dependency maps
// are read during an install-mode scan.
var DependencyFields = []DependencyField{
	DependencyFieldProd,
	DependencyFieldDev,
	DependencyFieldOptional,
	DependencyFieldPeer,
}
