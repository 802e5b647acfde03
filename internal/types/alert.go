package types

import "errors"

// ErrForcedExit signals that a caller deeper in the stack requested
// process termination. It must propagate unchanged through the
// fail-open path instead of being swallowed as a service failure.
var ErrForcedExit = errors.New("process exit requested")

// Alert is a single security or quality finding attached to a specific
// package version. Alerts are never mutated after creation.
type Alert struct {
	Type        string
	Severity    string
	Action      PolicyAction
	Blocked     bool
	Fixable     bool
	Title       string
	Description string
	Purl        string
}

// AlertsByPackageID maps a package identifier (name@version) to its
// alerts. Per-key insertion order reflects arrival order from the
// lookup service, not semantic priority.
type AlertsByPackageID map[string][]Alert

// AlertFilter is passed through to the remote lookup service to
// pre-filter by action and blocked status. It reduces payload size
// only; policy filtering re-checks every returned alert.
type AlertFilter struct {
	Actions []string
	Blocked *bool
	Fixable bool
}

// BatchResult is one per-item outcome from a batch lookup. Either
// Alerts holds the item's findings or Err records an isolated failure.
type BatchResult struct {
	ID     string
	Alerts []Alert
	Err    error
}
