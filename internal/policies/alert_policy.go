// Package policies implements the alert risk policy: which alerts are
// retained for a given policy mode and whether the package-manager
// operation is allowed to proceed.
package policies

import (
	"depsentry/internal/types"
)

// AlertPolicy is a small, composable set of filter predicates applied
// to the accumulated alert map. It is configuration, not behavior:
// re-running the same policy on the same alerts always yields the same
// decision.
type AlertPolicy struct {
	// AcceptRisks switches to permissive filtering: only error-action
	// alerts the user has not explicitly accepted (Blocked) are
	// retained. Strict mode retains error, monitor, and warn alerts
	// for broad visibility.
	AcceptRisks bool
	// ViewAllRisks surfaces non-retained alerts for display. It never
	// changes the abort/proceed decision.
	ViewAllRisks bool
}

// strictActions are the policy actions retained in strict mode.
var strictActions = map[types.PolicyAction]struct{}{
	types.PolicyActionError:   {},
	types.PolicyActionMonitor: {},
	types.PolicyActionWarn:    {},
}

// Retain filters the accumulated alerts down to the set the policy
// acts on. The input is never mutated.
func (p AlertPolicy) Retain(alerts types.AlertsByPackageID) types.AlertsByPackageID {
	retained := types.AlertsByPackageID{}
	for id, list := range alerts {
		for _, alert := range list {
			if p.retains(alert) {
				retained[id] = append(retained[id], alert)
			}
		}
	}
	return retained
}

func (p AlertPolicy) retains(alert types.Alert) bool {
	if p.AcceptRisks {
		return alert.Action == types.PolicyActionError && alert.Blocked
	}
	_, ok := strictActions[alert.Action]
	return ok
}

// Decide maps the retained alert set to an operation decision. Any
// retained alert aborts; alerts that were fetched but filtered out
// downgrade to proceed-with-warnings; an empty alert map proceeds
// silently.
func (p AlertPolicy) Decide(retained types.AlertsByPackageID, all types.AlertsByPackageID) types.Decision {
	if len(retained) > 0 {
		return types.DecisionAbort
	}
	if len(all) > 0 {
		return types.DecisionProceedWarn
	}
	return types.DecisionProceed
}
