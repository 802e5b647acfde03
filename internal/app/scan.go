package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"depsentry/internal/core"
	"depsentry/internal/policies"
	"depsentry/internal/types"
)

// Scan is the single entry point for install-time interception: it
// extracts the change set for the requested operation, looks up alerts
// for exactly those packages, applies the risk policy, and reports
// whether the caller must stop the package-manager invocation before
// any files are installed.
func (s Service) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	if len(req.Args) == 0 && req.ManifestPath == "" && req.IdealGraphPath == "" {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan requires command arguments, a manifest, or a graph snapshot")
	}
	if req.PolicyPath != "" {
		if err := s.applyPolicyFile(&req); err != nil {
			return ScanResult{}, err
		}
	}
	if req.Subcommand != "" || req.DryRun {
		subcommand := req.Subcommand
		if subcommand == "" {
			subcommand = "install"
		}
		if !core.ShouldScan(subcommand, req.DryRun) {
			log.Ctx(ctx).Debug().
				Str("subcommand", subcommand).
				Bool("dry_run", req.DryRun).
				Msg("operation does not mutate installed packages; skipping scan")
			return ScanResult{Alerts: types.AlertsByPackageID{}}, nil
		}
	}

	purls, err := s.changeSet(ctx, req)
	if err != nil {
		return ScanResult{}, err
	}
	purls = core.DedupeIDs(purls)
	if len(purls) == 0 {
		// Nothing needed scanning; proceed without contacting the
		// alert service.
		return ScanResult{Alerts: types.AlertsByPackageID{}}, nil
	}

	policy := policies.AlertPolicy{
		AcceptRisks:  req.AcceptRisks,
		ViewAllRisks: req.ViewAllRisks,
	}
	collector := core.NewCollector(s.AlertService, s.Progress, serviceFilter(policy))
	alerts, err := collector.Collect(ctx, purls)
	if err != nil {
		if errors.Is(err, types.ErrForcedExit) {
			return ScanResult{}, err
		}
		// Fail open: a security check outage must not brick package
		// installation.
		log.Ctx(ctx).Warn().Err(err).Msg("security scan could not complete")
		s.warn("Security scan could not complete; proceeding without alert data")
		return ScanResult{Alerts: types.AlertsByPackageID{}}, nil
	}

	retained := policy.Retain(alerts)
	decision := policy.Decide(retained, alerts)
	result := ScanResult{Alerts: retained}

	switch decision {
	case types.DecisionAbort:
		result.ShouldExit = true
		s.reportAlerts(retained)
		if policy.ViewAllRisks {
			s.reportAlerts(subtractAlerts(alerts, retained))
		}
		s.warn(fmt.Sprintf("Blocking installation: %d package(s) failed the security policy", len(retained)))
	case types.DecisionProceedWarn:
		if policy.ViewAllRisks {
			s.reportAlerts(alerts)
		}
		s.warn(fmt.Sprintf("Proceeding with warnings: %d package(s) have accepted or non-blocking alerts", len(alerts)))
	}
	return result, nil
}

// applyPolicyFile merges the shared policy file into the request.
// Switches combine with explicit request values; the registry URL only
// fills in when the request left it empty.
func (s Service) applyPolicyFile(req *ScanRequest) error {
	if s.Policies == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan policy port is required to load a policy file")
	}
	policy, err := s.Policies.LoadPolicy(req.PolicyPath)
	if err != nil {
		return err
	}
	req.AcceptRisks = req.AcceptRisks || policy.AcceptRisks
	req.ViewAllRisks = req.ViewAllRisks || policy.ViewAllRisks
	req.IncludeUnchanged = req.IncludeUnchanged || policy.IncludeUnchanged
	req.IncludeUnknownOrigin = req.IncludeUnknownOrigin || policy.IncludeUnknownOrigin
	if req.RegistryURL == "" {
		req.RegistryURL = policy.RegistryURL
	}
	return nil
}

// changeSet resolves the request mode to the deduplicable purl list.
func (s Service) changeSet(ctx context.Context, req ScanRequest) ([]string, error) {
	if req.IdealGraphPath != "" {
		return s.changeSetFromGraphs(ctx, req)
	}

	var specifiers []string
	if req.ManifestPath != "" {
		manifest, err := s.Manifests.LoadManifest(req.ManifestPath)
		if err != nil {
			return nil, err
		}
		specifiers = core.SpecifiersFromManifest(manifest)
	} else {
		specifiers = core.SpecifiersFromArgs(req.Args)
	}

	var purls []string
	for _, specifier := range specifiers {
		purl, ok := core.ParseSpecifier(specifier)
		if !ok {
			continue
		}
		purls = append(purls, purl.ToString())
	}
	return purls, nil
}

func (s Service) changeSetFromGraphs(ctx context.Context, req ScanRequest) ([]string, error) {
	ideal, err := s.Graphs.LoadGraph(req.IdealGraphPath)
	if err != nil {
		return nil, err
	}
	var actual *types.Node
	if req.ActualGraphPath != "" {
		actual, err = s.Graphs.LoadGraph(req.ActualGraphPath)
		if err != nil {
			return nil, err
		}
	}
	entries, err := core.WalkDiff(ctx, ideal, actual, core.DiffOptions{
		IncludeUnchanged:     req.IncludeUnchanged,
		IncludeUnknownOrigin: req.IncludeUnknownOrigin,
		RegistryURL:          req.RegistryURL,
	})
	if err != nil {
		return nil, err
	}
	var purls []string
	for _, entry := range entries {
		purl, ok := core.ParseSpecifier(entry.Ideal.PackageID())
		if !ok {
			continue
		}
		purls = append(purls, purl.ToString())
	}
	return purls, nil
}

// serviceFilter derives the pass-through pre-filter from the policy
// mode. It only trims payload size; Retain re-checks every alert.
func serviceFilter(policy policies.AlertPolicy) types.AlertFilter {
	if policy.AcceptRisks {
		blocked := true
		return types.AlertFilter{
			Actions: []string{string(types.PolicyActionError)},
			Blocked: &blocked,
		}
	}
	return types.AlertFilter{
		Actions: []string{
			string(types.PolicyActionError),
			string(types.PolicyActionMonitor),
			string(types.PolicyActionWarn),
		},
	}
}

func (s Service) reportAlerts(alerts types.AlertsByPackageID) {
	if s.Progress == nil {
		return
	}
	ids := make([]string, 0, len(alerts))
	for id := range alerts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, alert := range alerts[id] {
			s.Progress.Alert(id, alert)
		}
	}
}

func (s Service) warn(message string) {
	if s.Progress != nil {
		s.Progress.Warn(message)
	}
}

// subtractAlerts returns the alerts present in all but not in retained,
// used by the view-all-risks display path.
func subtractAlerts(all types.AlertsByPackageID, retained types.AlertsByPackageID) types.AlertsByPackageID {
	remainder := types.AlertsByPackageID{}
	for id, list := range all {
		kept := retained[id]
		for _, alert := range list {
			if !containsAlert(kept, alert) {
				remainder[id] = append(remainder[id], alert)
			}
		}
	}
	return remainder
}

func containsAlert(list []types.Alert, alert types.Alert) bool {
	for _, candidate := range list {
		if candidate == alert {
			return true
		}
	}
	return false
}
