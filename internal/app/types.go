package app

import "depsentry/internal/types"

type ScanRequest struct {
	// Args is the single-shot mode input: positional command-line
	// arguments, flags included (they are dropped during extraction).
	Args []string
	// ManifestPath is the install mode input: a package manifest whose
	// dependency maps form the change set.
	ManifestPath string
	// IdealGraphPath / ActualGraphPath select graph-diff mode: the
	// newly resolved tree and, optionally, the previously installed one.
	IdealGraphPath  string
	ActualGraphPath string

	// PolicyPath optionally names a shared scan policy file whose
	// switches merge into the request before scanning.
	PolicyPath string

	Subcommand           string
	DryRun               bool
	AcceptRisks          bool
	ViewAllRisks         bool
	IncludeUnchanged     bool
	IncludeUnknownOrigin bool
	RegistryURL          string
}

type ScanResult struct {
	ShouldExit bool
	Alerts     types.AlertsByPackageID
}

type FixTarget struct {
	Name            string
	VulnerableRange string
	FirstPatched    string
}

type FixRequest struct {
	GraphPath  string
	OutputPath string
	Targets    []FixTarget
}

type FixOutcome struct {
	Name    string
	From    string
	To      string
	Updated bool
}

type FixResult struct {
	Outcomes []FixOutcome
}
