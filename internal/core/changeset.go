package core

import (
	"strings"

	"depsentry/internal/types"
)

// mutatingSubcommands are the package-manager operations that
// materialize new files and therefore require a scan.
var mutatingSubcommands = map[string]struct{}{
	"install": {},
	"i":       {},
	"add":     {},
	"update":  {},
	"dlx":     {},
	"exec":    {},
}

// ShouldScan reports whether the requested operation needs a security
// scan at all. Dry runs and non-mutating subcommands skip scanning
// entirely and yield an empty, zero-cost result.
func ShouldScan(subcommand string, dryRun bool) bool {
	if dryRun {
		return false
	}
	_, ok := mutatingSubcommands[strings.ToLower(strings.TrimSpace(subcommand))]
	return ok
}

// SpecifiersFromArgs extracts candidate specifiers from positional
// command-line arguments, in order. Flag-like arguments are dropped.
func SpecifiersFromArgs(args []string) []string {
	var specifiers []string
	for _, arg := range args {
		trimmed := strings.TrimSpace(arg)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}
		specifiers = append(specifiers, trimmed)
	}
	return specifiers
}

// SpecifiersFromManifest emits one name@range specifier per dependency
// across the manifest's dependency maps, in the fixed field order:
// production, development, optional, peer. Duplicates are permitted;
// deduplication happens downstream at the purl level.
func SpecifiersFromManifest(manifest types.Manifest) []string {
	var specifiers []string
	for _, field := range types.DependencyFields {
		for _, dep := range manifest.Field(field) {
			specifiers = append(specifiers, dep.Name+"@"+dep.Range)
		}
	}
	return specifiers
}

// DedupeIDs removes duplicate package identifiers while preserving
// first-seen order.
func DedupeIDs(ids []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
