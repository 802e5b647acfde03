package core

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"depsentry/internal/shared"
	"depsentry/internal/types"
)

// maxDiffIterations bounds the diff traversal. The upstream resolver's
// graph is acyclic by contract, but a malformed or cyclic graph must
// never infinite-loop in production.
const maxDiffIterations = 1 << 20

// DiffOptions controls which diff entries survive the walk.
type DiffOptions struct {
	// IncludeUnchanged additionally emits every unchanged ideal node,
	// paired with itself as Existing.
	IncludeUnchanged bool
	// IncludeUnknownOrigin keeps packages whose resolved location does
	// not originate from the default registry. Off by default: the
	// alert service only has data for the default registry.
	IncludeUnknownOrigin bool
	// RegistryURL is the default registry origin. Empty falls back to
	// shared.DefaultRegistryURL.
	RegistryURL string
}

type diffPair struct {
	ideal  *types.Node
	actual *types.Node
}

// WalkDiff compares a newly resolved ideal graph against the previously
// installed actual graph and returns the entries that represent
// installable changes: additions and real version bumps. Pure removals
// and origin-filtered nodes are excluded. Output order is not stable;
// callers must deduplicate by package identifier.
func WalkDiff(ctx context.Context, ideal *types.Node, actual *types.Node, opts DiffOptions) ([]types.DiffEntry, error) {
	if ideal == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("ideal graph root is required")
	}
	registry := opts.RegistryURL
	if registry == "" {
		registry = shared.DefaultRegistryURL
	}

	var entries []types.DiffEntry
	queue := enqueueChildren(nil, ideal, actual)

	iterations := 0
	for len(queue) > 0 {
		iterations++
		if iterations > maxDiffIterations {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("dependency diff exceeded iteration ceiling; graph is malformed or cyclic")
		}
		pair := queue[0]
		queue = queue[1:]

		entry := classify(pair)
		queue = enqueueChildren(queue, pair.ideal, pair.actual)

		switch entry.Action {
		case types.DiffActionRemoved:
			// Nothing new is being installed for a removal.
			continue
		case types.DiffActionChanged:
			if entry.Ideal.Version == entry.Actual.Version {
				// Pure metadata churn carries no security-relevant
				// information.
				continue
			}
		case types.DiffActionUnchanged:
			if !opts.IncludeUnchanged {
				continue
			}
		}

		if !keepOrigin(entry.Ideal, registry, opts.IncludeUnknownOrigin) {
			log.Ctx(ctx).Debug().
				Str("package", entry.Ideal.Name).
				Str("resolved", entry.Ideal.Resolved).
				Msg("excluded non-default-registry package from scan")
			continue
		}
		entries = append(entries, entry)
	}

	log.Ctx(ctx).Debug().Int("entries", len(entries)).Msg("dependency diff completed")
	return entries, nil
}

// enqueueChildren pairs each ideal child with the actual child of the
// same name, when one exists. Actual-only children are enqueued as
// removal pairs so the walk observes them before dropping them.
func enqueueChildren(queue []diffPair, ideal *types.Node, actual *types.Node) []diffPair {
	if ideal == nil {
		return queue
	}
	for name, child := range ideal.Children {
		pair := diffPair{ideal: child}
		if actual != nil {
			pair.actual = actual.Children[name]
		}
		queue = append(queue, pair)
	}
	if actual != nil {
		for name, child := range actual.Children {
			if _, ok := ideal.Children[name]; !ok {
				queue = append(queue, diffPair{actual: child})
			}
		}
	}
	return queue
}

func classify(pair diffPair) types.DiffEntry {
	entry := types.DiffEntry{Ideal: pair.ideal, Actual: pair.actual}
	switch {
	case pair.ideal == nil:
		entry.Action = types.DiffActionRemoved
	case pair.actual == nil:
		entry.Action = types.DiffActionAdded
	case pair.ideal.Name == pair.actual.Name && pair.ideal.Version == pair.actual.Version:
		entry.Action = types.DiffActionUnchanged
		entry.Existing = pair.ideal
	default:
		entry.Action = types.DiffActionChanged
		if pair.ideal.Name == pair.actual.Name {
			// Same package at a different version: retain the installed
			// occurrence so callers can tell a bump from a fresh install.
			entry.Existing = pair.actual
		}
	}
	return entry
}

func keepOrigin(node *types.Node, registry string, includeUnknown bool) bool {
	if node == nil || node.Resolved == "" {
		return false
	}
	if includeUnknown {
		return true
	}
	return shared.SameOrigin(node.Resolved, registry)
}
