package app

import (
	"context"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"depsentry/internal/core"
	"depsentry/internal/types"
)

// Fix applies best-effort auto-remediation: for every flagged package,
// it selects the highest non-vulnerable version within the node's
// major line and rewrites the node in place. Mutations have no
// rollback path; the updated snapshot is written to OutputPath when
// one is given.
func (s Service) Fix(ctx context.Context, req FixRequest) (FixResult, error) {
	if strings.TrimSpace(req.GraphPath) == "" {
		return FixResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("graph snapshot path is required")
	}
	if len(req.Targets) == 0 {
		return FixResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one fix target is required")
	}

	root, err := s.Graphs.LoadGraph(req.GraphPath)
	if err != nil {
		return FixResult{}, err
	}

	var result FixResult
	for _, target := range req.Targets {
		assert.NotEmpty(ctx, target.Name, "fix target name must be set")
		nodes := findNodes(root, target.Name)
		if len(nodes) == 0 {
			log.Ctx(ctx).Warn().Str("package", target.Name).Msg("flagged package not present in graph")
			result.Outcomes = append(result.Outcomes, FixOutcome{Name: target.Name})
			continue
		}
		packument, err := s.Registry.Packument(ctx, target.Name)
		if err != nil {
			return FixResult{}, err
		}
		applyOverridePin(&packument, root.Overrides, target.Name)

		for _, node := range nodes {
			from := node.Version
			updated, err := core.UpdateNode(node, packument, target.VulnerableRange, target.FirstPatched)
			if err != nil {
				return FixResult{}, err
			}
			outcome := FixOutcome{Name: target.Name, From: from, Updated: updated}
			if updated {
				outcome.To = node.Version
				log.Ctx(ctx).Info().
					Str("package", target.Name).
					Str("from", from).
					Str("to", node.Version).
					Msg("patched vulnerable package")
			} else {
				log.Ctx(ctx).Warn().
					Str("package", target.Name).
					Str("version", from).
					Msg("no suitable non-vulnerable version in the current major line")
			}
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}

	if req.OutputPath != "" {
		if err := s.Graphs.SaveGraph(req.OutputPath, root); err != nil {
			return FixResult{}, err
		}
	}
	return result, nil
}

// applyOverridePin translates a resolver override (pinned version) into
// a major-line restriction for the patch selector.
func applyOverridePin(packument *types.Packument, overrides map[string]string, name string) {
	pinned, ok := overrides[name]
	if !ok {
		return
	}
	version, err := semver.NewVersion(strings.TrimLeft(pinned, "^~=v"))
	if err != nil {
		return
	}
	major := version.Major()
	packument.PinnedMajor = &major
}

// findNodes walks the graph breadth-first collecting every occurrence
// of the named package. The same iteration ceiling as the diff walk
// guards against malformed input.
func findNodes(root *types.Node, name string) []*types.Node {
	var matches []*types.Node
	queue := []*types.Node{root}
	iterations := 0
	for len(queue) > 0 {
		iterations++
		if iterations > 1<<20 {
			return matches
		}
		node := queue[0]
		queue = queue[1:]
		if node.Name == name && node != root {
			matches = append(matches, node)
		}
		for _, child := range node.Children {
			queue = append(queue, child)
		}
	}
	return matches
}
