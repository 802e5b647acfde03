package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"depsentry/internal/app"
)

type fixOptions struct {
	Graph        string
	Output       string
	Targets      []string
	FirstPatched string
}

func newFixCommand() *cobra.Command {
	opts := fixOptions{}
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Substitute non-vulnerable versions for flagged packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFix(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Graph, "graph", "", "Resolved graph snapshot path")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the patched snapshot to this path")
	cmd.Flags().StringSliceVar(&opts.Targets, "target", nil, "Flagged package as name=<vulnerable-range>")
	cmd.Flags().StringVar(&opts.FirstPatched, "first-patched", "", "First patched version hint (reserved)")
	return cmd
}

func runFix(ctx context.Context, opts fixOptions) error {
	targets, err := parseFixTargets(opts.Targets, opts.FirstPatched)
	if err != nil {
		return err
	}
	service := newAppService()
	result, err := service.Fix(ctx, app.FixRequest{
		GraphPath:  opts.Graph,
		OutputPath: opts.Output,
		Targets:    targets,
	})
	if err != nil {
		return err
	}
	for _, outcome := range result.Outcomes {
		if outcome.Updated {
			fmt.Printf("patched: %s %s -> %s\n", outcome.Name, outcome.From, outcome.To)
		} else {
			fmt.Printf("no fix available: %s\n", outcome.Name)
		}
	}
	return nil
}

func parseFixTargets(raw []string, firstPatched string) ([]app.FixTarget, error) {
	var targets []app.FixTarget
	for _, entry := range raw {
		parts := strings.SplitN(entry, "=", 2)
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid fix target: %s", entry))
		}
		target := app.FixTarget{Name: name, FirstPatched: firstPatched}
		if len(parts) == 2 {
			target.VulnerableRange = strings.TrimSpace(parts[1])
		}
		targets = append(targets, target)
	}
	return targets, nil
}
