package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depsentry/internal/app"
)

type execOptions struct {
	Policy       string
	AcceptRisks  bool
	ViewAllRisks bool
	DryRun       bool
}

func newExecCommand() *cobra.Command {
	opts := execOptions{}
	cmd := &cobra.Command{
		Use:   "exec [flags] -- <package>...",
		Short: "Scan packages named on the command line before one-off execution",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "Shared scan policy file (YAML)")
	cmd.Flags().BoolVar(&opts.AcceptRisks, "accept-risks", false, "Only block on unaccepted error-action alerts")
	cmd.Flags().BoolVar(&opts.ViewAllRisks, "view-all-risks", false, "Also display non-blocking alerts")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Skip scanning for dry-run operations")
	return cmd
}

func runExec(ctx context.Context, cmd *cobra.Command, opts execOptions, args []string) error {
	service := newAppService()
	result, err := service.Scan(ctx, app.ScanRequest{
		Args:         args,
		PolicyPath:   resolveString(cmd, opts.Policy, "policy", "policy"),
		Subcommand:   "exec",
		DryRun:       opts.DryRun,
		AcceptRisks:  resolveBool(cmd, opts.AcceptRisks, "accept_risks", "accept-risks"),
		ViewAllRisks: resolveBool(cmd, opts.ViewAllRisks, "view_all_risks", "view-all-risks"),
		RegistryURL:  viper.GetString("registry_url"),
	})
	if err != nil {
		return err
	}
	if result.ShouldExit {
		return errInstallBlocked
	}
	fmt.Printf("scan passed: %d package alert(s) retained\n", len(result.Alerts))
	return nil
}
