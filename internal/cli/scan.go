package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depsentry/internal/app"
)

type scanOptions struct {
	Manifest             string
	IdealGraph           string
	ActualGraph          string
	Policy               string
	Subcommand           string
	DryRun               bool
	AcceptRisks          bool
	ViewAllRisks         bool
	IncludeUnchanged     bool
	IncludeUnknownOrigin bool
}

func newScanCommand() *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan new or changed dependencies before an install",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "package.json", "Package manifest path")
	cmd.Flags().StringVar(&opts.IdealGraph, "ideal-graph", "", "Newly resolved graph snapshot (enables graph-diff mode)")
	cmd.Flags().StringVar(&opts.ActualGraph, "actual-graph", "", "Previously installed graph snapshot")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "Shared scan policy file (YAML)")
	cmd.Flags().StringVar(&opts.Subcommand, "subcommand", "install", "Package-manager subcommand being intercepted")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Skip scanning for dry-run operations")
	cmd.Flags().BoolVar(&opts.AcceptRisks, "accept-risks", false, "Only block on unaccepted error-action alerts")
	cmd.Flags().BoolVar(&opts.ViewAllRisks, "view-all-risks", false, "Also display non-blocking alerts")
	cmd.Flags().BoolVar(&opts.IncludeUnchanged, "include-unchanged", false, "Also scan unchanged packages")
	cmd.Flags().BoolVar(&opts.IncludeUnknownOrigin, "include-unknown-origin", false, "Include packages from non-default registries")

	_ = viper.BindPFlag("manifest", cmd.Flags().Lookup("manifest"))
	_ = viper.BindPFlag("policy", cmd.Flags().Lookup("policy"))
	_ = viper.BindPFlag("accept_risks", cmd.Flags().Lookup("accept-risks"))
	_ = viper.BindPFlag("view_all_risks", cmd.Flags().Lookup("view-all-risks"))
	_ = viper.BindPFlag("include_unchanged", cmd.Flags().Lookup("include-unchanged"))
	_ = viper.BindPFlag("include_unknown_origin", cmd.Flags().Lookup("include-unknown-origin"))

	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, opts scanOptions) error {
	service := newAppService()
	request := app.ScanRequest{
		ManifestPath:         resolveString(cmd, opts.Manifest, "manifest", "manifest"),
		IdealGraphPath:       opts.IdealGraph,
		ActualGraphPath:      opts.ActualGraph,
		PolicyPath:           resolveString(cmd, opts.Policy, "policy", "policy"),
		Subcommand:           opts.Subcommand,
		DryRun:               opts.DryRun,
		AcceptRisks:          resolveBool(cmd, opts.AcceptRisks, "accept_risks", "accept-risks"),
		ViewAllRisks:         resolveBool(cmd, opts.ViewAllRisks, "view_all_risks", "view-all-risks"),
		IncludeUnchanged:     resolveBool(cmd, opts.IncludeUnchanged, "include_unchanged", "include-unchanged"),
		IncludeUnknownOrigin: resolveBool(cmd, opts.IncludeUnknownOrigin, "include_unknown_origin", "include-unknown-origin"),
		RegistryURL:          viper.GetString("registry_url"),
	}
	if request.IdealGraphPath != "" {
		request.ManifestPath = ""
	}
	result, err := service.Scan(ctx, request)
	if err != nil {
		return err
	}
	if result.ShouldExit {
		return errInstallBlocked
	}
	fmt.Printf("scan passed: %d package alert(s) retained\n", len(result.Alerts))
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value || viper.GetBool(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return value
}

func flagChanged(cmd *cobra.Command, flagName string) bool {
	flag := cmd.Flags().Lookup(flagName)
	return flag != nil && flag.Changed
}
