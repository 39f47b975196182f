package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsix-sync/internal/app"
	"vsix-sync/internal/types"
)

type planOptions struct {
	Markets        string
	Market         string
	EditorCLI      string
	DisabledFile   string
	InstallMissing bool
	SyncRemovals   bool
	SyncDisabled   bool
	Force          bool
}

func newPlanCommand() *cobra.Command {
	opts := planOptions{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the actions needed to reconcile an editor with a market",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), cmd, opts)
		},
	}
	addPlanFlags(cmd, &opts)
	return cmd
}

func addPlanFlags(cmd *cobra.Command, opts *planOptions) {
	cmd.Flags().StringVar(&opts.Markets, "markets", "markets.yaml", "Markets spec path")
	cmd.Flags().StringVar(&opts.Market, "market", "", "Market name")
	cmd.Flags().StringVar(&opts.EditorCLI, "cli", "", "Target editor CLI (default: code)")
	cmd.Flags().StringVar(&opts.DisabledFile, "disabled-file", "", "File listing disabled extension ids")
	cmd.Flags().BoolVar(&opts.InstallMissing, "install-missing", false, "Install extensions not present in the editor")
	cmd.Flags().BoolVar(&opts.SyncRemovals, "sync-removals", false, "Uninstall extensions absent from the market")
	cmd.Flags().BoolVar(&opts.SyncDisabled, "sync-disabled", false, "Mirror the reference editor's enabled/disabled state")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Shorthand for all sync switches")

	_ = viper.BindPFlag("markets", cmd.Flags().Lookup("markets"))
	_ = viper.BindPFlag("market", cmd.Flags().Lookup("market"))
	_ = viper.BindPFlag("cli", cmd.Flags().Lookup("cli"))
	_ = viper.BindPFlag("disabled_file", cmd.Flags().Lookup("disabled-file"))
	_ = viper.BindPFlag("install_missing", cmd.Flags().Lookup("install-missing"))
	_ = viper.BindPFlag("sync_removals", cmd.Flags().Lookup("sync-removals"))
	_ = viper.BindPFlag("sync_disabled", cmd.Flags().Lookup("sync-disabled"))
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))
}

func planRequest(cmd *cobra.Command, opts planOptions) app.PlanRequest {
	return app.PlanRequest{
		MarketsPath:  resolveString(cmd, opts.Markets, "markets", "markets"),
		Market:       resolveString(cmd, opts.Market, "market", "market"),
		EditorCLI:    resolveString(cmd, opts.EditorCLI, "cli", "cli"),
		DisabledFile: resolveString(cmd, opts.DisabledFile, "disabled_file", "disabled-file"),
		Policy: types.SyncPolicy{
			InstallMissing: resolveBool(cmd, opts.InstallMissing, "install_missing", "install-missing"),
			SyncRemovals:   resolveBool(cmd, opts.SyncRemovals, "sync_removals", "sync-removals"),
			SyncDisabled:   resolveBool(cmd, opts.SyncDisabled, "sync_disabled", "sync-disabled"),
			Force:          resolveBool(cmd, opts.Force, "force", "force"),
		},
	}
}

func runPlan(ctx context.Context, cmd *cobra.Command, opts planOptions) error {
	service := newAppService()
	result, err := service.Plan(ctx, planRequest(cmd, opts))
	if err != nil {
		return err
	}
	printPlan(result.Market.Name, result.Plan)
	return nil
}

func printPlan(market string, plan types.ActionPlan) {
	if plan.Empty() {
		fmt.Printf("market %s is in sync, nothing to do\n", market)
	} else {
		fmt.Printf("planned actions for market %s:\n", market)
		for _, action := range plan.Actions {
			printAction(action)
		}
	}
	for _, warning := range plan.Warnings {
		fmt.Printf("! %s: %s\n", warning.ID, warning.Reason)
	}
}

func printAction(action types.Action) {
	switch action.Kind {
	case types.ActionInstall:
		fmt.Printf("- install %s@%s\n", action.ID, action.Version)
	case types.ActionUpdate:
		fmt.Printf("- update %s %s -> %s\n", action.ID, action.CurrentVersion, action.Version)
	default:
		fmt.Printf("- %s %s\n", action.Kind, action.ID)
	}
}
