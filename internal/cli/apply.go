package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsix-sync/internal/app"
)

type applyOptions struct {
	planOptions
	DryRun bool
}

func newApplyCommand() *cobra.Command {
	opts := applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile an editor with a market and execute the plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd.Context(), cmd, opts)
		},
	}
	addPlanFlags(cmd, &opts.planOptions)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the plan without executing it")
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
	return cmd
}

func runApply(ctx context.Context, cmd *cobra.Command, opts applyOptions) error {
	service := newAppService()
	result, err := service.Apply(ctx, app.ApplyRequest{
		PlanRequest: planRequest(cmd, opts.planOptions),
		DryRun:      resolveBool(cmd, opts.DryRun, "dry_run", "dry-run"),
	})
	if err != nil {
		return err
	}
	printPlan(result.Market.Name, result.Plan)
	if result.DryRun || result.Plan.Empty() {
		return nil
	}
	failed := result.Report.Failed()
	fmt.Printf("applied %d actions, %d failed\n", len(result.Report.Records)-len(failed), len(failed))
	for _, record := range failed {
		fmt.Printf("! %s %s: %s\n", record.Action.Kind, record.Action.ID, record.Err)
	}
	return nil
}
