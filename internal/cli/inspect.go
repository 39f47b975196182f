package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsix-sync/internal/app"
)

type inspectOptions struct {
	Markets string
	Market  string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a market's mirrored extensions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Markets, "markets", "markets.yaml", "Markets spec path")
	cmd.Flags().StringVar(&opts.Market, "market", "", "Market name")
	_ = viper.BindPFlag("markets", cmd.Flags().Lookup("markets"))
	_ = viper.BindPFlag("market", cmd.Flags().Lookup("market"))
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(ctx, app.InspectRequest{
		MarketsPath: resolveString(cmd, opts.Markets, "markets", "markets"),
		Market:      resolveString(cmd, opts.Market, "market", "market"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("market %s (engine %s): %d extensions\n",
		result.Market.Name, result.Market.Engine, len(result.Entries))
	for _, entry := range result.Entries {
		state := "enabled"
		if !entry.SourceEnabled {
			state = "disabled"
		}
		marker := ""
		if !entry.HasArtifact {
			marker = " (missing artifact)"
		}
		fmt.Printf("- %s@%s [%s]%s\n", entry.ID, entry.Version, state, marker)
	}
	return nil
}
