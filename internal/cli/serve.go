package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsix-sync/internal/app"
)

type serveOptions struct {
	Markets string
	Market  string
	Addr    string
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a market as a local extension marketplace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Markets, "markets", "markets.yaml", "Markets spec path")
	cmd.Flags().StringVar(&opts.Market, "market", "", "Market name")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":6789", "Listen address")
	_ = viper.BindPFlag("markets", cmd.Flags().Lookup("markets"))
	_ = viper.BindPFlag("market", cmd.Flags().Lookup("market"))
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	service := newAppService()
	return service.Serve(ctx, app.ServeRequest{
		MarketsPath: resolveString(cmd, opts.Markets, "markets", "markets"),
		Market:      resolveString(cmd, opts.Market, "market", "market"),
		Addr:        resolveString(cmd, opts.Addr, "addr", "addr"),
	})
}
