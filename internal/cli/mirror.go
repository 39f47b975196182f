package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsix-sync/internal/app"
)

type mirrorOptions struct {
	Markets         string
	Extensions      []string
	EditorCLI       string
	DisabledFile    string
	GalleryEndpoint string
	Workers         int
	TimeoutSec      int
	Retries         int
	RetryDelayMs    int
}

func newMirrorCommand() *cobra.Command {
	opts := mirrorOptions{}
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Download engine-compatible extension versions into each market",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMirror(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Markets, "markets", "markets.yaml", "Markets spec path")
	cmd.Flags().StringSliceVar(&opts.Extensions, "extension", nil, "Extension id to mirror (repeatable; default: derive from installed)")
	cmd.Flags().StringVar(&opts.EditorCLI, "cli", "", "Reference editor CLI (default: code)")
	cmd.Flags().StringVar(&opts.DisabledFile, "disabled-file", "", "File listing disabled extension ids")
	cmd.Flags().StringVar(&opts.GalleryEndpoint, "gallery-endpoint", "", "Extension gallery endpoint override")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Parallel extension workers")
	cmd.Flags().IntVar(&opts.TimeoutSec, "timeout", 60, "Gallery request timeout in seconds")
	cmd.Flags().IntVar(&opts.Retries, "retries", 3, "Gallery request retries")
	cmd.Flags().IntVar(&opts.RetryDelayMs, "retry-delay-ms", 200, "Gallery retry delay in milliseconds")

	_ = viper.BindPFlag("markets", cmd.Flags().Lookup("markets"))
	_ = viper.BindPFlag("extensions", cmd.Flags().Lookup("extension"))
	_ = viper.BindPFlag("cli", cmd.Flags().Lookup("cli"))
	_ = viper.BindPFlag("disabled_file", cmd.Flags().Lookup("disabled-file"))
	_ = viper.BindPFlag("gallery_endpoint", cmd.Flags().Lookup("gallery-endpoint"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("retries", cmd.Flags().Lookup("retries"))
	_ = viper.BindPFlag("retry_delay_ms", cmd.Flags().Lookup("retry-delay-ms"))

	return cmd
}

func runMirror(ctx context.Context, cmd *cobra.Command, opts mirrorOptions) error {
	service := newAppService()
	result, err := service.Mirror(ctx, app.MirrorRequest{
		MarketsPath:     resolveString(cmd, opts.Markets, "markets", "markets"),
		Extensions:      resolveStrings(cmd, opts.Extensions, "extensions", "extension"),
		EditorCLI:       resolveString(cmd, opts.EditorCLI, "cli", "cli"),
		DisabledFile:    resolveString(cmd, opts.DisabledFile, "disabled_file", "disabled-file"),
		GalleryEndpoint: resolveString(cmd, opts.GalleryEndpoint, "gallery_endpoint", "gallery-endpoint"),
		Workers:         resolveInt(cmd, opts.Workers, "workers", "workers"),
		TimeoutSec:      resolveInt(cmd, opts.TimeoutSec, "timeout", "timeout"),
		Retries:         resolveInt(cmd, opts.Retries, "retries", "retries"),
		RetryDelayMs:    resolveInt(cmd, opts.RetryDelayMs, "retry_delay_ms", "retry-delay-ms"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("mirrored %d extensions across %d markets (%d skipped)\n",
		result.Report.Mirrored(), result.Markets, result.Report.Skipped())
	for _, record := range result.Report.Records {
		if record.Reason == "" {
			continue
		}
		fmt.Printf("- skipped %s in %s: %s\n", record.ExtensionID, record.Market, record.Reason)
	}
	return nil
}
