package main

import (
	"context"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/aretw0/knitout/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the compiler as a JSON/YAML API over HTTP, with the OpenAPI document at /openapi.yaml,
Prometheus metrics at /metrics and compile progress as Server-Sent Events at /events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		tui.PrintBanner(cmd.ErrOrStderr())

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		return cli.RunServe(sigCtx, cfg, logger, streams(cmd))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
}
