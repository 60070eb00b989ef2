package main

import (
	"context"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <pattern>...",
	Short: "Check that patterns compile on the configured machine",
	Long:  `Compiles each pattern without keeping the program and reports dead ends such as missing parents, crowded needles or transfers the machine cannot rack to.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(context.Background(), args, cfg, logger, streams(cmd))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
