package main

import (
	"context"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/spf13/cobra"
)

var swatchOpts cli.CompileOptions

var swatchCmd = &cobra.Command{
	Use:   "swatch [name]",
	Short: "List or compile the built-in swatches",
	Long: `Without a name, lists the built-in swatches and their parameters.
With a name, compiles that swatch: knitout swatch rib --set width=8 --set rib_width=2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cli.NewBackend(cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		if len(args) == 0 {
			cli.RunSwatchList(b, streams(cmd))
			return nil
		}
		params, _ := cmd.Flags().GetStringToString("set")
		_, err = cli.RunSwatch(context.Background(), b, args[0], params, swatchOpts, streams(cmd))
		return err
	},
}

func init() {
	rootCmd.AddCommand(swatchCmd)

	swatchCmd.Flags().StringToString("set", nil, "Swatch parameter as name=value (repeatable)")
	swatchCmd.Flags().StringVarP(&swatchOpts.Output, "output", "o", "", "Write the program to this file")
	swatchCmd.Flags().BoolVarP(&swatchOpts.Report, "report", "r", false, "Print a summary of the program to stderr")
}
