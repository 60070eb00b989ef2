package main

import (
	"context"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <pattern>",
	Short: "Export the knit graph visualization",
	Long: `Inspects the pattern and outputs a Mermaid diagram (graph BT) with one subgraph per course.
With --needles the pattern is compiled and every loop is labelled with its needle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		needles, _ := cmd.Flags().GetBool("needles")
		return cli.RunGraph(context.Background(), args[0], needles, cfg, logger, streams(cmd))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("needles", false, "Compile and label loops with the needle they were formed on")
}
