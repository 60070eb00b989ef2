package main

import (
	"github.com/aretw0/knitout/internal/cli"
	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses <pattern>",
	Short: "Print the course decomposition of a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunCourses(args[0], cfg, logger, streams(cmd))
	},
}

func init() {
	rootCmd.AddCommand(coursesCmd)
}
