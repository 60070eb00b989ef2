package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/knitout"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of knitout",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "knitout version %s\n", strings.TrimSpace(knitout.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
