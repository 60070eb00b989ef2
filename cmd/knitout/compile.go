package main

import (
	"context"
	"time"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/spf13/cobra"
)

var compileOpts cli.CompileOptions

var compileCmd = &cobra.Command{
	Use:   "compile <pattern>",
	Short: "Compile a pattern into a knitout program",
	Long: `Compiles a row or graph document (YAML or JSON) into knitout.
Use "-" to read the document from stdin. The program is written to stdout
unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compileOpts.Path = args[0]
		watch, _ := cmd.Flags().GetBool("watch")
		interval, _ := cmd.Flags().GetDuration("interval")

		b, err := cli.NewBackend(cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if watch {
			return cli.RunWatch(sigCtx, b, compileOpts, interval, streams(cmd))
		}
		_, err = cli.RunCompile(sigCtx, b, compileOpts, streams(cmd))
		return err
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOpts.Output, "output", "o", "", "Write the program to this file")
	compileCmd.Flags().StringVarP(&compileOpts.Format, "format", "f", "yaml", "Format of a document read from stdin: yaml or json")
	compileCmd.Flags().BoolVarP(&compileOpts.Report, "report", "r", false, "Print a summary of the program to stderr")
	compileCmd.Flags().BoolP("watch", "w", false, "Recompile whenever the pattern changes")
	compileCmd.Flags().Duration("interval", 100*time.Millisecond, "How long --watch waits for the pattern to settle before recompiling")
}
