package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/knitout/internal/cli"
	"github.com/aretw0/knitout/internal/config"
	"github.com/spf13/cobra"
)

var (
	globals cli.GlobalOptions
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "knitout",
	Short: "knitout compiles knitting patterns for V-bed knitting machines",
	Long: `knitout turns row patterns and knit graphs into knitout programs,
simulating the machine as it goes so every needle, carrier and transfer is checked.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, logger, err = cli.Setup(globals, cmd.ErrOrStderr())
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVarP(&globals.ConfigPath, "config", "c", "", "Configuration file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&globals.EnvFile, "env-file", ".env", "Dotenv file with "+config.EnvPrefix+"* overrides")
	rootCmd.PersistentFlags().StringVar(&globals.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&globals.Debug, "debug", false, "Enable debug logging")
}

// streams returns the command's standard streams.
func streams(cmd *cobra.Command) cli.Streams {
	return cli.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
}
