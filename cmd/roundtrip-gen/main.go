// Package main provides the CLI entrypoint for roundtrip-gen.
//
// roundtrip-gen generates, for declared Go types, functions mapping a value
// over source type arguments into the value a decoder produces when reading
// its encoding at target type arguments:
//   - analyze prints the shapes of the exported types of a package
//   - check composes the requested pairs and reports diagnostics
//   - gen writes the generated functions next to the types
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Flag names, also read from ROUNDTRIP_* environment variables.
const (
	flagPkg     = "pkg"
	flagTypes   = "types"
	flagAliases = "aliases"
	flagConfig  = "config"
	flagOut     = "out"
	flagPrefix  = "prefix"
	flagLeaves  = "leaves"
	flagVerbose = "verbose"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by the subcommands.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "roundtrip-gen",
		Short:         "Generate round-trip transformations for Go types",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}

			logger, err := newLogger(a.v.GetBool(flagVerbose))
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}

			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	a.v.SetEnvPrefix("ROUNDTRIP")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.PersistentFlags().Bool(flagVerbose, false, "enable debug logging")

	root.AddCommand(a.analyzeCmd(), a.checkCmd(), a.genCmd())

	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

// addSelectionFlags registers the flags naming the package and types.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagPkg, "", "package pattern holding the types (e.g. ./examples/deriving)")
	cmd.Flags().StringSlice(flagTypes, nil, "type names, Source or Source:Target (comma separated)")
	cmd.Flags().StringSlice(flagAliases, nil, "alias function names (comma separated)")
	cmd.Flags().String(flagConfig, "", "path to a roundtrip.yaml manifest")
	cmd.Flags().String(flagPrefix, "", "function name prefix")
}
