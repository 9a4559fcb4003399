package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/pack"
)

// GlobalFlags are shared by every command.
type GlobalFlags struct {
	Config  string
	Verbose bool
}

var (
	globalFlags GlobalFlags
	logger      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "wasmbuild",
	Short: "Package wasm-bindgen output as a JavaScript bundle",
	Long: `wasmbuild runs wasm-bindgen on a WebAssembly binary and packages the
result as an entry module, an internal glue module, declarations and a
wasm binary whose imports point at the renamed glue.

Settings are read from wasmbuild.toml in the current directory or any
parent; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(globalFlags.Verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		bindgen.SetLogger(l.Named("bindgen"))
		pack.SetLogger(l.Named("pack"))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", "", "path to wasmbuild.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inspectCmd)
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		newPrinter(os.Stderr).errorf("%v", err)
		os.Exit(1)
	}
}
