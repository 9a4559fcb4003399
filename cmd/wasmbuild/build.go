package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/pack"
)

var buildFlags struct {
	name         string
	ext          string
	out          string
	target       string
	bindgen      string
	format       string
	noTypeScript bool
	noEntry      bool
	wasmBytes    bool
	weakRefs     bool
	refTypes     bool
	verify       bool
	wasmOpt      bool
	wasmOptCmd   string
}

var buildCmd = &cobra.Command{
	Use:   "build <file.wasm>",
	Short: "Package a wasm binary",
	Long: `Run wasm-bindgen on <file.wasm> and write the bundle to the output
directory, or print it to stdout with --format json|cbor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBuildConfig()
		if err != nil {
			return err
		}
		applyBuildFlags(cmd, &cfg, args[0])
		return runBuild(cmd, cfg, args[0])
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file.wasm>",
	Short: "Check that the output directory is up to date",
	Long: `Package <file.wasm> in memory with the same settings as build and compare
its source hash with the one stamped in the output directory. Exits non-zero
when the output is missing or stale.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBuildConfig()
		if err != nil {
			return err
		}
		applyBuildFlags(cmd, &cfg, args[0])
		b, err := packageFile(cmd, cfg, args[0])
		if err != nil {
			return err
		}
		if err := checkBundle(cfg.Out, b); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "output is up to date")
		return nil
	},
}

func init() {
	addBuildFlags(buildCmd)
	buildCmd.Flags().StringVar(&buildFlags.format, "format", "", "print the bundle to stdout as json|cbor instead of writing files")
	addBuildFlags(checkCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&buildFlags.name, "name", "n", "", "module name (default: input file stem)")
	f.StringVar(&buildFlags.ext, "ext", "", "source extension: js|mjs (default js)")
	f.StringVarP(&buildFlags.out, "out", "o", "", "output directory (default lib)")
	f.StringVar(&buildFlags.target, "target", "", "wasm-bindgen target; only bundler can be packaged")
	f.StringVar(&buildFlags.bindgen, "bindgen", "", "wasm-bindgen executable (default wasm-bindgen on PATH)")
	f.BoolVar(&buildFlags.noTypeScript, "no-typescript", false, "skip the declaration file")
	f.BoolVar(&buildFlags.noEntry, "no-entry", false, "skip the entry module")
	f.BoolVar(&buildFlags.wasmBytes, "wasm-bytes", false, "serialize the binary as bare wasmBytes")
	f.BoolVar(&buildFlags.weakRefs, "weak-refs", false, "enable weak references in the glue")
	f.BoolVar(&buildFlags.refTypes, "reference-types", false, "enable reference types in the glue")
	f.BoolVar(&buildFlags.verify, "verify", false, "compile the final binary and check its imports")
	f.BoolVar(&buildFlags.wasmOpt, "wasm-opt", false, "optimize the binary with wasm-opt -Oz")
	f.StringVar(&buildFlags.wasmOptCmd, "wasm-opt-command", "", "wasm-opt executable (default wasm-opt on PATH)")
}

func loadBuildConfig() (BuildConfig, error) {
	var (
		c   *Config
		err error
	)
	if globalFlags.Config != "" {
		c, err = LoadConfig(globalFlags.Config)
	} else {
		var wd string
		if wd, err = os.Getwd(); err == nil {
			c, err = FindConfig(wd)
		}
	}
	if err != nil {
		return BuildConfig{}, err
	}
	if c == nil {
		return DefaultBuildConfig(), nil
	}
	logger.Debug("loaded config", zap.String("dir", c.Dir))
	return c.Build, nil
}

// applyBuildFlags overrides cfg with the flags set on the command line.
func applyBuildFlags(cmd *cobra.Command, cfg *BuildConfig, input string) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = buildFlags.name
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	if flags.Changed("ext") {
		cfg.Ext = buildFlags.ext
	}
	if flags.Changed("out") {
		cfg.Out = buildFlags.out
	}
	if flags.Changed("target") {
		cfg.Target = buildFlags.target
	}
	if flags.Changed("bindgen") {
		cfg.Bindgen = buildFlags.bindgen
	}
	if flags.Changed("no-typescript") {
		v := !buildFlags.noTypeScript
		cfg.TypeScript = &v
	}
	if flags.Changed("no-entry") {
		v := !buildFlags.noEntry
		cfg.EntryModule = &v
	}
	if flags.Changed("wasm-bytes") {
		v := buildFlags.wasmBytes
		cfg.WasmBytes = &v
	}
	if flags.Changed("weak-refs") {
		cfg.WeakRefs = buildFlags.weakRefs
	}
	if flags.Changed("reference-types") {
		cfg.ReferenceTypes = buildFlags.refTypes
	}
	if flags.Changed("verify") {
		cfg.Verify = buildFlags.verify
	}
	if flags.Changed("wasm-opt") {
		cfg.WasmOpt = buildFlags.wasmOpt
	}
	if flags.Changed("wasm-opt-command") {
		cfg.WasmOptCommand = buildFlags.wasmOptCmd
	}
}

// packageFile reads input and packages it with cfg.
func packageFile(cmd *cobra.Command, cfg BuildConfig, input string) (*pack.Bundle, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	p := &pack.Packager{
		Generator: cfg.Generator(),
		Options:   cfg.Options(),
		Optimizer: cfg.Optimizer(),
		Logger:    logger,
	}
	return p.Generate(cmd.Context(), cfg.Name, cfg.Ext, data)
}

func runBuild(cmd *cobra.Command, cfg BuildConfig, input string) error {
	switch buildFlags.format {
	case "", "json", "cbor":
	default:
		return fmt.Errorf("unknown format %q (want json or cbor)", buildFlags.format)
	}

	b, err := packageFile(cmd, cfg, input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch buildFlags.format {
	case "json":
		enc, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(enc))
		return err
	case "cbor":
		enc, err := b.MarshalCBOR()
		if err != nil {
			return err
		}
		_, err = out.Write(enc)
		return err
	}

	files, err := writeBundle(cfg.Out, b)
	if err != nil {
		return err
	}

	pr := newPrinter(os.Stdout)
	pr.title(fmt.Sprintf("Packaged %s", cfg.Name))
	for _, f := range files {
		pr.file(filepath.Join(cfg.Out, filepath.FromSlash(f.Path)), len(f.Data))
	}
	if b.Start != nil {
		pr.entry("start", *b.Start)
	}
	pr.entry("hash", b.SourceHash)
	return nil
}
