package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/pack"
)

// ConfigFile is the project configuration file name.
const ConfigFile = "wasmbuild.toml"

// Config represents a wasmbuild.toml project configuration.
type Config struct {
	Build BuildConfig `toml:"build"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-"`
}

// BuildConfig holds the [build] table. Unset booleans keep their defaults.
type BuildConfig struct {
	Name           string   `toml:"name"`
	Ext            string   `toml:"ext"`
	Out            string   `toml:"out"`
	Target         string   `toml:"target"`
	Bindgen        string   `toml:"bindgen"`
	BindgenArgs    []string `toml:"bindgen-args"`
	TypeScript     *bool    `toml:"typescript"`
	EntryModule    *bool    `toml:"entry-module"`
	WasmBytes      *bool    `toml:"wasm-bytes"`
	WeakRefs       bool     `toml:"weak-refs"`
	ReferenceTypes bool     `toml:"reference-types"`
	Verify         bool     `toml:"verify"`

	// WasmOpt runs wasm-opt on the rewritten binary.
	WasmOpt        bool     `toml:"wasm-opt"`
	WasmOptCommand string   `toml:"wasm-opt-command"`
	WasmOptArgs    []string `toml:"wasm-opt-args"`
}

// DefaultBuildConfig returns the settings used without a config file.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Ext:    "js",
		Out:    "lib",
		Target: string(bindgen.TargetBundler),
	}
}

// LoadConfig parses the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Config{Build: DefaultBuildConfig()}
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if !filepath.IsAbs(c.Build.Out) {
		c.Build.Out = filepath.Join(c.Dir, c.Build.Out)
	}
	return &c, nil
}

// FindConfig walks up from startDir to find a wasmbuild.toml file and loads
// it. Returns nil if no config file is found.
func FindConfig(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Options converts the build settings into packaging options.
func (b BuildConfig) Options() pack.Options {
	opts := pack.DefaultOptions()
	opts.Target = bindgen.Target(b.Target)
	opts.WeakRefs = b.WeakRefs
	opts.ReferenceTypes = b.ReferenceTypes
	opts.Verify = b.Verify
	if b.TypeScript != nil {
		opts.TypeScript = *b.TypeScript
	}
	if b.EntryModule != nil {
		opts.IncludeEntryModule = *b.EntryModule
	}
	if b.WasmBytes != nil {
		opts.WrapWasmInNamedFile = !*b.WasmBytes
	}
	return opts
}

// Generator returns the wasm-bindgen driver for these settings.
func (b BuildConfig) Generator() *bindgen.CLIGenerator {
	return &bindgen.CLIGenerator{Command: b.Bindgen, ExtraArgs: b.BindgenArgs}
}

// Optimizer returns the wasm-opt driver, or nil when optimization is off.
func (b BuildConfig) Optimizer() bindgen.Optimizer {
	if !b.WasmOpt {
		return nil
	}
	return &bindgen.WasmOpt{Command: b.WasmOptCommand, ExtraArgs: b.WasmOptArgs}
}
