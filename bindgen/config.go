package bindgen

import (
	"fmt"

	"github.com/wippyai/wasmbuild/naming"
)

// Target selects the generator's output style.
type Target string

const (
	// TargetBundler emits a separable internal module plus a thin wrapper
	// and expects the host to inject the wasm instance.
	TargetBundler Target = "bundler"
	// TargetDeno emits a single module that loads the wasm itself.
	TargetDeno Target = "deno"
	// TargetWeb emits a single module with an async init function.
	TargetWeb Target = "web"
)

// runtimeModuleRef is the import module wasm-bindgen uses for its own glue
// in every runtime-direct target.
const runtimeModuleRef = "wbg"

// StartExport is the export wasm-bindgen emits for #[wasm_bindgen(start)].
const StartExport = "__wbindgen_start"

// Config is passed to the generator for one packaging call.
type Config struct {
	Target Target

	// OutName is the base name the generator uses for its own files and
	// for the internal-module reference it writes into the wasm imports.
	OutName string

	// TypeScript enables declaration output.
	TypeScript bool

	// WeakRefs enables FinalizationRegistry based cleanup in the glue.
	WeakRefs bool

	// ReferenceTypes lets the generator use externref in the binary.
	ReferenceTypes bool
}

// DefaultConfig returns the bundler configuration used for packaging name.
func DefaultConfig(name string) Config {
	return Config{
		Target:     TargetBundler,
		OutName:    name,
		TypeScript: true,
	}
}

// Validate checks that the configuration can be handed to a generator.
func (c Config) Validate() error {
	switch c.Target {
	case TargetBundler, TargetDeno, TargetWeb:
	default:
		return fmt.Errorf("unknown target %q", c.Target)
	}
	if err := naming.ValidateName(c.OutName); err != nil {
		return fmt.Errorf("out name: %w", err)
	}
	return nil
}

// DefaultModuleRef returns the module specifier the generator writes into
// the wasm import section for imports served by its internal module.
//
// In bundler mode this is the relative path of the "_bg" JS file; the
// runtime-direct targets use a fixed placeholder.
func (c Config) DefaultModuleRef() string {
	if c.Target == TargetBundler {
		return "./" + c.OutName + "_bg.js"
	}
	return runtimeModuleRef
}
