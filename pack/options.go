package pack

import "github.com/wippyai/wasmbuild/bindgen"

// Options selects the shape of the bundle and the optional pipeline steps.
type Options struct {
	// IncludeEntryModule adds the synthesized loader module ("js").
	// Callers that wire the wasm instance themselves turn it off.
	IncludeEntryModule bool

	// WrapWasmInNamedFile serializes the binary as {"name", "bytes"} under
	// "wasm" instead of bare "wasmBytes".
	WrapWasmInNamedFile bool

	// TypeScript requests and includes the declaration file.
	TypeScript bool

	// ValidateInput compiles the input binary before generation.
	ValidateInput bool

	// Verify compiles the final binary and checks its import modules.
	Verify bool

	// WeakRefs is forwarded to the generator.
	WeakRefs bool

	// ReferenceTypes is forwarded to the generator.
	ReferenceTypes bool

	// Target is the generator output style. Only TargetBundler separates
	// the glue from wasm instantiation, so it is the only target that can
	// be packaged; the field exists so callers fail loudly on the others.
	Target bindgen.Target
}

// DefaultOptions returns the full bundle layout with declarations.
func DefaultOptions() Options {
	return Options{
		IncludeEntryModule:  true,
		WrapWasmInNamedFile: true,
		TypeScript:          true,
		Target:              bindgen.TargetBundler,
	}
}
