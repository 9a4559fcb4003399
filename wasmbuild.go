package wasmbuild

import (
	"context"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/pack"
)

// Bundle is the packaged output of one call.
type Bundle = pack.Bundle

// GenerateBindgen packages wasmBytes as module name with source extension
// ext ("js" or "mjs"), running the wasm-bindgen executable found on PATH.
func GenerateBindgen(ctx context.Context, name, ext string, wasmBytes []byte) (*Bundle, error) {
	return Build(ctx, &bindgen.CLIGenerator{}, name, ext, wasmBytes, pack.DefaultOptions())
}

// Build packages wasmBytes with generator g and the given options.
func Build(ctx context.Context, g bindgen.Generator, name, ext string, wasmBytes []byte, opts pack.Options) (*Bundle, error) {
	p := &pack.Packager{Generator: g, Options: opts}
	return p.Generate(ctx, name, ext, wasmBytes)
}
