package bindgen

import (
	"context"
	"sync/atomic"

	"github.com/wippyai/wasmbuild/wasm"
)

// Artifacts is the raw output of one generator run. It is owned by a single
// packaging call; the wasm module in particular is mutated in place by the
// import rewriter.
type Artifacts struct {
	// JS is the internal module text.
	JS string

	// TS is the declaration text, nil when declarations were not produced.
	TS *string

	// Snippets maps a snippet package identifier to its inline JS snippets
	// in generator order.
	Snippets map[string][]string

	// LocalModules maps a local module path to its JS text.
	LocalModules map[string]string

	// Module is the generated wasm binary.
	Module *wasm.Module

	// Start names the exported start function, nil when there is none.
	Start *string
}

// Generator produces binding artifacts for a wasm binary.
type Generator interface {
	Generate(ctx context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error)
}

// ModuleRefNamer is implemented by generators whose default internal-module
// reference differs from Config.DefaultModuleRef.
type ModuleRefNamer interface {
	DefaultModuleRef(cfg Config) string
}

// DefaultModuleRef returns the reference g writes into wasm imports for cfg.
func DefaultModuleRef(g Generator, cfg Config) string {
	if n, ok := g.(ModuleRefNamer); ok {
		return n.DefaultModuleRef(cfg)
	}
	return cfg.DefaultModuleRef()
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error) {
	return f(ctx, cfg, wasmBytes)
}

// Counting wraps a Generator and counts invocations.
type Counting struct {
	Generator Generator
	calls     atomic.Int64
}

// NewCounting wraps g.
func NewCounting(g Generator) *Counting {
	return &Counting{Generator: g}
}

// Generate records the call and delegates.
func (c *Counting) Generate(ctx context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error) {
	c.calls.Add(1)
	return c.Generator.Generate(ctx, cfg, wasmBytes)
}

// DefaultModuleRef delegates to the wrapped generator.
func (c *Counting) DefaultModuleRef(cfg Config) string {
	return DefaultModuleRef(c.Generator, cfg)
}

// Calls returns the number of Generate invocations.
func (c *Counting) Calls() int {
	return int(c.calls.Load())
}
