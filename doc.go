// Package wasmbuild packages wasm-bindgen output into a self-contained
// JavaScript bundle.
//
// A Rust crate compiled to WebAssembly and run through a binding generator
// yields a wasm binary plus JS glue whose wasm imports point at the
// generator's own file names. wasmbuild renames the glue, rewrites those
// imports to match, and adds a small entry module that wires the binary to
// the glue, so the result can be imported directly by a JavaScript runtime.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wasmbuild/           Root package with the one-call GenerateBindgen entry point
//	├── pack/            Packaging pipeline, bundle assembly and serialization
//	├── bindgen/         Binding generator interface, adapter and wasm-bindgen CLI driver
//	├── naming/          Output file names and module references
//	├── loader/          Entry module synthesis
//	├── wasm/            Core wasm section document and import rewriting
//	├── errors/          Structured error types for the pipeline phases
//	└── cmd/wasmbuild/   Command line tool
//
// # Quick Start
//
// Package a binary with wasm-bindgen from PATH:
//
//	b, err := wasmbuild.GenerateBindgen(ctx, "foo", "js", wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range b.Files() {
//	    fmt.Println(f.Path) // foo.js, foo.internal.js, foo.d.ts, foo.wasm, ...
//	}
//
// # Output Layout
//
// For module name "foo" and extension "js" (or "mjs"):
//
//   - foo.js: entry module, imports foo.wasm and injects it into the internal module
//   - foo.internal.js: generator glue
//   - foo.d.ts (foo.d.mts): declarations
//   - foo.wasm: binary with its glue imports pointing at ./foo.internal.js
//   - snippets/<id>/inlineN.js and other local modules
//
// # Thread Safety
//
// Packaging calls share no state. A Packager may be used from several
// goroutines at once; each call owns its artifacts and wasm document.
package wasmbuild
