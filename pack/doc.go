// Package pack assembles binding generator output into a bundle.
//
// A packaging call resolves the bundle's names, runs the binding generator
// once, points the wasm imports that the generator aimed at its own internal
// module at the bundle's internal module, and serializes the binary:
//
//	b, err := pack.New(&bindgen.CLIGenerator{}).Generate(ctx, "foo", "js", wasmBytes)
//
// For name "foo" and extension "js" the bundle contains
//
//	foo.js           entry module (optional)
//	foo.internal.js  internal module
//	foo.d.ts         declarations (optional)
//	foo.wasm         rewritten binary
//	snippets/...     inline snippets and local modules
//
// Calls share no state. Failures are *errors.Error values in the naming,
// generate, assemble or verify phase, and no partial bundle is returned.
package pack
