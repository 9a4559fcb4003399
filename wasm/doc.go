// Package wasm provides a structured, editable view of WebAssembly binaries.
//
// A Module keeps every section in its original order. The import and
// export sections are decoded into typed entries; all other sections are
// carried as raw payloads. Encoding writes untouched sections back
// byte-for-byte, so a parse/encode round trip without edits reproduces the
// input exactly.
//
// # Parsing
//
//	m, err := wasm.Parse(data)
//	if err != nil {
//	    return err
//	}
//
// # Rewriting imports
//
// Import module specifiers can be renamed in place. Order, field names,
// kinds and descriptors are preserved:
//
//	n := m.RenameImportModule("./foo_bg.js", "./foo.internal.js")
//
// # Encoding
//
//	out := m.Encode()
//
// Only entries that actually changed are re-encoded; all other import
// entries are copied from their original bytes.
package wasm
