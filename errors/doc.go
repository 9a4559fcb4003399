// Package errors provides structured error types for the packaging pipeline.
//
// Errors are categorized by Phase (which pipeline stage failed) and Kind
// (error category). Every packaging error is terminal: no partial bundle is
// returned alongside it.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseNaming, errors.KindUnsupportedExtension).
//		Value("wasm").
//		Detail("supported extensions are js, mjs").
//		Build()
//
// Or use the constructors for the three pipeline failure classes:
//
//	err := errors.Naming(errors.KindInvalidName, name, "contains a path separator")
//	err := errors.Generation(cause)
//	err := errors.Assembly("declaration present without declaration extension")
//
// Callers at a string boundary can rely on Error(); callers in Go can use
// PhaseOf, errors.Is and errors.As.
package errors
