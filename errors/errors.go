package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseNaming   Phase = "naming"   // name and extension resolution
	PhaseGenerate Phase = "generate" // external binding generator
	PhaseParse    Phase = "parse"    // wasm binary decoding
	PhaseRewrite  Phase = "rewrite"  // import section rewriting
	PhaseOptimize Phase = "optimize" // external wasm optimizer
	PhaseAssemble Phase = "assemble" // bundle assembly
	PhaseVerify   Phase = "verify"   // post-assembly verification
	PhaseEncode   Phase = "encode"   // bundle serialization
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedExtension Kind = "unsupported_extension"
	KindInvalidName          Kind = "invalid_name"
	KindGeneratorFailed      Kind = "generator_failed"
	KindOptimizerFailed      Kind = "optimizer_failed"
	KindInvalidConfig        Kind = "invalid_config"
	KindInvalidWasm          Kind = "invalid_wasm"
	KindMissingArtifact      Kind = "missing_artifact"
	KindInvariant            Kind = "invariant"
	KindUnresolvedImport     Kind = "unresolved_import"
	KindSerialization        Kind = "serialization"
)

// Error is the structured error type used throughout the pipeline
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	File   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}

	if e.Value != nil {
		fmt.Fprintf(&b, " %q", fmt.Sprint(e.Value))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Kind matches any error of the same Phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Phase != t.Phase {
		return false
	}
	return t.Kind == "" || e.Kind == t.Kind
}

// Sentinels for errors.Is checks against a whole failure class.
var (
	ErrNaming     = &Error{Phase: PhaseNaming}
	ErrGeneration = &Error{Phase: PhaseGenerate}
	ErrAssembly   = &Error{Phase: PhaseAssemble}
)

// PhaseOf returns the phase of the first *Error in err's chain, or "".
func PhaseOf(err error) Phase {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Phase
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// File sets the output file the error concerns
func (b *Builder) File(name string) *Builder {
	b.err.File = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Naming creates a naming error for an invalid name or extension
func Naming(kind Kind, value string, detail string) *Error {
	return &Error{
		Phase:  PhaseNaming,
		Kind:   kind,
		Value:  value,
		Detail: detail,
	}
}

// Generation wraps a failure reported by the binding generator.
// The cause's message is carried verbatim.
func Generation(cause error) *Error {
	return &Error{
		Phase: PhaseGenerate,
		Kind:  KindGeneratorFailed,
		Cause: cause,
	}
}

// Assembly creates an invariant violation raised while merging artifacts
func Assembly(detail string, args ...any) *Error {
	return New(PhaseAssemble, KindInvariant).Detail(detail, args...).Build()
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
