// Package loader synthesizes the entry module of a bundle.
//
// The entry module is the file a JavaScript runtime imports. It loads the
// wasm binary, re-exports the internal module and hands the wasm instance to
// the internal module exactly once, before any export can run:
//
//	import * as wasm from "./foo.wasm";
//	export * from "./foo.internal.js";
//	import { __wbg_set_wasm } from "./foo.internal.js";
//	__wbg_set_wasm(wasm);
//
// ES module evaluation order guarantees the injection runs after the
// internal module is evaluated and before any importer of the entry module
// sees its exports.
package loader

import (
	"bytes"
	"regexp"
	"strconv"
	"text/template"

	"github.com/wippyai/wasmbuild/naming"
)

// SetWasmFunc is the internal-module function that receives the wasm instance.
const SetWasmFunc = "__wbg_set_wasm"

// Header marks entry modules as generated output.
const Header = `// @generated file from wasmbuild -- do not edit
// deno-lint-ignore-file
// deno-fmt-ignore-file
`

// hashLine matches the source hash stamp written below the header.
var hashLine = regexp.MustCompile(`(?m)^// source-hash: ([0-9a-f]+)\r?$`)

// Options controls entry module rendering.
type Options struct {
	// Start is the name of a start export to call after injection, if any.
	Start string

	// SourceHash is stamped below the header when set.
	SourceHash string

	// OmitHeader drops the generated-file header.
	OmitHeader bool
}

// HeaderWithHash returns Header followed by the source hash stamp.
func HeaderWithHash(hash string) string {
	if hash == "" {
		return Header
	}
	return Header + "// source-hash: " + hash + "\n"
}

// ReadSourceHash returns the source hash stamped into a generated module.
func ReadSourceHash(text string) (string, bool) {
	m := hashLine.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var entryTemplate = template.Must(template.New("entry").Parse(
	`{{if .Header}}{{.Header}}{{end}}import * as wasm from {{.WasmRef}};
export * from {{.InternalRef}};
import { {{.SetWasm}} } from {{.InternalRef}};
{{.SetWasm}}(wasm);
{{if .StartCall}}{{.StartCall}}();
{{end}}`))

type entryData struct {
	Header      string
	WasmRef     string
	InternalRef string
	SetWasm     string
	StartCall   string
}

// Synthesize renders the entry module for the given naming scheme.
func Synthesize(scheme naming.Scheme, opts Options) (string, error) {
	data := entryData{
		Header:      HeaderWithHash(opts.SourceHash),
		WasmRef:     strconv.Quote(scheme.WasmRef),
		InternalRef: strconv.Quote(scheme.InternalRef),
		SetWasm:     SetWasmFunc,
		StartCall:   startCall(opts.Start),
	}
	if opts.OmitHeader {
		data.Header = ""
	}

	var buf bytes.Buffer
	if err := entryTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// startCall returns the expression referencing the start export, using
// bracket notation for names that are not plain identifiers.
func startCall(start string) string {
	if start == "" {
		return ""
	}
	if isIdentifier(start) {
		return "wasm." + start
	}
	return "wasm[" + strconv.Quote(start) + "]"
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
