package pack

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/wasmbuild/errors"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("pack: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireText is the serialized form of a TextFile.
type wireText struct {
	Name string `json:"name" cbor:"name"`
	Text string `json:"text" cbor:"text"`
}

// wireBytes is the serialized form of a BytesFile.
type wireBytes struct {
	Name  string `json:"name" cbor:"name"`
	Bytes []byte `json:"bytes" cbor:"bytes"`
}

// wireBundle is the boundary shape of a Bundle. Which of js, wasm and
// wasmBytes appear depends on the bundle's Options.
type wireBundle struct {
	JS           *wireText           `json:"js,omitempty" cbor:"js,omitempty"`
	JSBg         wireText            `json:"jsBg" cbor:"jsBg"`
	TS           *wireText           `json:"ts" cbor:"ts"`
	Snippets     map[string][]string `json:"snippets" cbor:"snippets"`
	LocalModules map[string]string   `json:"localModules" cbor:"localModules"`
	Start        *string             `json:"start" cbor:"start"`
	Wasm         *wireBytes          `json:"wasm,omitempty" cbor:"wasm,omitempty"`
	WasmBytes    []byte              `json:"wasmBytes,omitempty" cbor:"wasmBytes,omitempty"`
	SourceHash   string              `json:"sourceHash" cbor:"sourceHash"`
}

func (b *Bundle) wire() wireBundle {
	w := wireBundle{
		JSBg:         wireText{Name: b.Internal.Name, Text: b.Internal.Text},
		Snippets:     b.Snippets,
		LocalModules: b.LocalModules,
		Start:        b.Start,
		SourceHash:   b.SourceHash,
	}
	if w.Snippets == nil {
		w.Snippets = map[string][]string{}
	}
	if w.LocalModules == nil {
		w.LocalModules = map[string]string{}
	}
	if b.Entry != nil {
		w.JS = &wireText{Name: b.Entry.Name, Text: b.Entry.Text}
	}
	if b.Declaration != nil {
		w.TS = &wireText{Name: b.Declaration.Name, Text: b.Declaration.Text}
	}
	if b.layout.WrapWasmInNamedFile {
		w.Wasm = &wireBytes{Name: b.Wasm.Name, Bytes: b.Wasm.Bytes}
	} else {
		w.WasmBytes = b.Wasm.Bytes
	}
	return w
}

// MarshalJSON renders the bundle in its camelCase boundary form.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(b.wire())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindSerialization, err, "marshal bundle to JSON")
	}
	return data, nil
}

// MarshalCBOR renders the bundle in canonical CBOR with the same keys as
// MarshalJSON. Equal bundles encode to equal bytes.
func (b *Bundle) MarshalCBOR() ([]byte, error) {
	data, err := cborEncMode.Marshal(b.wire())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindSerialization, err, "marshal bundle to CBOR")
	}
	return data, nil
}
