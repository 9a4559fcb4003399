// Package testwasm builds small, valid WebAssembly binaries for tests.
package testwasm

import "github.com/wippyai/wasmbuild/wasm"

// Func describes an imported function of type () -> ().
type Func struct {
	Module string
	Name   string
}

// Spec describes the module to build.
type Spec struct {
	// Imports are function imports, emitted in order.
	Imports []Func
	// Exports are local functions of type () -> (), exported by name.
	Exports []string
	// Memory adds an exported linear memory named "memory".
	Memory bool
	// Custom appends a custom section with this name.
	Custom string
}

// Build encodes s as a WebAssembly binary.
func Build(s Spec) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// type 0: () -> ()
	out = section(out, wasm.SectionType, []byte{0x01, 0x60, 0x00, 0x00})

	if len(s.Imports) > 0 {
		body := wasm.EncodeULEB128(uint32(len(s.Imports)))
		for _, imp := range s.Imports {
			body = appendName(body, imp.Module)
			body = appendName(body, imp.Name)
			body = append(body, wasm.KindFunc, 0x00)
		}
		out = section(out, wasm.SectionImport, body)
	}

	if len(s.Exports) > 0 {
		body := wasm.EncodeULEB128(uint32(len(s.Exports)))
		for range s.Exports {
			body = append(body, 0x00)
		}
		out = section(out, wasm.SectionFunction, body)
	}

	if s.Memory {
		out = section(out, wasm.SectionMemory, []byte{0x01, 0x00, 0x01})
	}

	exportCount := len(s.Exports)
	if s.Memory {
		exportCount++
	}
	if exportCount > 0 {
		body := wasm.EncodeULEB128(uint32(exportCount))
		base := uint32(len(s.Imports))
		for i, name := range s.Exports {
			body = appendName(body, name)
			body = append(body, wasm.KindFunc)
			body = append(body, wasm.EncodeULEB128(base+uint32(i))...)
		}
		if s.Memory {
			body = appendName(body, "memory")
			body = append(body, wasm.KindMemory, 0x00)
		}
		out = section(out, wasm.SectionExport, body)
	}

	if len(s.Exports) > 0 {
		body := wasm.EncodeULEB128(uint32(len(s.Exports)))
		for range s.Exports {
			// size 2: no locals, end
			body = append(body, 0x02, 0x00, 0x0b)
		}
		out = section(out, wasm.SectionCode, body)
	}

	if s.Custom != "" {
		out = section(out, wasm.SectionCustom, appendName(nil, s.Custom))
	}

	return out
}

func section(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = append(out, wasm.EncodeULEB128(uint32(len(body)))...)
	return append(out, body...)
}

func appendName(out []byte, name string) []byte {
	out = append(out, wasm.EncodeULEB128(uint32(len(name)))...)
	return append(out, name...)
}
