package wasm

import (
	"bytes"
)

// Module is a mutable, section-ordered view of a WebAssembly binary.
//
// Only the import and export sections are decoded. Every other section is
// carried as opaque bytes and written back unchanged by Encode.
type Module struct {
	// Sections in the order they appeared in the binary.
	Sections []Section

	// Imports decoded from the import section, in binary order.
	Imports []Import

	// Exports decoded from the export section, in binary order.
	Exports []Export

	importSection int // index into Sections, -1 when absent
	importCount   []byte
}

// Section is a single top-level section with its raw payload.
type Section struct {
	Data []byte
	ID   byte
}

// Name returns the name of a custom section, or the canonical section name
// for every other ID.
func (s Section) Name() string {
	if s.ID != SectionCustom {
		return SectionName(s.ID)
	}
	n, size := DecodeULEB128(s.Data)
	if size == 0 || size+int(n) > len(s.Data) {
		return ""
	}
	return string(s.Data[size : size+int(n)])
}

// Import is one entry of the import section.
//
// Desc holds the raw descriptor bytes following the kind byte (type index,
// table type, memory type, global type or tag type).
type Import struct {
	Module string
	Name   string
	Desc   []byte
	Kind   byte

	raw        []byte
	origModule string
	origName   string
	descOffset int
}

// unchanged reports whether the entry still matches its decoded encoding.
func (imp *Import) unchanged() bool {
	if imp.raw == nil {
		return false
	}
	return imp.Module == imp.origModule &&
		imp.Name == imp.origName &&
		imp.Kind == imp.raw[imp.descOffset-1] &&
		bytes.Equal(imp.Desc, imp.raw[imp.descOffset:])
}

// Export describes an exported item.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// HasImportSection reports whether the module carries an import section.
func (m *Module) HasImportSection() bool {
	return m.importSection >= 0
}

// RenameImportModule replaces the module specifier of every import whose
// module equals from. Field names, kinds, descriptors and entry order are
// preserved. It returns the number of entries rewritten.
func (m *Module) RenameImportModule(from, to string) int {
	if from == to {
		return 0
	}
	n := 0
	for i := range m.Imports {
		if m.Imports[i].Module == from {
			m.Imports[i].Module = to
			n++
		}
	}
	return n
}

// ImportModules returns the distinct import module specifiers in first-use order.
func (m *Module) ImportModules() []string {
	seen := make(map[string]struct{}, len(m.Imports))
	var out []string
	for _, imp := range m.Imports {
		if _, ok := seen[imp.Module]; ok {
			continue
		}
		seen[imp.Module] = struct{}{}
		out = append(out, imp.Module)
	}
	return out
}

// HasExport reports whether an export with the given name exists.
func (m *Module) HasExport(name string) bool {
	for _, exp := range m.Exports {
		if exp.Name == name {
			return true
		}
	}
	return false
}

// ExportNames returns export names in binary order.
func (m *Module) ExportNames() []string {
	names := make([]string, len(m.Exports))
	for i, exp := range m.Exports {
		names[i] = exp.Name
	}
	return names
}
