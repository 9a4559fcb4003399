package wasm

import (
	"github.com/wippyai/wasmbuild/wasm/internal/binary"
)

// Encode serializes the module back to the WebAssembly binary format.
//
// Sections are written in their original order. The import section is
// re-encoded only when at least one entry changed, and unchanged entries
// are copied from their original encoding.
func (m *Module) Encode() []byte {
	size := 8
	for _, s := range m.Sections {
		size += len(s.Data) + 6
	}
	w := binary.NewWriter(size)
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	importsWritten := m.importSection >= 0
	for i, s := range m.Sections {
		if !importsWritten && len(m.Imports) > 0 && s.ID != SectionCustom && sectionOrder(s.ID) > sectionOrder(SectionImport) {
			w.Section(SectionImport, m.encodeImports())
			importsWritten = true
		}
		if i == m.importSection && m.importsChanged() {
			w.Section(SectionImport, m.encodeImports())
			continue
		}
		w.Section(s.ID, s.Data)
	}
	if !importsWritten && len(m.Imports) > 0 {
		w.Section(SectionImport, m.encodeImports())
	}

	return w.Bytes()
}

// importsChanged reports whether the decoded imports differ from the
// import section payload they were read from.
func (m *Module) importsChanged() bool {
	if m.importSection < 0 {
		return len(m.Imports) > 0
	}
	if len(m.Imports) != countImports(m.importCount) {
		return true
	}
	for i := range m.Imports {
		if !m.Imports[i].unchanged() {
			return true
		}
	}
	return false
}

func (m *Module) encodeImports() []byte {
	w := binary.NewWriter(64 * len(m.Imports))
	if len(m.Imports) == countImports(m.importCount) && m.importCount != nil {
		w.WriteBytes(m.importCount)
	} else {
		w.WriteU32(uint32(len(m.Imports)))
	}
	for i := range m.Imports {
		imp := &m.Imports[i]
		if imp.unchanged() {
			w.WriteBytes(imp.raw)
			continue
		}
		w.WriteName(imp.Module)
		w.WriteName(imp.Name)
		w.Byte(imp.Kind)
		w.WriteBytes(imp.Desc)
	}
	return w.Bytes()
}

func countImports(raw []byte) int {
	if raw == nil {
		return -1
	}
	n, _ := DecodeULEB128(raw)
	return int(n)
}
