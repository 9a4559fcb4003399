package wasm

import (
	"errors"
	"fmt"

	"github.com/wippyai/wasmbuild/wasm/internal/binary"
)

// Parsing errors returned by Parse.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// Parse decodes a WebAssembly binary into a Module.
// The module keeps its own copy of data; the caller may reuse the slice.
func Parse(data []byte) (*Module, error) {
	owned := make([]byte, len(data))
	copy(owned, data)
	r := binary.NewReader(owned)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{importSection: -1}
	var lastOrder int

	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("section header", err)
		}
		if id != SectionCustom {
			order := sectionOrder(id)
			if order == 0 {
				return nil, r.WrapError("section header", fmt.Errorf("unknown section ID: 0x%02x", id))
			}
			if order <= lastOrder {
				return nil, r.WrapError("section header", fmt.Errorf("%s section appears out of order", SectionName(id)))
			}
			lastOrder = order
		}

		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		switch id {
		case SectionImport:
			if err := m.parseImports(payload); err != nil {
				return nil, fmt.Errorf("import section: %w", err)
			}
			m.importSection = len(m.Sections)
		case SectionExport:
			if err := m.parseExports(payload); err != nil {
				return nil, fmt.Errorf("export section: %w", err)
			}
		case SectionCustom:
			if _, err := binary.NewReader(payload).ReadName(); err != nil {
				return nil, fmt.Errorf("custom section: %w", err)
			}
		}

		m.Sections = append(m.Sections, Section{ID: id, Data: payload})
	}

	return m, nil
}

func (m *Module) parseImports(payload []byte) error {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return r.WrapError("import count", err)
	}
	m.importCount = r.Slice(0, r.Position())
	m.Imports = make([]Import, 0, count)

	for i := uint32(0); i < count; i++ {
		start := r.Position()
		module, err := r.ReadName()
		if err != nil {
			return r.WrapError("import module", err)
		}
		name, err := r.ReadName()
		if err != nil {
			return r.WrapError("import name", err)
		}
		kind, err := r.ReadByte()
		if err != nil {
			return r.WrapError("import kind", err)
		}
		descStart := r.Position()
		if err := skipImportDesc(r, kind); err != nil {
			return r.WrapError(fmt.Sprintf("import %q.%q", module, name), err)
		}
		raw := r.Slice(start, r.Position())

		m.Imports = append(m.Imports, Import{
			Module:     module,
			Name:       name,
			Kind:       kind,
			Desc:       append([]byte(nil), r.Slice(descStart, r.Position())...),
			raw:        raw,
			origModule: module,
			origName:   name,
			descOffset: descStart - start,
		})
	}

	if r.Len() != 0 {
		return r.WrapError("import section", fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return nil
}

func (m *Module) parseExports(payload []byte) error {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return r.WrapError("export count", err)
	}
	m.Exports = make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return r.WrapError("export name", err)
		}
		kind, err := r.ReadByte()
		if err != nil {
			return r.WrapError("export kind", err)
		}
		idx, err := r.ReadU32()
		if err != nil {
			return r.WrapError("export index", err)
		}
		m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: idx})
	}
	return nil
}

// skipImportDesc advances r past the descriptor of an import of the given kind.
func skipImportDesc(r *binary.Reader, kind byte) error {
	switch kind {
	case KindFunc:
		_, err := r.ReadU32()
		return err
	case KindTable:
		return skipTableType(r)
	case KindMemory:
		return skipLimits(r)
	case KindGlobal:
		if err := skipValType(r); err != nil {
			return err
		}
		mut, err := r.ReadByte()
		if err != nil {
			return err
		}
		if mut > 1 {
			return fmt.Errorf("invalid global mutability 0x%02x", mut)
		}
		return nil
	case KindTag:
		if _, err := r.ReadByte(); err != nil {
			return err
		}
		_, err := r.ReadU32()
		return err
	default:
		return fmt.Errorf("unknown import kind: %d", kind)
	}
}

func skipTableType(r *binary.Reader) error {
	first, err := r.ReadByte()
	if err != nil {
		return err
	}
	if first == tableInitPrefix {
		zero, err := r.ReadByte()
		if err != nil {
			return err
		}
		if zero != 0x00 {
			return fmt.Errorf("expected 0x00 after 0x40, got 0x%02x", zero)
		}
		// Tables with an init expression cannot be imported.
		return errors.New("table import with init expression")
	}
	if first == refNull || first == ref {
		if err := r.SkipS64(); err != nil {
			return err
		}
	}
	return skipLimits(r)
}

func skipValType(r *binary.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b == refNull || b == ref {
		return r.SkipS64()
	}
	return nil
}

func skipLimits(r *binary.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if flags&^(LimitsHasMax|LimitsShared|LimitsMemory64|LimitsPageSize) != 0 {
		return fmt.Errorf("invalid limits flags 0x%02x", flags)
	}

	read := func() error {
		if flags&LimitsMemory64 != 0 {
			_, err := r.ReadU64()
			return err
		}
		_, err := r.ReadU32()
		return err
	}

	if err := read(); err != nil {
		return err
	}
	if flags&LimitsHasMax != 0 {
		if err := read(); err != nil {
			return err
		}
	}
	if flags&LimitsPageSize != 0 {
		if _, err := r.ReadU32(); err != nil {
			return err
		}
	}
	return nil
}
