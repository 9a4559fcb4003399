package pack

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/wasm"
)

// RewriteImports points every import served by the generator's internal
// module at the bundle's internal module. Entries that reference any other
// module keep their exact encoding, and entry order never changes.
//
// A module without an import section is left alone. Running it again with
// the same arguments is a no-op since nothing references defaultRef anymore.
func RewriteImports(m *wasm.Module, defaultRef, internalRef string) int {
	if m == nil || !m.HasImportSection() {
		return 0
	}
	n := m.RenameImportModule(defaultRef, internalRef)
	if n > 0 {
		Logger().Debug("rewrote wasm imports",
			zap.String("from", defaultRef),
			zap.String("to", internalRef),
			zap.Int("entries", n))
	}
	return n
}
