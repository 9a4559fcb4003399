package pack

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/errors"
	"github.com/wippyai/wasmbuild/wasm"
)

// Verify checks the bundle's final binary: it must compile, no import may
// still reference defaultRef, and the start export must exist.
func Verify(ctx context.Context, b *Bundle, defaultRef string) error {
	info, err := bindgen.Compile(ctx, b.Wasm.Bytes)
	if err != nil {
		return errVerify(errors.KindInvalidWasm, b).Cause(err).Build()
	}

	m, err := wasm.Parse(b.Wasm.Bytes)
	if err != nil {
		return errVerify(errors.KindInvalidWasm, b).Cause(err).Build()
	}

	internalRef := "./" + b.Internal.Name
	if defaultRef != internalRef && slices.Contains(m.ImportModules(), defaultRef) {
		return errVerify(errors.KindUnresolvedImport, b).
			Value(defaultRef).
			Detail("imports still reference the generator's internal module").
			Build()
	}

	if b.Start != nil && !slices.Contains(info.Exports, *b.Start) {
		return errVerify(errors.KindInvariant, b).
			Value(*b.Start).
			Detail("start function is not exported").
			Build()
	}

	Logger().Debug("verified bundle",
		zap.String("wasm", b.Wasm.Name),
		zap.Int("function_imports", len(info.Imports)),
		zap.Strings("exports", info.Exports))
	return nil
}

// errVerify builds a verification failure for the bundle's wasm file.
func errVerify(kind errors.Kind, b *Bundle) *errors.Builder {
	return errors.New(errors.PhaseVerify, kind).File(b.Wasm.Name)
}
