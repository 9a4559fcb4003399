package bindgen

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// ImportRef is a (module, name) pair of an imported function.
type ImportRef struct {
	Module string
	Name   string
}

// CompileInfo summarizes a binary that compiled successfully.
type CompileInfo struct {
	Imports []ImportRef
	Exports []string
}

// Compile checks that wasmBytes is a well-formed module by compiling it with
// wazero, and reports its function imports and exports. Compilation does not
// resolve imports, so modules that import generator glue compile fine.
func Compile(ctx context.Context, wasmBytes []byte) (*CompileInfo, error) {
	cfg := wazero.NewRuntimeConfigInterpreter().
		WithCoreFeatures(api.CoreFeaturesV2)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	defer compiled.Close(ctx)

	info := &CompileInfo{}
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		info.Imports = append(info.Imports, ImportRef{Module: module, Name: name})
	}
	for name := range compiled.ExportedFunctions() {
		info.Exports = append(info.Exports, name)
	}
	sort.Strings(info.Exports)
	return info, nil
}
