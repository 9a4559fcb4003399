package pack

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/errors"
	"github.com/wippyai/wasmbuild/loader"
	"github.com/wippyai/wasmbuild/naming"
)

// Assemble merges generator artifacts into a bundle named by scheme.
//
// The wasm module is serialized here, exactly once, so every import rewrite
// must already be applied. Snippets, local modules and the start name are
// copied unchanged; Verify checks the start name against the exports.
//
// The source hash is stamped into the entry module, or into the internal
// module's header when the entry module is disabled.
func Assemble(scheme naming.Scheme, art *bindgen.Artifacts, opts Options) (*Bundle, error) {
	if art == nil || art.Module == nil {
		return nil, errors.Assembly("no artifacts to assemble")
	}
	if art.TS != nil && opts.TypeScript && scheme.DeclExtension == "" {
		return nil, errors.New(errors.PhaseAssemble, errors.KindInvariant).
			Value(scheme.Extension).
			Detail("declaration present but no declaration extension for %q", scheme.Extension).
			Build()
	}

	b := &Bundle{
		Internal:     TextFile{Name: scheme.InternalFile, Text: art.JS},
		Snippets:     copySnippets(art.Snippets),
		LocalModules: maps.Clone(art.LocalModules),
		Wasm:         BytesFile{Name: scheme.WasmFile, Bytes: art.Module.Encode()},
		layout:       opts,
	}
	if b.LocalModules == nil {
		b.LocalModules = map[string]string{}
	}
	if art.Start != nil {
		start := *art.Start
		b.Start = &start
	}
	if art.TS != nil && opts.TypeScript {
		b.Declaration = &TextFile{Name: scheme.DeclarationFile, Text: *art.TS}
	}

	b.SourceHash = sourceHash(b)

	if opts.IncludeEntryModule {
		lopts := loader.Options{SourceHash: b.SourceHash}
		if b.Start != nil {
			lopts.Start = *b.Start
		}
		text, err := loader.Synthesize(scheme, lopts)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseAssemble, errors.KindInvariant, err, "render entry module")
		}
		b.Entry = &TextFile{Name: scheme.EntryFile, Text: text}
	} else {
		b.Internal.Text = loader.HeaderWithHash(b.SourceHash) + b.Internal.Text
	}

	Logger().Debug("assembled bundle",
		zap.String("name", scheme.Name),
		zap.Bool("entry", b.Entry != nil),
		zap.Bool("declaration", b.Declaration != nil),
		zap.Int("wasm_bytes", len(b.Wasm.Bytes)),
		zap.String("source_hash", b.SourceHash))

	return b, nil
}

func copySnippets(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for id, list := range in {
		out[id] = slices.Clone(list)
	}
	return out
}
