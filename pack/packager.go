package pack

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/errors"
	"github.com/wippyai/wasmbuild/naming"
	"github.com/wippyai/wasmbuild/wasm"
)

// Packager turns a wasm binary into a bundle using a binding generator.
// A Packager holds no per-call state and may be used concurrently.
type Packager struct {
	Generator bindgen.Generator
	Options   Options

	// Optimizer, when set, runs on the rewritten binary before assembly.
	Optimizer bindgen.Optimizer

	// Logger overrides the package logger for this packager.
	Logger *zap.Logger
}

// New creates a packager with DefaultOptions.
func New(g bindgen.Generator) *Packager {
	return &Packager{Generator: g, Options: DefaultOptions()}
}

// Config returns the generator configuration used for a module named name.
func (p *Packager) Config(name string) bindgen.Config {
	target := p.Options.Target
	if target == "" {
		target = bindgen.TargetBundler
	}
	return bindgen.Config{
		Target:         target,
		OutName:        name,
		TypeScript:     p.Options.TypeScript,
		WeakRefs:       p.Options.WeakRefs,
		ReferenceTypes: p.Options.ReferenceTypes,
	}
}

// Generate packages wasmBytes as module name with source extension ext.
//
// Names are resolved before anything else, so an unsupported extension
// fails without invoking the generator. Either a complete bundle or an
// error is returned, never both.
func (p *Packager) Generate(ctx context.Context, name, ext string, wasmBytes []byte) (*Bundle, error) {
	log := p.logger()

	scheme, err := naming.Resolve(name, ext)
	if err != nil {
		return nil, err
	}

	cfg := p.Config(name)
	if cfg.Target != bindgen.TargetBundler {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidConfig).
			Value(string(cfg.Target)).
			Detail("only the %s target can be packaged; other targets instantiate the wasm themselves", bindgen.TargetBundler).
			Build()
	}
	adapter := &bindgen.Adapter{Generator: p.Generator, ValidateInput: p.Options.ValidateInput}

	art, err := adapter.Generate(ctx, cfg, wasmBytes)
	if err != nil {
		log.Debug("generation failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	defaultRef := adapter.DefaultModuleRef(cfg)
	rewritten := RewriteImports(art.Module, defaultRef, scheme.InternalRef)

	if p.Optimizer != nil {
		if err := optimize(ctx, p.Optimizer, art); err != nil {
			return nil, err
		}
	}

	b, err := Assemble(scheme, art, p.Options)
	if err != nil {
		return nil, err
	}

	if p.Options.Verify {
		if err := Verify(ctx, b, defaultRef); err != nil {
			return nil, err
		}
	}

	log.Info("packaged module",
		zap.String("name", name),
		zap.String("ext", ext),
		zap.String("target", string(cfg.Target)),
		zap.Int("rewritten_imports", rewritten),
		zap.Int("snippet_packages", len(b.Snippets)),
		zap.Int("local_modules", len(b.LocalModules)))

	return b, nil
}

// optimize replaces the artifact module with the optimizer's output.
// The module is encoded here only to feed the optimizer; the bundle's
// binary is still encoded once, by Assemble.
func optimize(ctx context.Context, o bindgen.Optimizer, art *bindgen.Artifacts) error {
	in := art.Module.Encode()
	out, err := o.Optimize(ctx, in)
	if err != nil {
		return errors.New(errors.PhaseOptimize, errors.KindOptimizerFailed).Cause(err).Build()
	}
	m, err := wasm.Parse(out)
	if err != nil {
		return errors.New(errors.PhaseOptimize, errors.KindInvalidWasm).
			Detail("optimizer produced an invalid module").Cause(err).Build()
	}
	Logger().Debug("optimized wasm", zap.Int("before", len(in)), zap.Int("after", len(out)))
	art.Module = m
	return nil
}

func (p *Packager) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return Logger()
}

// Generate packages wasmBytes with g and DefaultOptions.
func Generate(ctx context.Context, g bindgen.Generator, name, ext string, wasmBytes []byte) (*Bundle, error) {
	return New(g).Generate(ctx, name, ext, wasmBytes)
}
