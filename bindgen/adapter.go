package bindgen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/errors"
)

// Adapter invokes a Generator on behalf of the packaging pipeline and
// normalizes its failures into generation errors.
type Adapter struct {
	Generator Generator

	// ValidateInput compiles the input with wazero before invoking the
	// generator, so malformed binaries fail without spawning it.
	ValidateInput bool
}

// NewAdapter creates an adapter around g.
func NewAdapter(g Generator) *Adapter {
	return &Adapter{Generator: g}
}

// DefaultModuleRef returns the generator's internal-module reference for cfg.
func (a *Adapter) DefaultModuleRef(cfg Config) string {
	return DefaultModuleRef(a.Generator, cfg)
}

// Generate runs the generator once. Any failure is returned as a generation
// error carrying the underlying message; nothing is retried.
func (a *Adapter) Generate(ctx context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error) {
	if a.Generator == nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidConfig).
			Detail("no generator configured").Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidConfig, err, "invalid generator config")
	}

	if a.ValidateInput {
		if _, err := Compile(ctx, wasmBytes); err != nil {
			return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidWasm).
				Detail("input is not a valid wasm module").Cause(err).Build()
		}
	}

	Logger().Debug("running binding generator",
		zap.String("target", string(cfg.Target)),
		zap.String("out_name", cfg.OutName),
		zap.Bool("typescript", cfg.TypeScript),
		zap.Int("wasm_bytes", len(wasmBytes)))

	art, err := a.Generator.Generate(ctx, cfg, wasmBytes)
	if err != nil {
		return nil, errors.Generation(err)
	}
	if err := checkArtifacts(art); err != nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindMissingArtifact).Cause(err).Build()
	}

	Logger().Debug("binding generator finished",
		zap.Int("js_bytes", len(art.JS)),
		zap.Bool("has_ts", art.TS != nil),
		zap.Int("snippet_packages", len(art.Snippets)),
		zap.Int("local_modules", len(art.LocalModules)),
		zap.Int("imports", len(art.Module.Imports)))

	return art, nil
}

func checkArtifacts(art *Artifacts) error {
	if art == nil {
		return fmt.Errorf("generator returned no artifacts")
	}
	if art.Module == nil {
		return fmt.Errorf("generator returned no wasm module")
	}
	return nil
}
