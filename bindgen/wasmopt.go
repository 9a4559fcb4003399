package bindgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultWasmOptCommand is the binaryen optimizer looked up on PATH.
const DefaultWasmOptCommand = "wasm-opt"

// DefaultWasmOptLevel optimizes for size.
const DefaultWasmOptLevel = "-Oz"

// Optimizer rewrites a wasm binary into an equivalent, smaller one.
// Import and export names must be preserved.
type Optimizer interface {
	Optimize(ctx context.Context, wasmBytes []byte) ([]byte, error)
}

// OptimizerFunc adapts a function to the Optimizer interface.
type OptimizerFunc func(ctx context.Context, wasmBytes []byte) ([]byte, error)

// Optimize calls f.
func (f OptimizerFunc) Optimize(ctx context.Context, wasmBytes []byte) ([]byte, error) {
	return f(ctx, wasmBytes)
}

// WasmOpt runs binaryen's wasm-opt in a scratch directory.
type WasmOpt struct {
	// Command is the executable to run; DefaultWasmOptCommand when empty.
	Command string

	// Level is the optimization flag; DefaultWasmOptLevel when empty.
	Level string

	// TempDir is the parent of scratch directories; os.TempDir when empty.
	TempDir string

	// ExtraArgs are appended after the output path, e.g. feature flags.
	ExtraArgs []string
}

// Args returns the command line optimizing in into out.
func (o *WasmOpt) Args(in, out string) []string {
	level := o.Level
	if level == "" {
		level = DefaultWasmOptLevel
	}
	args := []string{level, in, "-o", out}
	return append(args, o.ExtraArgs...)
}

// Optimize implements Optimizer.
func (o *WasmOpt) Optimize(ctx context.Context, wasmBytes []byte) ([]byte, error) {
	dir, err := os.MkdirTemp(o.TempDir, "wasmbuild-opt-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.wasm")
	out := filepath.Join(dir, "out.wasm")
	if err := os.WriteFile(in, wasmBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	command := o.Command
	if command == "" {
		command = DefaultWasmOptCommand
	}
	args := o.Args(in, out)

	Logger().Debug("exec", zap.String("command", command), zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w", msg, err)
		}
		return nil, fmt.Errorf("run %s: %w", command, err)
	}

	optimized, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read optimized wasm: %w", err)
	}
	return optimized, nil
}
