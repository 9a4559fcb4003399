package bindgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	wberrors "github.com/wippyai/wasmbuild/errors"
	"github.com/wippyai/wasmbuild/internal/testwasm"
	"github.com/wippyai/wasmbuild/wasm"
)

func TestConfig_DefaultModuleRef(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{TargetBundler, "./foo_bg.js"},
		{TargetDeno, "wbg"},
		{TargetWeb, "wbg"},
	}
	for _, tt := range tests {
		cfg := Config{Target: tt.target, OutName: "foo"}
		if got := cfg.DefaultModuleRef(); got != tt.want {
			t.Errorf("%s: DefaultModuleRef = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig("foo").Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := []Config{
		{Target: "nodejs", OutName: "foo"},
		{Target: TargetBundler, OutName: ""},
		{Target: TargetBundler, OutName: "a/b"},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) succeeded", cfg)
		}
	}
}

type namedGenerator struct {
	Func
	ref string
}

func (g namedGenerator) DefaultModuleRef(Config) string { return g.ref }

func TestDefaultModuleRef_Override(t *testing.T) {
	cfg := DefaultConfig("foo")
	plain := Func(func(context.Context, Config, []byte) (*Artifacts, error) { return nil, nil })
	if got := DefaultModuleRef(plain, cfg); got != "./foo_bg.js" {
		t.Errorf("plain generator ref = %q", got)
	}
	named := namedGenerator{Func: plain, ref: "__wbindgen_placeholder__"}
	if got := DefaultModuleRef(named, cfg); got != "__wbindgen_placeholder__" {
		t.Errorf("named generator ref = %q", got)
	}
	if got := NewCounting(named).DefaultModuleRef(cfg); got != "__wbindgen_placeholder__" {
		t.Errorf("counting wrapper ref = %q", got)
	}
}

func fixedGenerator(t *testing.T) Func {
	return func(_ context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error) {
		m, err := wasm.Parse(wasmBytes)
		if err != nil {
			return nil, err
		}
		return &Artifacts{JS: "export function f() {}\n", Module: m}, nil
	}
}

func TestAdapter_Generate(t *testing.T) {
	data := testwasm.Build(testwasm.Spec{Exports: []string{"f"}})
	counting := NewCounting(fixedGenerator(t))
	a := NewAdapter(counting)

	art, err := a.Generate(context.Background(), DefaultConfig("foo"), data)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.JS == "" || art.Module == nil {
		t.Errorf("incomplete artifacts: %+v", art)
	}
	if counting.Calls() != 1 {
		t.Errorf("generator called %d times", counting.Calls())
	}
	if got := a.DefaultModuleRef(DefaultConfig("foo")); got != "./foo_bg.js" {
		t.Errorf("DefaultModuleRef = %q", got)
	}
}

func TestAdapter_GeneratorFailure(t *testing.T) {
	cause := errors.New("failed to parse input: unsupported feature 'exception-handling'")
	counting := NewCounting(Func(func(context.Context, Config, []byte) (*Artifacts, error) {
		return nil, cause
	}))
	a := NewAdapter(counting)

	_, err := a.Generate(context.Background(), DefaultConfig("foo"), []byte("whatever"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, wberrors.ErrGeneration) {
		t.Errorf("error %v is not a generation error", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not preserved")
	}
	if !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("message %q does not carry the generator message", err.Error())
	}
	if counting.Calls() != 1 {
		t.Errorf("generator called %d times, want exactly one attempt", counting.Calls())
	}
}

func TestAdapter_Errors(t *testing.T) {
	data := testwasm.Build(testwasm.Spec{Exports: []string{"f"}})
	ctx := context.Background()

	t.Run("no generator", func(t *testing.T) {
		_, err := (&Adapter{}).Generate(ctx, DefaultConfig("foo"), data)
		if !errors.Is(err, wberrors.ErrGeneration) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		counting := NewCounting(fixedGenerator(t))
		_, err := NewAdapter(counting).Generate(ctx, Config{Target: "nope", OutName: "foo"}, data)
		if err == nil {
			t.Fatal("expected error")
		}
		if counting.Calls() != 0 {
			t.Error("generator invoked with invalid config")
		}
	})

	t.Run("nil artifacts", func(t *testing.T) {
		a := NewAdapter(Func(func(context.Context, Config, []byte) (*Artifacts, error) { return nil, nil }))
		_, err := a.Generate(ctx, DefaultConfig("foo"), data)
		var e *wberrors.Error
		if !errors.As(err, &e) || e.Kind != wberrors.KindMissingArtifact {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("missing module", func(t *testing.T) {
		a := NewAdapter(Func(func(context.Context, Config, []byte) (*Artifacts, error) {
			return &Artifacts{JS: "x"}, nil
		}))
		_, err := a.Generate(ctx, DefaultConfig("foo"), data)
		if !errors.Is(err, wberrors.ErrGeneration) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		counting := NewCounting(fixedGenerator(t))
		a := &Adapter{Generator: counting, ValidateInput: true}
		_, err := a.Generate(ctx, DefaultConfig("foo"), []byte{0x00, 0x61, 0x73, 0x6d, 0x01})
		var e *wberrors.Error
		if !errors.As(err, &e) || e.Kind != wberrors.KindInvalidWasm {
			t.Errorf("error = %v", err)
		}
		if counting.Calls() != 0 {
			t.Error("generator invoked for malformed input")
		}
	})
}

func TestCompile(t *testing.T) {
	data := testwasm.Build(testwasm.Spec{
		Imports: []testwasm.Func{{Module: "./foo_bg.js", Name: "__wbg_log"}},
		Exports: []string{"greet", "__wbindgen_start"},
		Memory:  true,
	})
	info, err := Compile(context.Background(), data)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if diff := cmp.Diff([]ImportRef{{Module: "./foo_bg.js", Name: "__wbg_log"}}, info.Imports); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"__wbindgen_start", "greet"}, info.Exports); diff != "" {
		t.Errorf("exports mismatch (-want +got):\n%s", diff)
	}
}

func TestCLIGenerator_Args(t *testing.T) {
	g := &CLIGenerator{ExtraArgs: []string{"--keep-debug"}}
	cfg := Config{Target: TargetBundler, OutName: "foo", WeakRefs: true}
	got := g.Args(cfg, "/tmp/out")
	want := []string{
		"--target", "bundler",
		"--out-name", "foo",
		"--out-dir", "/tmp/out",
		"--no-typescript",
		"--weak-refs",
		"--keep-debug",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadOutputDir(t *testing.T) {
	dir := t.TempDir()
	data := testwasm.Build(testwasm.Spec{
		Imports: []testwasm.Func{{Module: "./foo_bg.js", Name: "__wbg_alert"}},
		Exports: []string{"greet", StartExport},
	})
	writeFile(t, filepath.Join(dir, "foo_bg.wasm"), string(data))
	writeFile(t, filepath.Join(dir, "foo_bg.js"), "let wasm;\nexport function __wbg_set_wasm(val) { wasm = val; }\n")
	writeFile(t, filepath.Join(dir, "foo.js"), "wrapper, ignored\n")
	writeFile(t, filepath.Join(dir, "foo.d.ts"), "export function greet(): void;\n")
	writeFile(t, filepath.Join(dir, "snippets", "foo-abc", "inline0.js"), "export function a() {}")
	writeFile(t, filepath.Join(dir, "snippets", "foo-abc", "inline1.js"), "export function b() {}")
	for i := 2; i <= 10; i++ {
		writeFile(t, filepath.Join(dir, "snippets", "foo-abc", fmt.Sprintf("inline%d.js", i)), fmt.Sprintf("export function f%d() {}", i))
	}
	writeFile(t, filepath.Join(dir, "snippets", "foo-abc", "src", "helpers.js"), "export const h = 1;")

	art, err := ReadOutputDir(dir, DefaultConfig("foo"))
	if err != nil {
		t.Fatalf("ReadOutputDir: %v", err)
	}

	if !strings.Contains(art.JS, "__wbg_set_wasm") {
		t.Errorf("JS is not the _bg module: %q", art.JS)
	}
	if art.TS == nil || *art.TS != "export function greet(): void;\n" {
		t.Errorf("TS = %v", art.TS)
	}
	if art.Start == nil || *art.Start != StartExport {
		t.Errorf("Start = %v", art.Start)
	}
	wantList := []string{"export function a() {}", "export function b() {}"}
	for i := 2; i <= 10; i++ {
		wantList = append(wantList, fmt.Sprintf("export function f%d() {}", i))
	}
	wantSnippets := map[string][]string{"foo-abc": wantList}
	if diff := cmp.Diff(wantSnippets, art.Snippets); diff != "" {
		t.Errorf("snippets mismatch (-want +got):\n%s", diff)
	}
	wantLocal := map[string]string{"foo-abc/src/helpers.js": "export const h = 1;"}
	if diff := cmp.Diff(wantLocal, art.LocalModules); diff != "" {
		t.Errorf("local modules mismatch (-want +got):\n%s", diff)
	}
	if got := art.Module.ImportModules(); len(got) != 1 || got[0] != "./foo_bg.js" {
		t.Errorf("import modules = %v", got)
	}
}

func TestReadOutputDir_NoSnippetsNoTS(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foo_bg.wasm"), string(testwasm.Build(testwasm.Spec{Exports: []string{"f"}})))
	writeFile(t, filepath.Join(dir, "foo_bg.js"), "export function f() {}\n")

	cfg := DefaultConfig("foo")
	cfg.TypeScript = false
	art, err := ReadOutputDir(dir, cfg)
	if err != nil {
		t.Fatalf("ReadOutputDir: %v", err)
	}
	if art.TS != nil || art.Start != nil {
		t.Errorf("unexpected optional artifacts: ts=%v start=%v", art.TS, art.Start)
	}
	if len(art.Snippets) != 0 || len(art.LocalModules) != 0 {
		t.Errorf("unexpected snippets: %v %v", art.Snippets, art.LocalModules)
	}
}

func TestReadOutputDir_Missing(t *testing.T) {
	if _, err := ReadOutputDir(t.TempDir(), DefaultConfig("foo")); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}

const fakeBindgen = `#!/bin/sh
out=""
name=""
while [ $# -gt 1 ]; do
  case "$1" in
    --out-dir) out="$2"; shift ;;
    --out-name) name="$2"; shift ;;
  esac
  shift
done
mkdir -p "$out"
cp "$1" "$out/${name}_bg.wasm"
printf 'export function greet() {}\n' > "$out/${name}_bg.js"
printf 'export function greet(): void;\n' > "$out/${name}.d.ts"
`

const failingBindgen = `#!/bin/sh
echo "error: failed getting Wasm module for input.wasm" >&2
exit 1
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "wasm-bindgen")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLIGenerator_Generate(t *testing.T) {
	g := &CLIGenerator{Command: writeScript(t, fakeBindgen), TempDir: t.TempDir()}
	data := testwasm.Build(testwasm.Spec{Exports: []string{"greet"}})

	art, err := g.Generate(context.Background(), DefaultConfig("foo"), data)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.JS != "export function greet() {}\n" {
		t.Errorf("JS = %q", art.JS)
	}
	if art.TS == nil {
		t.Error("missing TS")
	}
	if !art.Module.HasExport("greet") {
		t.Error("wasm module not read back")
	}
	entries, err := os.ReadDir(g.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch dir not removed: %v", entries)
	}
}

func TestCLIGenerator_Failure(t *testing.T) {
	g := &CLIGenerator{Command: writeScript(t, failingBindgen)}
	_, err := g.Generate(context.Background(), DefaultConfig("foo"), []byte("not wasm"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed getting Wasm module") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

const fakeWasmOpt = `#!/bin/sh
# wasm-opt <level> <in> -o <out>
[ "$1" = "-Oz" ] || { echo "unexpected level $1" >&2; exit 2; }
cp "$2" "$4"
`

func TestWasmOpt_Args(t *testing.T) {
	o := &WasmOpt{ExtraArgs: []string{"--enable-reference-types"}}
	want := []string{"-Oz", "in.wasm", "-o", "out.wasm", "--enable-reference-types"}
	if diff := cmp.Diff(want, o.Args("in.wasm", "out.wasm")); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	o.Level = "-O2"
	if got := o.Args("a", "b")[0]; got != "-O2" {
		t.Errorf("level = %q", got)
	}
}

func TestWasmOpt_Optimize(t *testing.T) {
	o := &WasmOpt{Command: writeScript(t, fakeWasmOpt), TempDir: t.TempDir()}
	data := testwasm.Build(testwasm.Spec{Exports: []string{"greet"}})

	got, err := o.Optimize(context.Background(), data)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if string(got) != string(data) {
		t.Error("optimized output not read back")
	}
	entries, err := os.ReadDir(o.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch dir not removed: %v", entries)
	}
}

func TestWasmOpt_Failure(t *testing.T) {
	o := &WasmOpt{Command: writeScript(t, fakeWasmOpt), Level: "-O9"}
	_, err := o.Optimize(context.Background(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "unexpected level -O9") {
		t.Errorf("error = %v, want stderr carried", err)
	}
}

func TestReadOutputDir_SnippetGap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "foo_bg.wasm"), string(testwasm.Build(testwasm.Spec{Exports: []string{"f"}})))
	writeFile(t, filepath.Join(dir, "foo_bg.js"), "export function f() {}\n")
	writeFile(t, filepath.Join(dir, "snippets", "foo-abc", "inline0.js"), "a")
	writeFile(t, filepath.Join(dir, "snippets", "foo-abc", "inline2.js"), "c")

	_, err := ReadOutputDir(dir, DefaultConfig("foo"))
	if err == nil {
		t.Fatal("expected error for non-contiguous snippets")
	}
	if !strings.Contains(err.Error(), "missing inline1.js") {
		t.Errorf("error = %v", err)
	}
}
