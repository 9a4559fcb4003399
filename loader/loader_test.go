package loader

import (
	"strings"
	"testing"

	"github.com/wippyai/wasmbuild/naming"
)

func mustScheme(t *testing.T, name, ext string) naming.Scheme {
	t.Helper()
	s, err := naming.Resolve(name, ext)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return s
}

func TestSynthesize(t *testing.T) {
	got, err := Synthesize(mustScheme(t, "foo", "js"), Options{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := Header + `import * as wasm from "./foo.wasm";
export * from "./foo.internal.js";
import { __wbg_set_wasm } from "./foo.internal.js";
__wbg_set_wasm(wasm);
`
	if got != want {
		t.Errorf("entry module mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSynthesize_OmitHeaderMJS(t *testing.T) {
	got, err := Synthesize(mustScheme(t, "lib", "mjs"), Options{OmitHeader: true})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := `import * as wasm from "./lib.wasm";
export * from "./lib.internal.mjs";
import { __wbg_set_wasm } from "./lib.internal.mjs";
__wbg_set_wasm(wasm);
`
	if got != want {
		t.Errorf("entry module mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestSynthesize_Start(t *testing.T) {
	tests := []struct {
		start string
		want  string
	}{
		{"__wbindgen_start", "wasm.__wbindgen_start();\n"},
		{"$main", "wasm.$main();\n"},
		{"start-fn", `wasm["start-fn"]();` + "\n"},
		{"1start", `wasm["1start"]();` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := Synthesize(mustScheme(t, "foo", "js"), Options{Start: tt.start, OmitHeader: true})
			if err != nil {
				t.Fatalf("Synthesize: %v", err)
			}
			if !strings.HasSuffix(got, "__wbg_set_wasm(wasm);\n"+tt.want) {
				t.Errorf("start call must follow the injection:\n%s", got)
			}
		})
	}
}

func TestSynthesize_SingleInjection(t *testing.T) {
	got, err := Synthesize(mustScheme(t, "foo", "js"), Options{Start: "__wbindgen_start"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if n := strings.Count(got, SetWasmFunc+"(wasm);"); n != 1 {
		t.Errorf("injection call appears %d times", n)
	}
	inject := strings.Index(got, SetWasmFunc+"(wasm);")
	start := strings.Index(got, "wasm.__wbindgen_start()")
	if start < inject {
		t.Error("start export runs before injection")
	}
}

func TestSynthesize_NonASCIIName(t *testing.T) {
	for _, name := range []string{"ünïcode", "日本", "lib\U0001F600"} {
		scheme := mustScheme(t, name, "js")
		got, err := Synthesize(scheme, Options{OmitHeader: true})
		if err != nil {
			t.Fatalf("Synthesize(%q): %v", name, err)
		}
		want := `export * from "./` + scheme.InternalFile + `";`
		if !strings.Contains(got, want) {
			t.Errorf("%q: specifier does not match file name %q:\n%s", name, scheme.InternalFile, got)
		}
		if strings.Contains(got, `\`) {
			t.Errorf("%q: escaped specifier:\n%s", name, got)
		}
	}
}

func TestSynthesize_SourceHash(t *testing.T) {
	hash := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	got, err := Synthesize(mustScheme(t, "foo", "js"), Options{SourceHash: hash})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasPrefix(got, Header+"// source-hash: "+hash+"\nimport * as wasm") {
		t.Errorf("hash not stamped below header:\n%s", got)
	}
	if found, ok := ReadSourceHash(got); !ok || found != hash {
		t.Errorf("ReadSourceHash = %q, %v", found, ok)
	}

	omitted, err := Synthesize(mustScheme(t, "foo", "js"), Options{SourceHash: hash, OmitHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(omitted, "source-hash") {
		t.Error("hash stamped without header")
	}
}

func TestReadSourceHash(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{HeaderWithHash("abc123") + "export {};\n", "abc123", true},
		{"// source-hash: 00ff\r\n", "00ff", true},
		{"// source-hash: 00ff", "00ff", true},
		{Header + "export {};\n", "", false},
		{"const s = '// source-hash: 00ff';\n", "", false},
	}
	for _, tt := range tests {
		got, ok := ReadSourceHash(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ReadSourceHash(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}
