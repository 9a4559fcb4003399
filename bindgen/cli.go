package bindgen

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasmbuild/naming"
	"github.com/wippyai/wasmbuild/wasm"
)

// DefaultCommand is the wasm-bindgen executable looked up on PATH.
const DefaultCommand = "wasm-bindgen"

var inlineSnippet = regexp.MustCompile(`^inline(\d+)\.js$`)

// CLIGenerator runs the wasm-bindgen command line tool in a scratch
// directory and collects what it writes.
type CLIGenerator struct {
	// Command is the executable to run; DefaultCommand when empty.
	Command string

	// TempDir is the parent of scratch directories; os.TempDir when empty.
	TempDir string

	// ExtraArgs are appended before the input path.
	ExtraArgs []string
}

// Args returns the command line arguments for cfg, excluding the input path.
func (g *CLIGenerator) Args(cfg Config, outDir string) []string {
	args := []string{
		"--target", string(cfg.Target),
		"--out-name", cfg.OutName,
		"--out-dir", outDir,
	}
	if !cfg.TypeScript {
		args = append(args, "--no-typescript")
	}
	if cfg.WeakRefs {
		args = append(args, "--weak-refs")
	}
	if cfg.ReferenceTypes {
		args = append(args, "--reference-types")
	}
	return append(args, g.ExtraArgs...)
}

// Generate implements Generator.
func (g *CLIGenerator) Generate(ctx context.Context, cfg Config, wasmBytes []byte) (*Artifacts, error) {
	dir, err := os.MkdirTemp(g.TempDir, "wasmbuild-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.wasm")
	if err := os.WriteFile(input, wasmBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}
	outDir := filepath.Join(dir, "out")

	command := g.Command
	if command == "" {
		command = DefaultCommand
	}
	args := append(g.Args(cfg, outDir), input)

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

	return ReadOutputDir(outDir, cfg)
}

// ReadOutputDir collects the files wasm-bindgen wrote to dir for cfg.
func ReadOutputDir(dir string, cfg Config) (*Artifacts, error) {
	jsFile := cfg.OutName + ".js"
	if cfg.Target == TargetBundler {
		jsFile = cfg.OutName + "_bg.js"
	}
	js, err := os.ReadFile(filepath.Join(dir, jsFile))
	if err != nil {
		return nil, fmt.Errorf("read internal module: %w", err)
	}

	wasmBytes, err := os.ReadFile(filepath.Join(dir, cfg.OutName+"_bg.wasm"))
	if err != nil {
		return nil, fmt.Errorf("read wasm: %w", err)
	}
	m, err := wasm.Parse(wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("parse generated wasm: %w", err)
	}

	art := &Artifacts{
		JS:           string(js),
		Module:       m,
		Snippets:     map[string][]string{},
		LocalModules: map[string]string{},
	}

	if cfg.TypeScript {
		ts, err := os.ReadFile(filepath.Join(dir, cfg.OutName+".d.ts"))
		switch {
		case err == nil:
			text := string(ts)
			art.TS = &text
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read declarations: %w", err)
		}
	}

	if m.HasExport(StartExport) {
		start := StartExport
		art.Start = &start
	}

	if err := readSnippets(filepath.Join(dir, naming.SnippetsDir), art); err != nil {
		return nil, fmt.Errorf("read snippets: %w", err)
	}
	return art, nil
}

// readSnippets walks the snippets tree. Files named inlineN.js directly
// under a package directory are inline snippets; everything else is a
// local module keyed by its slash-separated path. wasm-bindgen writes
// inline snippets to exactly those paths, so a local module cannot share
// one.
func readSnippets(root string, art *Artifacts) error {
	inline := map[string]map[int]string{}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		text, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		if pkg, file, ok := strings.Cut(rel, "/"); ok {
			if match := inlineSnippet.FindStringSubmatch(file); match != nil {
				idx, err := strconv.Atoi(match[1])
				if err != nil {
					return err
				}
				if inline[pkg] == nil {
					inline[pkg] = map[int]string{}
				}
				inline[pkg][idx] = string(text)
				return nil
			}
		}
		art.LocalModules[rel] = string(text)
		return nil
	})
	if err != nil {
		return err
	}

	for pkg, byIdx := range inline {
		idxs := make([]int, 0, len(byIdx))
		for i := range byIdx {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		list := make([]string, 0, len(idxs))
		for n, i := range idxs {
			// Bundles rewrite snippets by position, so indexes must be dense.
			if i != n {
				return fmt.Errorf("snippet package %s: missing inline%d.js", pkg, n)
			}
			list = append(list, byIdx[i])
		}
		art.Snippets[pkg] = list
	}
	return nil
}
