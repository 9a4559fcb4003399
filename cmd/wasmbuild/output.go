package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasmbuild/loader"
	"github.com/wippyai/wasmbuild/naming"
	"github.com/wippyai/wasmbuild/pack"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// printer writes status lines, styled only when the output is a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(f *os.File) *printer {
	return &printer{w: f, color: term.IsTerminal(int(f.Fd()))}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.render(titleStyle, text))
}

func (p *printer) file(path string, size int) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(fileStyle, path), p.render(helpStyle, fmt.Sprintf("(%d bytes)", size)))
}

func (p *printer) entry(kind, text string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(kindStyle, fmt.Sprintf("%-6s", kind)), text)
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(errorStyle, "Error: "+fmt.Sprintf(format, args...)))
}

// writeBundle writes b under dir. The snippets directory is replaced as a
// whole so stale snippets from earlier builds do not survive.
func writeBundle(dir string, b *pack.Bundle) ([]pack.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(dir, naming.SnippetsDir)); err != nil {
		return nil, fmt.Errorf("remove old snippets: %w", err)
	}

	files := b.Files()
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return files, nil
}

// checkBundle compares the source hash stamped in dir against b.
func checkBundle(dir string, b *pack.Bundle) error {
	path := filepath.Join(dir, b.HashFile())
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("output is out of date: %w", err)
	}
	found, ok := loader.ReadSourceHash(string(data))
	if !ok {
		return fmt.Errorf("output is out of date (no source hash in %s)", path)
	}
	if found != b.SourceHash {
		return fmt.Errorf("output is out of date (found hash %s, expected %s)", found, b.SourceHash)
	}
	return nil
}
