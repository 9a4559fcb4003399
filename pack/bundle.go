package pack

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/wippyai/wasmbuild/naming"
)

// TextFile is a named text artifact.
type TextFile struct {
	Name string
	Text string
}

// BytesFile is a named binary artifact.
type BytesFile struct {
	Name  string
	Bytes []byte
}

// Bundle is the result of one packaging call. Every cross reference between
// its files (import specifiers, file stems) is consistent.
type Bundle struct {
	// Entry is the synthesized loader module, nil when disabled.
	Entry *TextFile

	// Internal is the generator's internal module.
	Internal TextFile

	// Declaration is the TypeScript declaration file, nil when absent.
	Declaration *TextFile

	// Snippets maps a snippet package identifier to its inline snippets.
	Snippets map[string][]string

	// LocalModules maps a local module path to its text.
	LocalModules map[string]string

	// Start names the exported start function, nil when absent.
	Start *string

	// Wasm is the final binary.
	Wasm BytesFile

	// SourceHash is a hex SHA-256 over the generator output: internal
	// module, declarations, snippets, local modules and the final binary.
	// It is stamped into HashFile.
	SourceHash string

	layout Options
}

// File is one entry of a bundle's on-disk layout.
type File struct {
	Path string
	Data []byte
}

// Files returns the bundle laid out as relative paths, in a stable order:
// entry, internal module, declaration, wasm, inline snippets, local modules.
// Empty snippet packages produce no files.
func (b *Bundle) Files() []File {
	var files []File
	if b.Entry != nil {
		files = append(files, File{Path: b.Entry.Name, Data: []byte(b.Entry.Text)})
	}
	files = append(files, File{Path: b.Internal.Name, Data: []byte(b.Internal.Text)})
	if b.Declaration != nil {
		files = append(files, File{Path: b.Declaration.Name, Data: []byte(b.Declaration.Text)})
	}
	files = append(files, File{Path: b.Wasm.Name, Data: b.Wasm.Bytes})

	for _, id := range sortedKeys(b.Snippets) {
		for i, text := range b.Snippets[id] {
			files = append(files, File{Path: naming.SnippetPath(id, i), Data: []byte(text)})
		}
	}
	for _, p := range sortedKeys(b.LocalModules) {
		files = append(files, File{Path: naming.LocalModulePath(p), Data: []byte(b.LocalModules[p])})
	}
	return files
}

// HasSnippets reports whether the bundle needs a snippets directory.
func (b *Bundle) HasSnippets() bool {
	if len(b.LocalModules) > 0 {
		return true
	}
	for _, list := range b.Snippets {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

// HashFile names the file carrying the source hash stamp.
func (b *Bundle) HashFile() string {
	if b.Entry != nil {
		return b.Entry.Name
	}
	return b.Internal.Name
}

// sourceHash digests the generator output in a fixed order with line
// endings normalized, so the same output hashes identically on every host.
// It must run before any header is stamped.
func sourceHash(b *Bundle) string {
	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}

	write("internal", normalizeNewlines(b.Internal.Text))
	if b.Declaration != nil {
		write("declaration", normalizeNewlines(b.Declaration.Text))
	}
	for _, id := range sortedKeys(b.Snippets) {
		write("snippet", id)
		for _, text := range b.Snippets[id] {
			write(normalizeNewlines(text))
		}
	}
	for _, p := range sortedKeys(b.LocalModules) {
		write("local", p, normalizeNewlines(b.LocalModules[p]))
	}
	if b.Start != nil {
		write("start", *b.Start)
	}
	h.Write(b.Wasm.Bytes)
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
