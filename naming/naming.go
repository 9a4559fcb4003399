// Package naming derives every output file name and module reference of a
// bundle from a module name and a source extension.
package naming

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wippyai/wasmbuild/errors"
)

// declarationExtensions maps a source extension to the extension of its
// TypeScript declaration file.
var declarationExtensions = map[string]string{
	"js":  "ts",
	"mjs": "mts",
}

// SnippetsDir is the directory, relative to the bundle root, holding inline
// snippets and local modules.
const SnippetsDir = "snippets"

// Scheme holds the derived names for one bundle.
type Scheme struct {
	Name          string
	Extension     string
	DeclExtension string

	EntryFile       string // {name}.{ext}
	InternalFile    string // {name}.internal.{ext}
	WasmFile        string // {name}.wasm
	DeclarationFile string // {name}.d.{declExt}

	InternalRef string // ./{name}.internal.{ext}
	WasmRef     string // ./{name}.wasm
}

// Resolve validates name and ext and derives the naming scheme.
func Resolve(name, ext string) (Scheme, error) {
	if err := ValidateName(name); err != nil {
		return Scheme{}, err
	}
	declExt, err := DeclarationExtension(ext)
	if err != nil {
		return Scheme{}, err
	}

	s := Scheme{
		Name:            name,
		Extension:       ext,
		DeclExtension:   declExt,
		EntryFile:       name + "." + ext,
		InternalFile:    name + ".internal." + ext,
		WasmFile:        name + ".wasm",
		DeclarationFile: name + ".d." + declExt,
	}
	s.InternalRef = Relative(s.InternalFile)
	s.WasmRef = Relative(s.WasmFile)
	return s, nil
}

// DeclarationExtension returns the declaration extension for a source
// extension, or a naming error when ext is not supported.
func DeclarationExtension(ext string) (string, error) {
	declExt, ok := declarationExtensions[ext]
	if !ok {
		return "", errors.Naming(errors.KindUnsupportedExtension, ext,
			"supported extensions are "+strings.Join(SupportedExtensions(), ", "))
	}
	return declExt, nil
}

// SupportedExtensions returns the recognized source extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(declarationExtensions))
	for ext := range declarationExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ValidateName checks that name can be used as a file stem and inside a
// quoted import specifier.
func ValidateName(name string) error {
	if name == "" {
		return errors.Naming(errors.KindInvalidName, name, "module name is empty")
	}
	if name == "." || name == ".." {
		return errors.Naming(errors.KindInvalidName, name, "module name is a relative path")
	}
	if !utf8.ValidString(name) {
		return errors.Naming(errors.KindInvalidName, name, "module name is not valid UTF-8")
	}
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			return errors.Naming(errors.KindInvalidName, name, "module name contains a path separator")
		case r == '"' || r == '\'' || r == '`':
			return errors.Naming(errors.KindInvalidName, name, "module name contains a quote")
		case unicode.IsSpace(r) || !unicode.IsPrint(r):
			return errors.Naming(errors.KindInvalidName, name,
				fmt.Sprintf("module name contains character %U", r))
		}
	}
	return nil
}

// Relative turns a bundle file name into a relative module specifier.
func Relative(file string) string {
	return "./" + file
}

// SnippetPath returns the bundle path of the index-th inline snippet of a
// snippet package.
func SnippetPath(identifier string, index int) string {
	return path.Join(SnippetsDir, identifier, fmt.Sprintf("inline%d.js", index))
}

// LocalModulePath returns the bundle path of a local module.
func LocalModulePath(modulePath string) string {
	return path.Join(SnippetsDir, modulePath)
}
