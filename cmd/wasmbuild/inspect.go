package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasmbuild/bindgen"
	"github.com/wippyai/wasmbuild/wasm"
)

var inspectCompile bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.wasm>",
	Short: "List the sections, imports and exports of a wasm binary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		m, err := wasm.Parse(data)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		pr := newPrinter(os.Stdout)
		pr.w = cmd.OutOrStdout()
		inspectModule(pr, args[0], m)

		if inspectCompile {
			info, err := bindgen.Compile(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("compile: %w", err)
			}
			fmt.Fprintf(pr.w, "\nCompiled: %d function imports, %d function exports\n",
				len(info.Imports), len(info.Exports))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectCompile, "compile", false, "also compile the binary with wazero")
}

func inspectModule(pr *printer, file string, m *wasm.Module) {
	pr.title(file)

	fmt.Fprintf(pr.w, "\nSections: %d\n", len(m.Sections))
	for _, s := range m.Sections {
		pr.entry(wasm.SectionName(s.ID), fmt.Sprintf("%s (%d bytes)", s.Name(), len(s.Data)))
	}

	fmt.Fprintf(pr.w, "\nImports: %d\n", len(m.Imports))
	for _, imp := range m.Imports {
		pr.entry(wasm.KindName(imp.Kind), fmt.Sprintf("%s::%s", imp.Module, imp.Name))
	}

	fmt.Fprintf(pr.w, "\nExports: %d\n", len(m.Exports))
	for _, exp := range m.Exports {
		pr.entry(wasm.KindName(exp.Kind), exp.Name)
	}
}
