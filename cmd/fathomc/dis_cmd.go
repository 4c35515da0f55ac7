package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fathom-lang/fathom/bytecode"
	"github.com/fathom-lang/fathom/dis"
)

func newDisCommand() *cobra.Command {
	var importDir string

	cmd := &cobra.Command{
		Use:   "dis <file>",
		Short: "Disassemble a compiled program",
		Long: "Disassemble a compiled .fbc program, or compile a recipe in " +
			"memory and disassemble the result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			prog, err := loadProgram(path, importDir)
			if err != nil {
				return err
			}
			dis.PrintProgram(prog, os.Stdout, dis.Options{UseColor: useColor()})
			return nil
		},
	}
	cmd.Flags().StringVar(&importDir, "import-dir", "", "Directory to resolve imports from (defaults to the recipe's directory)")
	return cmd
}

func loadProgram(path, importDir string) (*bytecode.Program, error) {
	if filepath.Ext(path) == ".fbc" {
		return bytecode.ReadFile(path)
	}
	return compileFile(path, importDir)
}
