package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fathom-lang/fathom/bytecode"
	"github.com/fathom-lang/fathom/compiler"
	"github.com/fathom-lang/fathom/recipe"
)

func newBuildCommand() *cobra.Command {
	var output string
	var importDir string

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a recipe into a bytecode program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if output == "" {
				output = outputPath(path)
			}
			prog, err := compileFile(path, importDir)
			if err != nil {
				return err
			}
			if err := bytecode.WriteFile(prog, output); err != nil {
				return err
			}
			logger := newLogger()
			logger.Info().Str("output", output).Msg("program written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to <file>.fbc)")
	cmd.Flags().StringVar(&importDir, "import-dir", "", "Directory to resolve imports from (defaults to the recipe's directory)")
	return cmd
}

// outputPath swaps the source extension for .fbc: model.ftm -> model.fbc.
func outputPath(source string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return base + ".fbc"
}

func compileFile(path, importDir string) (*bytecode.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := recipe.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if importDir == "" {
		importDir = filepath.Dir(path)
	}
	logger := newLogger()
	return compiler.Compile(root, &compiler.Config{
		Filename: filepath.Base(path),
		Loader:   compiler.FileLoader{Dir: importDir},
		Logger:   &logger,
	})
}
