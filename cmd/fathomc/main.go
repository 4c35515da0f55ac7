// Command fathomc compiles Fathom model recipes into bytecode programs for
// the simulation runtime, and inspects compiled programs.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	ferrors "github.com/fathom-lang/fathom/errors"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	flagNoColor bool
	flagVerbose bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fathomc",
		Short:         "Compiler for Fathom model recipes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	root.AddCommand(newBuildCommand())
	root.AddCommand(newDisCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !useColor()}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func useColor() bool {
	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if ce, ok := err.(*ferrors.CompileError); ok {
			fmt.Fprintln(os.Stderr, ferrors.NewFormatter(useColor()).Format(ce))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
