package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathom-lang/fathom/bytecode"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "fathomc %s (commit %s, bytecode format v%d)\n",
				version, commit, bytecode.Version)
			return nil
		},
	}
}
