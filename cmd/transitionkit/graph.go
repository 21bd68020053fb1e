package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "graph <machine>",
		Short:     "Print a machine's transition table as a Graphviz DOT graph",
		Args:      cobra.ExactArgs(1),
		ValidArgs: machineNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := lookupMachine(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), m.ToDOT())
			return err
		},
	}
}
