package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTransitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "transitions <machine>",
		Short:     "List a machine's transitions with their guards and side effects",
		Args:      cobra.ExactArgs(1),
		ValidArgs: machineNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := lookupMachine(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFROM\tTO\tREQUIRES\tAUDIT\tNOTIFY")
			for _, d := range m.Definitions() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					d.Name, d.From, d.To,
					orDash(requirement(d.Permission, d.Role)),
					orDash(d.ActionType),
					orDash(strings.Join(d.NotifyUsers, ",")),
				)
			}
			return w.Flush()
		},
	}
}

func requirement(permission, role string) string {
	switch {
	case permission != "" && role != "":
		return permission + " + role:" + role
	case role != "":
		return "role:" + role
	default:
		return permission
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
