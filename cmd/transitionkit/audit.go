package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <entity_type> <entity_id>",
		Short: "Show the recorded transitions of one entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			rt, err := openRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.AuditLog().ListByEntity(cmd.Context(), args[0], args[1], limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AT\tACTION\tFROM\tTO\tOPERATOR\tCOMMENT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339),
					e.ActionType,
					orDash(e.FromState),
					e.ToState,
					orDash(operator(e)),
					orDash(e.Comment),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", audit.DefaultListLimit, "maximum number of entries")
	return cmd
}

func operator(e audit.Entry) string {
	if e.OperatorName != "" {
		return e.OperatorName
	}
	return e.OperatorID
}
