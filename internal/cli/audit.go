package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/wire"
)

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit history",
		Long:  `Show the ordered history of pool events, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			events, err := wire.AuditLog().List(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list audit events: %w", err)
			}

			if len(events) == 0 {
				fmt.Println("No audit events recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tKIND\tAGENT\tCLAIM\tREQUEST\tACTOR\tAMOUNT\tDETAIL\tAT")
			fmt.Fprintln(w, "---\t----\t-----\t-----\t-------\t-----\t------\t------\t--")
			for _, e := range events {
				amount := ""
				if e.Amount != 0 {
					amount = formatAmount(e.Amount)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Seq,
					e.Kind,
					orDash(e.AgentID),
					orDash(e.ClaimID),
					orDash(e.RequestID),
					orDash(e.Actor),
					orDash(amount),
					orDash(e.Detail),
					e.CreatedAt,
				)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events to show (0 for all)")

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
