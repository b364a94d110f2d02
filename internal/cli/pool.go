package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/core/collateral"
	"github.com/example/agentbond/internal/wire"
)

// PoolCmd returns the pool command
func PoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage collateral positions",
		Long:  `Stake, unstake, and inspect agent collateral in the warranty pool.`,
	}

	cmd.AddCommand(poolStakeCmd())
	cmd.AddCommand(poolUnstakeCmd())
	cmd.AddCommand(poolFinalizeCmd())
	cmd.AddCommand(poolHealthCmd())
	cmd.AddCommand(poolRequestsCmd())

	return cmd
}

func poolStakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stake [agent-id] [amount]",
		Short: "Add collateral for an agent",
		Long: `Add collateral for an agent. Amounts are in credits. Operator only.

Examples:
  agentbond pool stake AGENT-001 1.5 --as 0xoperator`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID := args[0]

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			if err := wire.LedgerService().Stake(ctx, agentID, amount); err != nil {
				return fmt.Errorf("failed to stake: %w", err)
			}

			fmt.Printf("✓ Staked %s credits for %s\n", formatAmount(amount), agentID)
			return nil
		},
	}
}

func poolUnstakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstake [agent-id] [amount]",
		Short: "Request a collateral withdrawal",
		Long: fmt.Sprintf(`Request a withdrawal of free collateral. The amount leaves the active
pool immediately; the funds pay out after a %s cooldown via
'pool finalize'. Operator only.`, collateral.UnstakeCooldown),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID := args[0]

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			requestID, err := wire.LedgerService().RequestUnstake(ctx, agentID, amount)
			if err != nil {
				return fmt.Errorf("failed to request unstake: %w", err)
			}

			fmt.Printf("✓ Created unstake request %s for %s credits\n", requestID, formatAmount(amount))
			fmt.Printf("  Finalize after the cooldown with: agentbond pool finalize %s\n", requestID)
			return nil
		},
	}
}

func poolFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize [request-id]",
		Short: "Execute a matured unstake request",
		Long:  `Execute a matured unstake request, paying the requester from the pool. Requester only.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			requestID := args[0]

			if err := wire.LedgerService().FinalizeUnstake(ctx, requestID); err != nil {
				return fmt.Errorf("failed to finalize unstake: %w", err)
			}

			fmt.Printf("✓ Finalized unstake request %s\n", requestID)
			return nil
		},
	}
}

func poolHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health [agent-id]",
		Short: "Show an agent's collateral position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID := args[0]

			health, err := wire.LedgerService().GetCollateralHealth(ctx, agentID)
			if err != nil {
				return fmt.Errorf("failed to get collateral health: %w", err)
			}

			fmt.Printf("Agent: %s\n", health.AgentID)
			fmt.Printf("Staked: %s credits\n", formatAmount(health.Staked))
			fmt.Printf("Reserved: %s credits\n", formatAmount(health.Reserved))
			fmt.Printf("Free: %s credits\n", formatAmount(health.Free))
			fmt.Printf("Ratio: %s\n", formatRatio(health.RatioBps))

			return nil
		},
	}
}

func poolRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests [agent-id]",
		Short: "List an agent's unstake requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID := args[0]

			requests, err := wire.LedgerService().ListUnstakeRequests(ctx, agentID)
			if err != nil {
				return fmt.Errorf("failed to list unstake requests: %w", err)
			}

			if len(requests) == 0 {
				fmt.Println("No unstake requests found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREQUESTER\tAMOUNT\tUNLOCKS\tEXECUTED\tCREATED")
			fmt.Fprintln(w, "--\t---------\t------\t-------\t--------\t-------")
			for _, req := range requests {
				executed := "no"
				if req.Executed {
					executed = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					req.ID,
					req.Requester,
					formatAmount(req.Amount),
					req.UnlockAt,
					executed,
					req.CreatedAt,
				)
			}
			w.Flush()
			return nil
		},
	}
}

// formatRatio renders a basis-point ratio as a percentage, with the
// nothing-reserved sentinel shown as a dash.
func formatRatio(bps int64) string {
	if bps == collateral.MaxRatioBps {
		return color.New(color.FgGreen).Sprint("∞ (nothing reserved)")
	}
	s := fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
	if bps < collateral.MinCollateralRatioBps {
		return color.New(color.FgYellow).Sprint(s)
	}
	return s
}
