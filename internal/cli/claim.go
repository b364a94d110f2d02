package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/ports/primary"
	"github.com/example/agentbond/internal/wire"
)

// ClaimCmd returns the claim command
func ClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Manage warranty claims",
		Long:  `Submit, verify, and settle claims against agent runs.`,
	}

	cmd.AddCommand(claimSubmitCmd())
	cmd.AddCommand(claimVerifyCmd())
	cmd.AddCommand(claimSettleCmd())
	cmd.AddCommand(claimShowCmd())
	cmd.AddCommand(claimListCmd())

	return cmd
}

func claimSubmitCmd() *cobra.Command {
	var reason string
	var evidence string

	cmd := &cobra.Command{
		Use:   "submit [run-id] [agent-id]",
		Short: "Submit a claim against an agent run",
		Long: `Submit a claim against an agent run. The caller becomes the claimant and
the fixed claim amount is reserved against the agent's collateral.

Examples:
  agentbond claim submit RUN-42 AGENT-001 --reason bad-output --as 0xclaimant`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			claim, err := wire.ClaimService().SubmitClaim(ctx, primary.SubmitClaimRequest{
				RunID:        args[0],
				AgentID:      args[1],
				ReasonCode:   reason,
				EvidenceHash: evidence,
			})
			if err != nil {
				return fmt.Errorf("failed to submit claim: %w", err)
			}

			fmt.Printf("✓ Submitted claim %s against %s (%s credits reserved)\n",
				claim.ID, claim.AgentID, formatAmount(claim.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason code for the claim")
	cmd.Flags().StringVar(&evidence, "evidence", "", "hash of the supporting evidence")

	return cmd
}

func claimVerifyCmd() *cobra.Command {
	var outcome string

	cmd := &cobra.Command{
		Use:   "verify [claim-id]",
		Short: "Record the resolver's decision on a claim",
		Long: `Record the resolver's decision on a submitted claim. Rejection is terminal
and frees the reservation; approval holds it for settlement. Resolver only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimID := args[0]

			if outcome != "approved" && outcome != "rejected" {
				return fmt.Errorf("--outcome must be 'approved' or 'rejected'")
			}

			ctx := NewContext()
			if err := wire.ClaimService().Verify(ctx, claimID, outcome == "approved"); err != nil {
				return fmt.Errorf("failed to verify claim: %w", err)
			}

			fmt.Printf("✓ Claim %s %s\n", claimID, outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "decision: approved or rejected")

	return cmd
}

func claimSettleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle [claim-id]",
		Short: "Settle an approved claim",
		Long:  `Slash the agent's collateral and pay the claimant for an approved claim. Resolver only.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			claimID := args[0]

			if err := wire.ClaimService().Settle(ctx, claimID); err != nil {
				return fmt.Errorf("failed to settle claim: %w", err)
			}

			fmt.Printf("✓ Settled claim %s\n", claimID)
			return nil
		},
	}
}

func claimShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [claim-id]",
		Short: "Show claim details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			claimID := args[0]

			claim, err := wire.ClaimService().GetClaim(ctx, claimID)
			if err != nil {
				return fmt.Errorf("claim not found: %w", err)
			}

			fmt.Printf("Claim: %s\n", claim.ID)
			fmt.Printf("Run: %s\n", claim.RunID)
			fmt.Printf("Agent: %s\n", claim.AgentID)
			fmt.Printf("Claimant: %s\n", claim.Claimant)
			fmt.Printf("Status: %s\n", colorizeClaimStatus(claim.Status))
			fmt.Printf("Amount: %s credits\n", formatAmount(claim.Amount))
			if claim.ReasonCode != "" {
				fmt.Printf("Reason: %s\n", claim.ReasonCode)
			}
			if claim.EvidenceHash != "" {
				fmt.Printf("Evidence: %s\n", claim.EvidenceHash)
			}
			fmt.Printf("Created: %s\n", claim.CreatedAt)
			if claim.ResolvedAt != "" {
				fmt.Printf("Resolved: %s\n", claim.ResolvedAt)
			}

			return nil
		},
	}
}

func claimListCmd() *cobra.Command {
	var agentID string
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			claims, err := wire.ClaimService().ListClaims(ctx, primary.ClaimFilters{
				AgentID: agentID,
				Status:  status,
			})
			if err != nil {
				return fmt.Errorf("failed to list claims: %w", err)
			}

			if len(claims) == 0 {
				fmt.Println("No claims found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tRUN\tAGENT\tCLAIMANT\tSTATUS\tAMOUNT\tCREATED")
			fmt.Fprintln(w, "--\t---\t-----\t--------\t------\t------\t-------")
			for _, claim := range claims {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					claim.ID,
					claim.RunID,
					claim.AgentID,
					claim.Claimant,
					claim.Status,
					formatAmount(claim.Amount),
					claim.CreatedAt,
				)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "filter by agent ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (submitted, approved, rejected, paid)")

	return cmd
}

func colorizeClaimStatus(status string) string {
	switch status {
	case "submitted":
		return color.New(color.FgCyan).Sprint(status)
	case "approved":
		return color.New(color.FgYellow).Sprint(status)
	case "rejected":
		return color.New(color.FgHiBlack).Sprint(status)
	case "paid":
		return color.New(color.FgGreen).Sprint(status)
	default:
		return status
	}
}
