package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/wire"
)

// AgentCmd returns the agent command
func AgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent identities",
		Long:  `Register and manage agents backed by the warranty pool.`,
	}

	cmd.AddCommand(agentRegisterCmd())
	cmd.AddCommand(agentShowCmd())
	cmd.AddCommand(agentListCmd())
	cmd.AddCommand(agentSetStatusCmd())
	cmd.AddCommand(agentScoreCmd())

	return cmd
}

func agentRegisterCmd() *cobra.Command {
	var metadata string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new agent",
		Long: `Register a new agent owned by the caller.

Examples:
  agentbond agent register --metadata ipfs://agent-card --as 0xoperator`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			agent, err := wire.IdentityService().RegisterAgent(ctx, metadata)
			if err != nil {
				return fmt.Errorf("failed to register agent: %w", err)
			}

			fmt.Printf("✓ Registered agent %s (operator: %s)\n", agent.ID, agent.Operator)
			return nil
		},
	}

	cmd.Flags().StringVar(&metadata, "metadata", "", "metadata URI describing the agent")

	return cmd
}

func agentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [agent-id]",
		Short: "Show agent details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID := args[0]

			agent, err := wire.IdentityService().GetAgent(ctx, agentID)
			if err != nil {
				return fmt.Errorf("agent not found: %w", err)
			}

			fmt.Printf("Agent: %s\n", agent.ID)
			fmt.Printf("Operator: %s\n", agent.Operator)
			fmt.Printf("Status: %s\n", colorizeStatus(agent.Status))
			if agent.MetadataURI != "" {
				fmt.Printf("Metadata: %s\n", agent.MetadataURI)
			}
			fmt.Printf("Trust Score: %d\n", agent.TrustScore)
			fmt.Printf("Total Runs: %d\n", agent.TotalRuns)
			fmt.Printf("Violations: %d\n", agent.Violations)
			fmt.Printf("Created: %s\n", agent.CreatedAt)

			return nil
		},
	}
}

func agentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			agents, err := wire.IdentityService().ListAgents(ctx)
			if err != nil {
				return fmt.Errorf("failed to list agents: %w", err)
			}

			if len(agents) == 0 {
				fmt.Println("No agents registered.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tOPERATOR\tSTATUS\tSCORE\tRUNS\tVIOLATIONS\tCREATED")
			fmt.Fprintln(w, "--\t--------\t------\t-----\t----\t----------\t-------")
			for _, agent := range agents {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					agent.ID,
					agent.Operator,
					agent.Status,
					agent.TrustScore,
					agent.TotalRuns,
					agent.Violations,
					agent.CreatedAt,
				)
			}
			w.Flush()
			return nil
		},
	}
}

func agentSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status [agent-id] [status]",
		Short: "Change an agent's status",
		Long:  `Change an agent's status (active, paused, retired). Operator or resolver only.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID, status := args[0], args[1]

			if err := wire.IdentityService().SetStatus(ctx, agentID, status); err != nil {
				return fmt.Errorf("failed to set status: %w", err)
			}

			fmt.Printf("✓ Agent %s is now %s\n", agentID, status)
			return nil
		},
	}
}

func agentScoreCmd() *cobra.Command {
	var trustScore, totalRuns, violations int64

	cmd := &cobra.Command{
		Use:   "score [agent-id]",
		Short: "Record an agent's reputation figures",
		Long:  `Record trust score, run count, and violations for an agent. Resolver only.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			agentID := args[0]

			if err := wire.IdentityService().UpdateScore(ctx, agentID, trustScore, totalRuns, violations); err != nil {
				return fmt.Errorf("failed to update score: %w", err)
			}

			fmt.Printf("✓ Updated score for %s\n", agentID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&trustScore, "trust", 0, "trust score")
	cmd.Flags().Int64Var(&totalRuns, "runs", 0, "total runs")
	cmd.Flags().Int64Var(&violations, "violations", 0, "violation count")

	return cmd
}

func colorizeStatus(status string) string {
	switch status {
	case "active":
		return color.New(color.FgGreen).Sprint(status)
	case "paused":
		return color.New(color.FgYellow).Sprint(status)
	case "retired":
		return color.New(color.FgHiBlack).Sprint(status)
	default:
		return status
	}
}
