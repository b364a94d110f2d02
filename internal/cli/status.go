package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/config"
	"github.com/example/agentbond/internal/db"
	"github.com/example/agentbond/internal/ports/primary"
	"github.com/example/agentbond/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pool status and current caller context",
		Long: `Display the current caller context from .agentbond/config.json and a
summary of the pool: registered agents and open claims.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, cfgErr := config.LoadConfig(cwd)
			if cfgErr != nil {
				fmt.Println("agentbond Status - No Context")
				fmt.Println()
				fmt.Println("No .agentbond/config.json found in current directory.")
				fmt.Println("Run `agentbond init` to set up the database and config.")
				return nil //nolint:nilerr // Missing config is intentionally not an error
			}

			fmt.Println("agentbond Status")
			fmt.Println()
			if actor := GetActor(); actor != "" {
				fmt.Printf("Caller: %s\n", actor)
			} else {
				fmt.Println("Caller: (none set - use --as or config actor)")
			}
			if cfg.Resolver != "" {
				fmt.Printf("Resolver: %s\n", cfg.Resolver)
			} else {
				fmt.Println("Resolver: (none configured - claims cannot be verified)")
			}
			if dbPath, err := db.GetDBPath(); err == nil {
				fmt.Printf("Database: %s\n", dbPath)
			}
			fmt.Println()

			ctx := NewContext()
			agents, err := wire.IdentityService().ListAgents(ctx)
			if err != nil {
				return fmt.Errorf("failed to list agents: %w", err)
			}
			fmt.Printf("Agents: %d registered\n", len(agents))

			claims, err := wire.ClaimService().ListClaims(ctx, primary.ClaimFilters{Status: "submitted"})
			if err != nil {
				return fmt.Errorf("failed to list claims: %w", err)
			}
			fmt.Printf("Open claims: %d submitted\n", len(claims))

			return nil
		},
	}
}
