package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/config"
	"github.com/example/agentbond/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var actor string
	var resolver string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the agentbond database and config",
		Long: `Initialize the agentbond database at ~/.agentbond/agentbond.db with the
required schema and write .agentbond/config.json in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing agentbond database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg := &config.Config{
				Version:  "1.0",
				Actor:    actor,
				Resolver: resolver,
			}
			if existing, err := config.LoadConfig(cwd); err == nil {
				// Keep fields the flags did not override.
				if actor == "" {
					cfg.Actor = existing.Actor
				}
				if resolver == "" {
					cfg.Resolver = existing.Resolver
				}
			}
			if err := config.SaveConfig(cwd, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Println("✓ Config written to .agentbond/config.json")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  agentbond agent register --metadata ipfs://agent-card --as 0xoperator")
			fmt.Println("  agentbond status")

			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "default caller address for commands")
	cmd.Flags().StringVar(&resolver, "resolver", "", "address allowed to verify and settle claims")

	return cmd
}
