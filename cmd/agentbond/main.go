package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/cli"
	"github.com/example/agentbond/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "agentbond",
		Short:   "agentbond - warranty pool for autonomous agent operators",
		Version: version.String(),
		Long: `agentbond is a CLI tool for managing a warranty pool: operators stake
collateral behind their agents, and harmed parties file claims that a
resolver verifies and settles against that collateral.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.DetectAndStoreActor(cmd)
		},
	}

	cli.RegisterActorFlag(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.AgentCmd())
	rootCmd.AddCommand(cli.PoolCmd())
	rootCmd.AddCommand(cli.ClaimCmd())
	rootCmd.AddCommand(cli.AuditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
