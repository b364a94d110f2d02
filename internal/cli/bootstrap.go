// Package cli provides CLI commands for the agentbond application.
package cli

import (
	gocontext "context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/agentbond/internal/config"
	"github.com/example/agentbond/internal/ctxutil"
)

// globalActor stores the caller address for the current CLI invocation.
// Set once at startup by DetectAndStoreActor().
var globalActor string

// RegisterActorFlag adds the global --as flag to the root command. The flag
// names the caller address role-gated operations are attributed to.
func RegisterActorFlag(root *cobra.Command) {
	root.PersistentFlags().String("as", "", "caller address for this invocation (overrides config)")
}

// DetectAndStoreActor resolves the caller address and stores it globally.
// The --as flag wins; otherwise the actor from .agentbond/config.json is
// used. Should be called once at CLI startup in PersistentPreRun.
func DetectAndStoreActor(cmd *cobra.Command) {
	if as, _ := cmd.Flags().GetString("as"); as != "" {
		globalActor = as
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return
	}
	globalActor = cfg.Actor
}

// GetActor returns the stored caller address from CLI startup.
// Returns empty string if DetectAndStoreActor() was not called.
func GetActor() string {
	return globalActor
}

// NewContext creates a context.Background() with the caller address embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalActor != "" {
		return ctxutil.WithActor(ctx, globalActor)
	}
	return ctx
}
