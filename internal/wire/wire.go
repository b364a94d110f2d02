// Package wire provides dependency injection for the agentbond application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/example/agentbond/internal/adapters/sqlite"
	"github.com/example/agentbond/internal/app"
	"github.com/example/agentbond/internal/config"
	"github.com/example/agentbond/internal/db"
	"github.com/example/agentbond/internal/ports/primary"
	"github.com/example/agentbond/internal/ports/secondary"
	"github.com/example/agentbond/internal/telemetry"
)

var (
	identityService primary.IdentityService
	ledgerService   primary.LedgerService
	claimService    primary.ClaimService
	auditLog        secondary.AuditLog
	once            sync.Once
)

// IdentityService returns the singleton IdentityService instance.
func IdentityService() primary.IdentityService {
	once.Do(initServices)
	return identityService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// ClaimService returns the singleton ClaimService instance.
func ClaimService() primary.ClaimService {
	once.Do(initServices)
	return claimService
}

// AuditLog returns the singleton audit log instance.
func AuditLog() secondary.AuditLog {
	once.Do(initServices)
	return auditLog
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	// Service-level events (compensations, stuck requests) go to the JSONL
	// log; CLI output stays on plain stdout.
	if home, err := os.UserHomeDir(); err == nil {
		if logger, _, err := telemetry.NewLogger(home, os.Getenv("AGENTBOND_LOG_LEVEL")); err == nil {
			slog.SetDefault(logger)
		}
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) - sqlite adapters with injected DB
	agentRepo := sqlite.NewAgentRepository(database)
	stakeRepo := sqlite.NewStakeRepository(database)
	unstakeRepo := sqlite.NewUnstakeRepository(database)
	claimRepo := sqlite.NewClaimRepository(database)
	treasury := sqlite.NewTreasury(database)
	auditLog = sqlite.NewAuditLog(database)

	resolver := resolverAddress()

	// One serializer across all services: ledger and claim state changes
	// never interleave.
	serializer := &sync.Mutex{}

	identity := app.NewIdentityService(agentRepo, auditLog, resolver, serializer)
	ledger := app.NewLedgerService(stakeRepo, unstakeRepo, identity, treasury, auditLog, serializer)

	// The ledger's CollateralOps capability is handed to the claim service
	// here and nowhere else.
	claims := app.NewClaimService(claimRepo, identity, ledger, auditLog, resolver, serializer)

	identityService = identity
	ledgerService = ledger
	claimService = claims
}

// resolverAddress reads the resolver from the local config, empty when no
// config exists yet.
func resolverAddress() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return ""
	}
	return cfg.Resolver
}
