package db

// SchemaSQL is the complete schema for fresh agentbond installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests load
// it via GetSchemaSQL(), so repository code referencing a column that does not
// exist here fails immediately with "no such column" at development time.
const SchemaSQL = `
-- Agents (identity records: operator, status, reputation)
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	operator TEXT NOT NULL,
	metadata_uri TEXT,
	status TEXT NOT NULL CHECK(status IN ('active', 'paused', 'retired')) DEFAULT 'active',
	trust_score INTEGER NOT NULL DEFAULT 0,
	total_runs INTEGER NOT NULL DEFAULT 0,
	violations INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Stakes (one collateral position per agent, created lazily, never deleted)
CREATE TABLE IF NOT EXISTS stakes (
	agent_id TEXT PRIMARY KEY,
	staked INTEGER NOT NULL DEFAULT 0 CHECK(staked >= 0),
	reserved INTEGER NOT NULL DEFAULT 0 CHECK(reserved >= 0 AND reserved <= staked),
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (agent_id) REFERENCES agents(id)
);

-- Unstake requests (cooldown-gated withdrawals; immutable audit records once executed)
CREATE TABLE IF NOT EXISTS unstake_requests (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	requester TEXT NOT NULL,
	amount INTEGER NOT NULL CHECK(amount > 0),
	unlock_at DATETIME NOT NULL,
	executed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (agent_id) REFERENCES agents(id)
);

-- Claims (lifecycle records; immutable once terminal)
CREATE TABLE IF NOT EXISTS claims (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL UNIQUE,
	claimant TEXT NOT NULL,
	agent_id TEXT NOT NULL,
	reason_code TEXT NOT NULL,
	evidence_hash TEXT,
	status TEXT NOT NULL CHECK(status IN ('submitted', 'approved', 'rejected', 'paid')) DEFAULT 'submitted',
	amount INTEGER NOT NULL CHECK(amount > 0),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME,
	FOREIGN KEY (agent_id) REFERENCES agents(id)
);

-- Daily submission counters (one per agent, reset when the day rolls over)
CREATE TABLE IF NOT EXISTS claim_counters (
	agent_id TEXT PRIMARY KEY,
	day TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (agent_id) REFERENCES agents(id)
);

-- Accounts (real pooled balances; the POOL account is shared across agents)
CREATE TABLE IF NOT EXISTS accounts (
	address TEXT PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0 CHECK(balance >= 0)
);

-- Audit log (immutable ordered history of every state-changing operation)
CREATE TABLE IF NOT EXISTS audit_log (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL,
	agent_id TEXT,
	claim_id TEXT,
	request_id TEXT,
	actor TEXT,
	recipient TEXT,
	amount INTEGER NOT NULL DEFAULT 0,
	detail TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_agent ON claims(agent_id);
CREATE INDEX IF NOT EXISTS idx_unstake_agent ON unstake_requests(agent_id);
CREATE INDEX IF NOT EXISTS idx_audit_agent ON audit_log(agent_id);
`

// GetSchemaSQL returns the authoritative schema. Tests must use this instead
// of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}

// InitSchema creates all tables if they don't exist.
func InitSchema() error {
	database, err := GetDB()
	if err != nil {
		return err
	}
	_, err = database.Exec(SchemaSQL)
	return err
}
