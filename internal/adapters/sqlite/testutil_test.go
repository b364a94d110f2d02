// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements here.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/agentbond/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedAgent inserts a test agent and returns its ID.
func seedAgent(t *testing.T, db *sql.DB, id, operator string) string {
	t.Helper()
	if id == "" {
		id = "AGENT-001"
	}
	if operator == "" {
		operator = "0xoperator"
	}
	_, err := db.Exec("INSERT INTO agents (id, operator, status) VALUES (?, ?, 'active')", id, operator)
	if err != nil {
		t.Fatalf("failed to seed agent: %v", err)
	}
	return id
}

// seedStake inserts a collateral position for an agent.
func seedStake(t *testing.T, db *sql.DB, agentID string, staked, reserved int64) {
	t.Helper()
	_, err := db.Exec("INSERT INTO stakes (agent_id, staked, reserved) VALUES (?, ?, ?)", agentID, staked, reserved)
	if err != nil {
		t.Fatalf("failed to seed stake: %v", err)
	}
}
