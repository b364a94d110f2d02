// +build ignore

// Reservation consistency checker.
//
// Scans the database and reports agents whose reserved collateral does not
// match the sum of their open (submitted or approved) claim amounts. A
// mismatch means a compensation path was interrupted mid-flight; use
// --repair to rewrite the reservation from the open claims.
//
// Usage:
//   go run scripts/check_reservations.go [--db path] [--repair]
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get home directory: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", filepath.Join(home, ".agentbond", "agentbond.db"), "path to the database")
	repair := flag.Bool("repair", false, "rewrite mismatched reservations from open claims")
	flag.Parse()

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT s.agent_id, s.staked, s.reserved, COALESCE(open.total, 0)
		FROM stakes s
		LEFT JOIN (
			SELECT agent_id, SUM(amount) AS total
			FROM claims
			WHERE status IN ('submitted', 'approved')
			GROUP BY agent_id
		) open ON open.agent_id = s.agent_id`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to query stakes: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	mismatches := 0
	for rows.Next() {
		var agentID string
		var staked, reserved, openTotal int64
		if err := rows.Scan(&agentID, &staked, &reserved, &openTotal); err != nil {
			fmt.Fprintf(os.Stderr, "failed to scan row: %v\n", err)
			os.Exit(1)
		}

		if reserved == openTotal {
			continue
		}
		mismatches++
		fmt.Printf("%s: reserved=%d, open claims=%d (staked=%d)\n", agentID, reserved, openTotal, staked)

		if *repair {
			if openTotal > staked {
				fmt.Printf("  SKIP: open claims exceed staked balance, needs manual review\n")
				continue
			}
			if _, err := db.Exec("UPDATE stakes SET reserved = ? WHERE agent_id = ?", openTotal, agentID); err != nil {
				fmt.Fprintf(os.Stderr, "  failed to repair %s: %v\n", agentID, err)
				os.Exit(1)
			}
			fmt.Printf("  repaired: reserved set to %d\n", openTotal)
		}
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to iterate stakes: %v\n", err)
		os.Exit(1)
	}

	if mismatches == 0 {
		fmt.Println("All reservations match open claims.")
	} else if !*repair {
		fmt.Printf("\n%d mismatch(es). Re-run with --repair to fix.\n", mismatches)
	}
}
