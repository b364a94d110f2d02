package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/agentbond/internal/errs"
	"github.com/example/agentbond/internal/ports/secondary"
)

// PoolAccount aliases the port constant for convenience at call sites.
const PoolAccount = secondary.PoolAccount

// Treasury implements secondary.FundGateway with SQLite-backed accounts.
type Treasury struct {
	db *sql.DB
}

// NewTreasury creates a new SQLite treasury.
func NewTreasury(db *sql.DB) *Treasury {
	return &Treasury{db: db}
}

// Deposit credits an account.
func (t *Treasury) Deposit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return errs.E(errs.KindInvalidAmount, "deposit", account, "deposit amount must be positive")
	}

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO accounts (address, balance) VALUES (?, ?)
		 ON CONFLICT(address) DO UPDATE SET balance = balance + excluded.balance`,
		account, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}

	return nil
}

// Transfer moves amount between accounts. It fails with a transfer error
// when the source balance cannot cover the amount, regardless of what any
// per-agent accounting says on paper.
func (t *Treasury) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return errs.E(errs.KindInvalidAmount, "transfer", from, "transfer amount must be positive")
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE address = ?", from).Scan(&balance)
	if err == sql.ErrNoRows {
		balance = 0
	} else if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	if balance < amount {
		return errs.E(errs.KindTransfer, "transfer", from, "account balance %d cannot cover transfer %d", balance, amount)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE accounts SET balance = balance - ? WHERE address = ?", amount, from); err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (address, balance) VALUES (?, ?)
		 ON CONFLICT(address) DO UPDATE SET balance = balance + excluded.balance`,
		to, amount,
	); err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}

	return nil
}

// Balance returns an account's balance, zero for unknown accounts.
func (t *Treasury) Balance(ctx context.Context, account string) (int64, error) {
	var balance int64
	err := t.db.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE address = ?", account).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	return balance, nil
}

// Ensure Treasury implements the interface
var _ secondary.FundGateway = (*Treasury)(nil)
