package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type BalanceStore struct {
	db *pgxpool.Pool
}

func NewBalanceStore(db *pgxpool.Pool) *BalanceStore {
	return &BalanceStore{db: db}
}

func (c *BalanceStore) GetBalanceByAddress(ctx context.Context, address string) (decimal.Decimal, error) {
	var totalDr, totalCr decimal.Decimal

	err := c.db.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(dr), 0),
            COALESCE(SUM(cr), 0)
        FROM balances
        WHERE address = $1 AND status = 'completed'
    `, address).Scan(&totalDr, &totalCr)

	if err != nil {
		return decimal.Zero, err
	}

	balance := totalDr.Sub(totalCr)
	return balance, nil
}

// CollectStake charges the entry fee against an account inside the
// operation's transaction. The CTE locks the account's ledger rows so a
// concurrent collect cannot double-spend the same balance; the stake row is
// only written when the locked balance covers the amount.
func (c *BalanceStore) CollectStake(ctx context.Context, tx pgx.Tx, address string, amount decimal.Decimal, tref string) error {
	var totalDr, totalCr decimal.Decimal

	err := tx.QueryRow(ctx, `
        WITH locked AS (
            SELECT dr, cr
            FROM balances
            WHERE address = $1 AND status = 'completed'
            FOR UPDATE
        )
        SELECT COALESCE(SUM(dr), 0), COALESCE(SUM(cr), 0) FROM locked
    `, address).Scan(&totalDr, &totalCr)
	if err != nil {
		return fmt.Errorf("failed to read balance for %s: %w", address, err)
	}

	balance := totalDr.Sub(totalCr)
	if balance.LessThan(amount) {
		return fmt.Errorf("insufficient balance for %s: have %s, need %s",
			address, balance.StringFixed(4), amount.StringFixed(4))
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO balances (address, ttype, dr, cr, tref, status)
        VALUES ($1, 'stake', 0, $2, $3, 'completed')
    `, address, amount, tref)
	if err != nil {
		return fmt.Errorf("failed to record stake for %s: %w", address, err)
	}

	return nil
}

// Credit pays an amount out to an account (settlement payout or refund)
// inside the operation's transaction.
func (c *BalanceStore) Credit(ctx context.Context, tx pgx.Tx, address string, amount decimal.Decimal, ttype, tref string) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO balances (address, ttype, dr, cr, tref, status)
        VALUES ($1, $2, $3, 0, $4, 'completed')
    `, address, ttype, amount, tref)
	if err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", ttype, address, err)
	}

	return nil
}
