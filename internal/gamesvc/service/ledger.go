package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
	"github.com/teamwar/battle-services/internal/gamesvc/store"
)

// txLedger binds the engine's ledger calls to one open transaction, so the
// balance rows and the game snapshot either commit together or not at all.
type txLedger struct {
	ctx      context.Context
	tx       pgx.Tx
	balances *store.BalanceStore
	tref     string
	ttype    string // row type for disbursements: 'payout' or 'refund'
}

func (l *txLedger) Collect(address string, amount decimal.Decimal) error {
	return l.balances.CollectStake(l.ctx, l.tx, address, amount, l.tref)
}

func (l *txLedger) Disburse(transfers []engine.Transfer) error {
	for _, t := range transfers {
		if err := l.balances.Credit(l.ctx, l.tx, t.Address, t.Amount, l.ttype, l.tref); err != nil {
			return err
		}
	}
	return nil
}
