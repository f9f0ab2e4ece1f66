package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one ledger row. An account's balance is SUM(dr) - SUM(cr) over
// its completed rows; stakes are credits against the player, settlements are
// debits in their favor. TRef ties the row to the game that caused it.
type Balance struct {
	ID        int64           `json:"id"`
	Address   string          `json:"address"`
	TType     string          `json:"ttype"` // 'stake', 'payout', 'refund', 'deposit'
	Dr        decimal.Decimal `json:"dr"`
	Cr        decimal.Decimal `json:"cr"`
	TRef      string          `json:"tref"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
