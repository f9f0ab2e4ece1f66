package engine

import "github.com/shopspring/decimal"

// ledgerScale is the decimal precision settlement shares are cut at.
const ledgerScale int32 = 8

// payoutTransfers splits the whole prize pool equally among the winning
// team's members. The division is cut at the ledger scale and the remainder
// goes to the earliest-joined winner, so the pool is disbursed exactly and
// the split is deterministic from join order.
func payoutTransfers(g *Game, winner Team) []Transfer {
	members := g.teamMembers(winner)
	if len(members) == 0 {
		return nil
	}

	n := decimal.NewFromInt(int64(len(members)))
	share, rem := g.PrizePool.QuoRem(n, ledgerScale)

	out := make([]Transfer, 0, len(members))
	for i, addr := range members {
		amount := share
		if i == 0 {
			amount = amount.Add(rem)
		}
		out = append(out, Transfer{Address: addr, Amount: amount})
	}
	return out
}

// refundTransfers returns every joined player exactly the stake they paid.
func refundTransfers(g *Game) []Transfer {
	out := make([]Transfer, 0, len(g.joinOrder))
	for _, addr := range g.joinOrder {
		out = append(out, Transfer{Address: addr, Amount: EntryStake})
	}
	return out
}
