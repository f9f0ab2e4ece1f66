package engine

import "github.com/shopspring/decimal"

// PlayOutcome describes what a successful play did, for notifications and
// the settlement archive.
type PlayOutcome struct {
	CardID    int64
	Attack    int64
	Team      Team
	Won       bool
	Transfers []Transfer
}

// PlayCard resolves one turn: the caller must be on the team whose turn it
// is, the index must point into their current deck. The card is removed and
// its attack applied against the opposing team's resource, clamped at the
// terminal bound. Reaching the terminal value finishes the game and pays the
// pool out to the winning team inside the same operation; otherwise the turn
// flips.
//
// Turn alternation is strict: a team whose decks are empty has no legal move
// (every index fails here) but is still handed the turn. The game then sits
// until somebody aborts; there is deliberately no auto-forfeit or draw rule.
func (r *Registry) PlayCard(l Ledger, id int64, address string, cardIndex int) (PlayOutcome, error) {
	g := r.game(id)
	if g == nil {
		return PlayOutcome{}, errf(KindNotFound, "game %d does not exist", id)
	}
	if g.Phase != PhaseActive {
		return PlayOutcome{}, errf(KindWrongPhase, "game %d is %s, no cards can be played", id, g.Phase)
	}
	p := g.player(address)
	if p == nil || !p.HasJoined {
		return PlayOutcome{}, errf(KindNotJoined, "%s never joined game %d", address, id)
	}
	if p.Team != g.Turn {
		return PlayOutcome{}, errf(KindNotYourTurn, "it is team %s's turn", g.Turn)
	}
	if cardIndex < 0 || cardIndex >= len(p.Deck) {
		return PlayOutcome{}, errf(KindInvalidCardIndex, "card index %d out of range, deck holds %d cards", cardIndex, len(p.Deck))
	}

	cardID := p.Deck[cardIndex]
	attack := Attack(id, cardID)
	opponent := p.Team.other()

	newRes, terminal := applyAttack(g.Mode, g.resourceOf(opponent), attack)

	outcome := PlayOutcome{CardID: cardID, Attack: attack, Team: p.Team, Won: terminal}

	cg := g.clone()
	if terminal {
		transfers := payoutTransfers(cg, p.Team)
		if err := l.Disburse(transfers); err != nil {
			return PlayOutcome{}, errf(KindTransferFailure, "prize payout for game %d could not be executed: %v", id, err)
		}
		outcome.Transfers = transfers
	}

	cp := cg.players[address]
	cp.Deck = append(cp.Deck[:cardIndex:cardIndex], cp.Deck[cardIndex+1:]...)
	cg.setResource(opponent, newRes)

	if terminal {
		cg.Winner = winnerOf(p.Team)
		cg.Phase = PhaseFinished
		cg.Turn = TeamNone
		cg.PrizePool = decimal.Zero
	} else {
		cg.Turn = opponent
	}

	r.swap(cg)
	return outcome, nil
}

// applyAttack moves a resource counter by one card's attack, clamped at the
// mode's terminal bound, and reports whether the bound was reached.
func applyAttack(mode ResourceMode, resource, attack int64) (int64, bool) {
	if mode == ModeCountUp {
		v := resource + attack
		if v >= AnnihilationTarget {
			return AnnihilationTarget, true
		}
		return v, false
	}
	v := resource - attack
	if v <= 0 {
		return 0, true
	}
	return v, false
}

func winnerOf(t Team) Winner {
	if t == TeamRed {
		return WinnerRed
	}
	return WinnerBlue
}
