package engine

import (
	"github.com/shopspring/decimal"
)

// JoinTeam records a player on a team and collects the entry stake into the
// prize pool. The stake must match EntryStake exactly and an address can
// join at most once per game.
func (r *Registry) JoinTeam(l Ledger, id int64, address string, team Team, stake decimal.Decimal) error {
	g := r.game(id)
	if g == nil {
		return errf(KindNotFound, "game %d does not exist", id)
	}
	if g.Phase != PhaseForming {
		return errf(KindWrongPhase, "game %d is %s, joining is only open while forming", id, g.Phase)
	}
	if team != TeamRed && team != TeamBlue {
		return errf(KindInvalidTeam, "team must be red or blue")
	}
	if p := g.player(address); p != nil && p.HasJoined {
		return errf(KindAlreadyJoined, "%s already joined game %d on team %s", address, id, p.Team)
	}
	if !stake.Equal(EntryStake) {
		return errf(KindInvalidStake, "stake %s does not match the entry fee %s", stake, EntryStake)
	}

	cg := g.clone()
	if err := l.Collect(address, stake); err != nil {
		return errf(KindTransferFailure, "stake could not be collected from %s: %v", address, err)
	}
	cg.players[address] = &Player{Address: address, Team: team, HasJoined: true}
	cg.joinOrder = append(cg.joinOrder, address)
	cg.PrizePool = cg.PrizePool.Add(stake)

	r.swap(cg)
	return nil
}

// BeginGame gates the transition from forming to active: both teams must
// have at least one member. Decks are dealt deterministically from join
// order, resources reset to the mode's starting value, and Red moves first.
func (r *Registry) BeginGame(id int64) error {
	g := r.game(id)
	if g == nil {
		return errf(KindNotFound, "game %d does not exist", id)
	}
	if g.Phase != PhaseForming {
		return errf(KindWrongPhase, "game %d is %s, it cannot begin", id, g.Phase)
	}
	if g.teamCount(TeamRed) < 1 || g.teamCount(TeamBlue) < 1 {
		return errf(KindNotEnoughPlayers, "both teams need at least one player (red %d, blue %d)",
			g.teamCount(TeamRed), g.teamCount(TeamBlue))
	}

	cg := g.clone()
	dealDecks(cg)
	switch cg.Mode {
	case ModeCountUp:
		cg.Resource1 = 0
		cg.Resource2 = 0
	default:
		cg.Resource1 = StartingHealth
		cg.Resource2 = StartingHealth
	}
	cg.Turn = TeamRed
	cg.Phase = PhaseActive

	r.swap(cg)
	return nil
}

// AbortGame is the unilateral escape hatch: any joined player can destroy a
// forming or active game. Every joined player is refunded exactly the entry
// stake; a ledger failure aborts the whole operation with nothing mutated.
// The executed refunds are returned for archival.
func (r *Registry) AbortGame(l Ledger, id int64, address string) ([]Transfer, error) {
	g := r.game(id)
	if g == nil {
		return nil, errf(KindNotFound, "game %d does not exist", id)
	}
	p := g.player(address)
	if p == nil || !p.HasJoined {
		return nil, errf(KindNotJoined, "%s never joined game %d", address, id)
	}
	if g.Phase != PhaseForming && g.Phase != PhaseActive {
		return nil, errf(KindWrongPhase, "game %d is already %s", id, g.Phase)
	}

	cg := g.clone()
	refunds := refundTransfers(cg)
	if err := l.Disburse(refunds); err != nil {
		return nil, errf(KindTransferFailure, "refunds for game %d could not be executed: %v", id, err)
	}
	cg.Phase = PhaseAborted
	cg.Winner = WinnerAborted
	cg.Turn = TeamNone
	cg.Resource1 = 0
	cg.Resource2 = 0
	cg.PrizePool = decimal.Zero

	r.swap(cg)
	return refunds, nil
}
