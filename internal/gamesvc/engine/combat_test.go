package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayCardRejections(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountDown)

	_, err := r.PlayCard(l, id, "0xa", 0)
	assert.Equal(t, KindWrongPhase, KindOf(err))

	require.NoError(t, r.JoinTeam(l, id, "0xa", TeamRed, EntryStake))
	require.NoError(t, r.JoinTeam(l, id, "0xb", TeamBlue, EntryStake))
	require.NoError(t, r.BeginGame(id))

	_, err = r.PlayCard(l, id, "0xstranger", 0)
	assert.Equal(t, KindNotJoined, KindOf(err))

	_, err = r.PlayCard(l, id, "0xb", 0)
	assert.Equal(t, KindNotYourTurn, KindOf(err))

	_, err = r.PlayCard(l, id, "0xa", CardsPerTeam)
	assert.Equal(t, KindInvalidCardIndex, KindOf(err))
	_, err = r.PlayCard(l, id, "0xa", -1)
	assert.Equal(t, KindInvalidCardIndex, KindOf(err))
}

func TestPlayCardAppliesAttackAndFlipsTurn(t *testing.T) {
	r, l, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})

	deckBefore := r.PlayerState(id, "0xa").Deck
	cardID := deckBefore[0]

	out, err := r.PlayCard(l, id, "0xa", 0)
	require.NoError(t, err)
	assert.Equal(t, cardID, out.CardID)
	assert.Equal(t, Attack(id, cardID), out.Attack)
	assert.False(t, out.Won)

	v := r.GameState(id)
	assert.Equal(t, StartingHealth, v.Resource1, "own resource untouched")
	assert.Equal(t, StartingHealth-out.Attack, v.Resource2)
	assert.Equal(t, "blue", v.Turn)

	deckAfter := r.PlayerState(id, "0xa").Deck
	assert.Len(t, deckAfter, len(deckBefore)-1)
	assert.Equal(t, deckBefore[1:], deckAfter, "order preserved, played card removed")
}

func TestTurnsAlternateStrictly(t *testing.T) {
	r, l, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})

	turn := "red"
	for i := 0; i < 4; i++ {
		v := r.GameState(id)
		require.Equal(t, turn, v.Turn)
		addr := "0xa"
		if turn == "blue" {
			addr = "0xb"
		}
		out, err := r.PlayCard(l, id, addr, 0)
		require.NoError(t, err)
		require.False(t, out.Won, "two max-attack hits per side cannot finish a 100 start game")
		if turn == "red" {
			turn = "blue"
		} else {
			turn = "red"
		}
	}
}

// playUntilWin alternates plays at index 0 until the game finishes.
func playUntilWin(t *testing.T, r *Registry, l *mockLedger, id int64, red, blue string) PlayOutcome {
	t.Helper()
	for i := 0; i < 2*CardsPerTeam; i++ {
		addr := red
		if r.GameState(id).Turn == "blue" {
			addr = blue
		}
		out, err := r.PlayCard(l, id, addr, 0)
		require.NoError(t, err)
		if out.Won {
			return out
		}
	}
	t.Fatal("game never finished; decks exhausted")
	return PlayOutcome{}
}

func TestWinFinishesGameAndPaysPool(t *testing.T) {
	r, l, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})
	pool := r.GameState(id).PrizePool

	out := playUntilWin(t, r, l, id, "0xa", "0xb")

	v := r.GameState(id)
	assert.Equal(t, "finished", v.Phase)
	assert.Equal(t, "none", v.Turn)
	assert.True(t, v.PrizePool.IsZero())
	assert.Contains(t, []string{"red", "blue"}, v.Winner)
	assert.Equal(t, out.Team.String(), v.Winner)

	// the loser's resource hit the terminal bound, the winner's did not
	if v.Winner == "red" {
		assert.Equal(t, int64(0), v.Resource2)
		assert.Greater(t, v.Resource1, int64(0))
	} else {
		assert.Equal(t, int64(0), v.Resource1)
		assert.Greater(t, v.Resource2, int64(0))
	}

	require.Len(t, out.Transfers, 1, "single-member winning team")
	assert.True(t, out.Transfers[0].Amount.Equal(pool))
	assert.True(t, l.disbursedTotal().Equal(pool))

	_, err := r.PlayCard(l, id, "0xa", 0)
	assert.Equal(t, KindWrongPhase, KindOf(err))
}

func TestCountUpVariantFinishesAtTarget(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountUp)
	require.NoError(t, r.JoinTeam(l, id, "0xa", TeamRed, EntryStake))
	require.NoError(t, r.JoinTeam(l, id, "0xb", TeamBlue, EntryStake))
	require.NoError(t, r.BeginGame(id))

	v := r.GameState(id)
	assert.Equal(t, int64(0), v.Resource1)
	assert.Equal(t, int64(0), v.Resource2)

	out := playUntilWin(t, r, l, id, "0xa", "0xb")
	v = r.GameState(id)
	assert.Equal(t, "finished", v.Phase)
	if out.Team == TeamRed {
		assert.Equal(t, AnnihilationTarget, v.Resource2)
	} else {
		assert.Equal(t, AnnihilationTarget, v.Resource1)
	}
}

func TestPayoutFailureRollsBackTheWholePlay(t *testing.T) {
	r, l, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})

	// Drive the game to the brink on a working ledger, then make the final
	// play fail its payout.
	for {
		v := r.GameState(id)
		addr := "0xa"
		if v.Turn == "blue" {
			addr = "0xb"
		}
		deck := r.PlayerState(id, addr).Deck
		require.NotEmpty(t, deck)

		opposing := v.Resource2
		if addr == "0xb" {
			opposing = v.Resource1
		}
		if Attack(id, deck[0]) >= opposing {
			before := r.GameState(id)
			failing := &mockLedger{failDisburse: true}
			_, err := r.PlayCard(failing, id, addr, 0)
			assert.Equal(t, KindTransferFailure, KindOf(err))
			assert.Equal(t, before, r.GameState(id), "no partial win without payout")
			assert.Equal(t, deck, r.PlayerState(id, addr).Deck)
			return
		}
		_, err := r.PlayCard(l, id, addr, 0)
		require.NoError(t, err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}

	id := r.CreateGame(ModeCountDown)
	require.NoError(t, r.JoinTeam(l, id, "0xA", TeamRed, EntryStake))
	require.NoError(t, r.JoinTeam(l, id, "0xB", TeamBlue, EntryStake))
	require.NoError(t, r.BeginGame(id))

	v := r.GameState(id)
	require.Equal(t, "active", v.Phase)
	require.Equal(t, "red", v.Turn)

	out, err := r.PlayCard(l, id, "0xA", 0)
	require.NoError(t, err)
	require.Equal(t, StartingHealth-out.Attack, r.GameState(id).Resource2)
	require.Equal(t, "blue", r.GameState(id).Turn)

	win := playUntilWin(t, r, l, id, "0xA", "0xB")

	v = r.GameState(id)
	assert.Equal(t, "finished", v.Phase)
	assert.True(t, v.PrizePool.IsZero())
	require.Len(t, win.Transfers, 1)
	assert.True(t, win.Transfers[0].Amount.Equal(EntryStake.Mul(decimal.NewFromInt(2))),
		"the whole pool goes to the sole member of the winning team")
}
