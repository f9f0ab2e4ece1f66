package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLedger records money movement instead of touching a real store, and
// can be told to fail to exercise the transfer-failure rollback contract.
type mockLedger struct {
	mu           sync.Mutex
	collected    []Transfer
	disbursed    []Transfer
	failCollect  bool
	failDisburse bool
}

func (m *mockLedger) Collect(address string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCollect {
		return errors.New("ledger down")
	}
	m.collected = append(m.collected, Transfer{Address: address, Amount: amount})
	return nil
}

func (m *mockLedger) Disburse(transfers []Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDisburse {
		return errors.New("ledger down")
	}
	m.disbursed = append(m.disbursed, transfers...)
	return nil
}

func (m *mockLedger) disbursedTotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, t := range m.disbursed {
		total = total.Add(t.Amount)
	}
	return total
}

func setupActiveGame(t *testing.T, reds, blues []string) (*Registry, *mockLedger, int64) {
	t.Helper()
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountDown)
	for _, addr := range reds {
		require.NoError(t, r.JoinTeam(l, id, addr, TeamRed, EntryStake))
	}
	for _, addr := range blues {
		require.NoError(t, r.JoinTeam(l, id, addr, TeamBlue, EntryStake))
	}
	require.NoError(t, r.BeginGame(id))
	return r, l, id
}

func TestCreateGameIDsMonotonic(t *testing.T) {
	r := NewRegistry()
	first := r.CreateGame(ModeCountDown)
	second := r.CreateGame(ModeCountUp)
	assert.Equal(t, first+1, second)

	v := r.GameState(first)
	assert.Equal(t, first, v.ID)
	assert.Equal(t, "forming", v.Phase)
	assert.Equal(t, "none", v.Turn)
	assert.True(t, v.PrizePool.IsZero())
}

func TestGameStateSentinelForUnknownID(t *testing.T) {
	r := NewRegistry()
	v := r.GameState(99)
	assert.Equal(t, GameView{}, v)
	assert.Equal(t, int64(0), v.ID)

	p := r.PlayerState(99, "0xabc")
	assert.False(t, p.HasJoined)
	assert.Empty(t, p.Deck)
}

func TestGameStateReadIdempotent(t *testing.T) {
	r, _, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})
	assert.Equal(t, r.GameState(id), r.GameState(id))
}

func TestJoinTeamCollectsStakeIntoPool(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountDown)

	require.NoError(t, r.JoinTeam(l, id, "0xa", TeamRed, EntryStake))
	require.NoError(t, r.JoinTeam(l, id, "0xb", TeamBlue, EntryStake))

	v := r.GameState(id)
	assert.Equal(t, 1, v.Count1)
	assert.Equal(t, 1, v.Count2)
	assert.True(t, v.PrizePool.Equal(EntryStake.Mul(decimal.NewFromInt(2))))
	require.Len(t, l.collected, 2)

	p := r.PlayerState(id, "0xa")
	assert.True(t, p.HasJoined)
	assert.Equal(t, "red", p.Team)
	assert.Empty(t, p.Deck, "decks are dealt at begin, not join")
}

func TestJoinTeamRejections(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountDown)

	err := r.JoinTeam(l, 42, "0xa", TeamRed, EntryStake)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = r.JoinTeam(l, id, "0xa", TeamNone, EntryStake)
	assert.Equal(t, KindInvalidTeam, KindOf(err))

	err = r.JoinTeam(l, id, "0xa", TeamRed, EntryStake.Add(decimal.New(1, -4)))
	assert.Equal(t, KindInvalidStake, KindOf(err))

	require.NoError(t, r.JoinTeam(l, id, "0xa", TeamRed, EntryStake))
	err = r.JoinTeam(l, id, "0xa", TeamBlue, EntryStake)
	assert.Equal(t, KindAlreadyJoined, KindOf(err))

	require.NoError(t, r.JoinTeam(l, id, "0xb", TeamBlue, EntryStake))
	require.NoError(t, r.BeginGame(id))
	err = r.JoinTeam(l, id, "0xc", TeamRed, EntryStake)
	assert.Equal(t, KindWrongPhase, KindOf(err))
}

func TestJoinTeamTransferFailureLeavesStateUnchanged(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{failCollect: true}
	id := r.CreateGame(ModeCountDown)

	err := r.JoinTeam(l, id, "0xa", TeamRed, EntryStake)
	assert.Equal(t, KindTransferFailure, KindOf(err))

	v := r.GameState(id)
	assert.Equal(t, 0, v.Count1)
	assert.True(t, v.PrizePool.IsZero())
	assert.False(t, r.PlayerState(id, "0xa").HasJoined)
}

func TestBeginGameRequiresBothTeams(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountDown)

	require.NoError(t, r.JoinTeam(l, id, "0xa", TeamRed, EntryStake))
	require.NoError(t, r.JoinTeam(l, id, "0xb", TeamRed, EntryStake))

	err := r.BeginGame(id)
	assert.Equal(t, KindNotEnoughPlayers, KindOf(err))
	assert.Equal(t, "forming", r.GameState(id).Phase)
}

func TestBeginGameActivates(t *testing.T) {
	r, _, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})

	v := r.GameState(id)
	assert.Equal(t, "active", v.Phase)
	assert.Equal(t, "red", v.Turn)
	assert.Equal(t, StartingHealth, v.Resource1)
	assert.Equal(t, StartingHealth, v.Resource2)
	assert.Equal(t, CardsPerTeam, v.CardsLeft1)
	assert.Equal(t, CardsPerTeam, v.CardsLeft2)
	assert.NotEmpty(t, r.PlayerState(id, "0xa").Deck)
	assert.NotEmpty(t, r.PlayerState(id, "0xb").Deck)

	err := r.BeginGame(id)
	assert.Equal(t, KindWrongPhase, KindOf(err), "begin is not idempotent, the guard fires")
}

func TestAbortRefundsEveryStake(t *testing.T) {
	r := NewRegistry()
	l := &mockLedger{}
	id := r.CreateGame(ModeCountDown)
	require.NoError(t, r.JoinTeam(l, id, "0xa", TeamRed, EntryStake))
	require.NoError(t, r.JoinTeam(l, id, "0xb", TeamBlue, EntryStake))

	_, err := r.AbortGame(l, id, "0xstranger")
	assert.Equal(t, KindNotJoined, KindOf(err))

	// any joined player may abort, regardless of team
	refunds, err := r.AbortGame(l, id, "0xb")
	require.NoError(t, err)
	assert.Len(t, refunds, 2)

	v := r.GameState(id)
	assert.Equal(t, "aborted", v.Phase)
	assert.Equal(t, "aborted", v.Winner)
	assert.Equal(t, "none", v.Turn)
	assert.True(t, v.PrizePool.IsZero())

	require.Len(t, l.disbursed, 2)
	for _, tr := range l.disbursed {
		assert.True(t, tr.Amount.Equal(EntryStake))
	}

	_, err = r.AbortGame(l, id, "0xa")
	assert.Equal(t, KindWrongPhase, KindOf(err))
}

func TestAbortTransferFailureLeavesStateUnchanged(t *testing.T) {
	r, _, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})

	failing := &mockLedger{failDisburse: true}
	_, err := r.AbortGame(failing, id, "0xa")
	assert.Equal(t, KindTransferFailure, KindOf(err))

	v := r.GameState(id)
	assert.Equal(t, "active", v.Phase)
	assert.False(t, v.PrizePool.IsZero())
}

func TestCloneRestoreRoundTrip(t *testing.T) {
	r, l, id := setupActiveGame(t, []string{"0xa"}, []string{"0xb"})

	prev := r.CloneGame(id)
	require.NotNil(t, prev)
	before := r.GameState(id)

	_, err := r.PlayCard(l, id, "0xa", 0)
	require.NoError(t, err)
	assert.NotEqual(t, before, r.GameState(id))

	r.RestoreGame(prev)
	assert.Equal(t, before, r.GameState(id))
}

func TestAdoptGameAdvancesIDSequence(t *testing.T) {
	r := NewRegistry()
	g := NewGameRecord(7, ModeCountDown, PhaseForming, TeamNone, WinnerNone, 0, 0, decimal.Zero)
	g.AddPlayer(Player{Address: "0xa", Team: TeamRed, HasJoined: true})
	r.AdoptGame(g)

	assert.Equal(t, int64(7), r.GameState(7).ID)
	assert.True(t, r.PlayerState(7, "0xa").HasJoined)
	assert.Equal(t, int64(8), r.CreateGame(ModeCountDown))
}
