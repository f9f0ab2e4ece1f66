package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckAllocationIsDeterministic(t *testing.T) {
	build := func() *Registry {
		r, _, _ := setupActiveGame(t, []string{"0xr1", "0xr2", "0xr3"}, []string{"0xb1", "0xb2"})
		return r
	}

	a := build()
	b := build()

	for _, addr := range []string{"0xr1", "0xr2", "0xr3", "0xb1", "0xb2"} {
		assert.Equal(t, a.PlayerState(1, addr).Deck, b.PlayerState(1, addr).Deck, addr)
	}
}

func TestDeckAllocationRemainderGoesToEarliestJoiners(t *testing.T) {
	// 20 cards over 3 red players: 7, 7, 6 in join order.
	r, _, id := setupActiveGame(t, []string{"0xr1", "0xr2", "0xr3"}, []string{"0xb1"})

	d1 := r.PlayerState(id, "0xr1").Deck
	d2 := r.PlayerState(id, "0xr2").Deck
	d3 := r.PlayerState(id, "0xr3").Deck

	assert.Len(t, d1, 7)
	assert.Len(t, d2, 7)
	assert.Len(t, d3, 6)

	// The team pool is partitioned, contiguous ids, nothing shared or lost.
	all := append(append(append([]int64(nil), d1...), d2...), d3...)
	require.Len(t, all, CardsPerTeam)
	seen := make(map[int64]bool)
	for _, cid := range all {
		assert.GreaterOrEqual(t, cid, int64(1))
		assert.LessOrEqual(t, cid, int64(CardsPerTeam))
		assert.False(t, seen[cid], "card dealt twice")
		seen[cid] = true
	}

	// Blue's single player holds the entire blue pool.
	db := r.PlayerState(id, "0xb1").Deck
	require.Len(t, db, CardsPerTeam)
	assert.Equal(t, int64(CardsPerTeam+1), db[0])
	assert.Equal(t, int64(2*CardsPerTeam), db[len(db)-1])
}

func TestCatalogAttackDeterministicAndBounded(t *testing.T) {
	for cardID := int64(1); cardID <= 2*CardsPerTeam; cardID++ {
		a := Attack(7, cardID)
		assert.Equal(t, a, Attack(7, cardID))
		assert.GreaterOrEqual(t, a, MinAttack)
		assert.LessOrEqual(t, a, MaxAttack)
	}
	// Same card id in different games yields an independent value stream.
	diff := false
	for cardID := int64(1); cardID <= 2*CardsPerTeam; cardID++ {
		if Attack(7, cardID) != Attack(8, cardID) {
			diff = true
			break
		}
	}
	assert.True(t, diff)
}

func TestCardViewSentinel(t *testing.T) {
	r := NewRegistry()
	id := r.CreateGame(ModeCountDown)

	assert.Equal(t, CardView{}, r.Card(id, 0))
	assert.Equal(t, CardView{}, r.Card(id, 2*CardsPerTeam+1))
	assert.Equal(t, CardView{}, r.Card(id+1, 1))

	c := r.Card(id, 1)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, Attack(id, 1), c.Attack)
}
