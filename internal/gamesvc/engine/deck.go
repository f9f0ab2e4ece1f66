package engine

// dealDecks partitions each team's fixed card pool across its members.
// Red owns card ids 1..CardsPerTeam, blue the next CardsPerTeam ids. The
// split is even with the remainder going to the earliest joiners, so the
// allocation is reproducible from join order alone.
func dealDecks(g *Game) {
	dealTeam(g, TeamRed, 1)
	dealTeam(g, TeamBlue, CardsPerTeam+1)
}

func dealTeam(g *Game, t Team, firstID int64) {
	members := g.teamMembers(t)
	if len(members) == 0 {
		return
	}

	base := CardsPerTeam / len(members)
	extra := CardsPerTeam % len(members)

	next := firstID
	for i, addr := range members {
		n := base
		if i < extra {
			n++
		}
		deck := make([]int64, 0, n)
		for j := 0; j < n; j++ {
			deck = append(deck, next)
			next++
		}
		g.players[addr].Deck = deck
	}
}
