package engine

import (
	"github.com/shopspring/decimal"
)

// Team identifies one side of the battle, or no side at all.
type Team int8

const (
	TeamNone Team = 0
	TeamRed  Team = 1
	TeamBlue Team = 2
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	}
	return "none"
}

// other returns the opposing team.
func (t Team) other() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	}
	return TeamNone
}

// Phase is the one-directional lifecycle stage of a game.
type Phase int8

const (
	PhaseForming  Phase = 0
	PhaseActive   Phase = 1
	PhaseFinished Phase = 2
	PhaseAborted  Phase = 3
)

func (p Phase) String() string {
	switch p {
	case PhaseForming:
		return "forming"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	case PhaseAborted:
		return "aborted"
	}
	return "unknown"
}

// Winner records the final outcome, set exactly once.
type Winner int8

const (
	WinnerNone    Winner = 0
	WinnerRed     Winner = 1
	WinnerBlue    Winner = 2
	WinnerAborted Winner = 3
)

func (w Winner) String() string {
	switch w {
	case WinnerRed:
		return "red"
	case WinnerBlue:
		return "blue"
	case WinnerAborted:
		return "aborted"
	}
	return "none"
}

// ResourceMode selects which terminal rule ends a game. Exactly one rule
// applies per game, fixed at creation.
type ResourceMode int8

const (
	// ModeCountDown is the default: team health counts down from
	// StartingHealth and the game ends when one side reaches zero.
	ModeCountDown ResourceMode = 0
	// ModeCountUp is the annihilation variant: points count up and the game
	// ends when one side's counter reaches AnnihilationTarget.
	ModeCountUp ResourceMode = 1
)

func (m ResourceMode) String() string {
	if m == ModeCountUp {
		return "annihilation"
	}
	return "health"
}

// Fixed rules of every deployment.
const (
	StartingHealth     int64 = 100
	AnnihilationTarget int64 = 100
	CardsPerTeam             = 20
)

// EntryStake is the exact fee a player pays once when joining a team.
var EntryStake = decimal.RequireFromString("0.0067")

// Player is one joined account within a game. Decks are dealt once at game
// start and only ever shrink, front to back order preserved.
type Player struct {
	Address   string
	Team      Team
	HasJoined bool
	Deck      []int64
}

// Game is the full state of one battle. It is owned by a Registry and never
// handed out mutable; callers get views or clones.
type Game struct {
	ID        int64
	Mode      ResourceMode
	Phase     Phase
	Turn      Team
	Winner    Winner
	Resource1 int64 // red
	Resource2 int64 // blue
	PrizePool decimal.Decimal

	players   map[string]*Player
	joinOrder []string
}

func newGame(id int64, mode ResourceMode) *Game {
	return &Game{
		ID:        id,
		Mode:      mode,
		Phase:     PhaseForming,
		Turn:      TeamNone,
		Winner:    WinnerNone,
		PrizePool: decimal.Zero,
		players:   make(map[string]*Player),
	}
}

func (g *Game) player(addr string) *Player {
	return g.players[addr]
}

// teamMembers returns the addresses of one team in join order.
func (g *Game) teamMembers(t Team) []string {
	var out []string
	for _, addr := range g.joinOrder {
		if g.players[addr].Team == t {
			out = append(out, addr)
		}
	}
	return out
}

func (g *Game) teamCount(t Team) int {
	n := 0
	for _, p := range g.players {
		if p.Team == t {
			n++
		}
	}
	return n
}

func (g *Game) cardsLeft(t Team) int {
	n := 0
	for _, p := range g.players {
		if p.Team == t {
			n += len(p.Deck)
		}
	}
	return n
}

// resourceOf reads the counter belonging to a team.
func (g *Game) resourceOf(t Team) int64 {
	if t == TeamRed {
		return g.Resource1
	}
	return g.Resource2
}

func (g *Game) setResource(t Team, v int64) {
	if t == TeamRed {
		g.Resource1 = v
	} else {
		g.Resource2 = v
	}
}

// clone deep-copies a game so mutations can be staged and swapped in only
// after the ledger and the store both accepted them.
func (g *Game) clone() *Game {
	cg := &Game{
		ID:        g.ID,
		Mode:      g.Mode,
		Phase:     g.Phase,
		Turn:      g.Turn,
		Winner:    g.Winner,
		Resource1: g.Resource1,
		Resource2: g.Resource2,
		PrizePool: g.PrizePool,
		players:   make(map[string]*Player, len(g.players)),
		joinOrder: append([]string(nil), g.joinOrder...),
	}
	for addr, p := range g.players {
		cp := &Player{
			Address:   p.Address,
			Team:      p.Team,
			HasJoined: p.HasJoined,
			Deck:      append([]int64(nil), p.Deck...),
		}
		cg.players[addr] = cp
	}
	return cg
}

// Players returns the joined players in join order, deck copies included.
// Used by the persistence layer to snapshot a game.
func (g *Game) Players() []Player {
	out := make([]Player, 0, len(g.joinOrder))
	for _, addr := range g.joinOrder {
		p := g.players[addr]
		out = append(out, Player{
			Address:   p.Address,
			Team:      p.Team,
			HasJoined: p.HasJoined,
			Deck:      append([]int64(nil), p.Deck...),
		})
	}
	return out
}

// AddPlayer attaches a hydrated player record. Only for rebuilding games
// from the transactional store; join order must match the original.
func (g *Game) AddPlayer(p Player) {
	g.players[p.Address] = &Player{
		Address:   p.Address,
		Team:      p.Team,
		HasJoined: p.HasJoined,
		Deck:      append([]int64(nil), p.Deck...),
	}
	g.joinOrder = append(g.joinOrder, p.Address)
}

// NewGameRecord builds a bare game shell for hydration from persisted state.
func NewGameRecord(id int64, mode ResourceMode, phase Phase, turn Team, winner Winner, res1, res2 int64, pool decimal.Decimal) *Game {
	g := newGame(id, mode)
	g.Phase = phase
	g.Turn = turn
	g.Winner = winner
	g.Resource1 = res1
	g.Resource2 = res2
	g.PrizePool = pool
	return g
}

// GameView is the read-only projection served to callers. The zero value is
// the sentinel for "no such game": callers treat id 0 as invalid.
type GameView struct {
	ID         int64           `json:"game_id"`
	Mode       string          `json:"mode"`
	Phase      string          `json:"phase"`
	Turn       string          `json:"turn"`
	Winner     string          `json:"winner"`
	Resource1  int64           `json:"resource1"`
	Resource2  int64           `json:"resource2"`
	Count1     int             `json:"count1"`
	Count2     int             `json:"count2"`
	CardsLeft1 int             `json:"cards_left1"`
	CardsLeft2 int             `json:"cards_left2"`
	PrizePool  decimal.Decimal `json:"prize_pool"`
}

// PlayerView is the per-account projection; zero value when never joined.
type PlayerView struct {
	Team      string  `json:"team"`
	HasJoined bool    `json:"has_joined"`
	Deck      []int64 `json:"deck"`
}

// CardView pairs a card id with its derived attack value.
type CardView struct {
	ID     int64 `json:"card_id"`
	Attack int64 `json:"attack"`
}

func (g *Game) view() GameView {
	return GameView{
		ID:         g.ID,
		Mode:       g.Mode.String(),
		Phase:      g.Phase.String(),
		Turn:       g.Turn.String(),
		Winner:     g.Winner.String(),
		Resource1:  g.Resource1,
		Resource2:  g.Resource2,
		Count1:     g.teamCount(TeamRed),
		Count2:     g.teamCount(TeamBlue),
		CardsLeft1: g.cardsLeft(TeamRed),
		CardsLeft2: g.cardsLeft(TeamBlue),
		PrizePool:  g.PrizePool,
	}
}
