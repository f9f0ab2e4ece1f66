package engine

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Transfer is one movement of pooled funds to an account.
type Transfer struct {
	Address string
	Amount  decimal.Decimal
}

// Ledger is the external substrate that holds and moves stakes. Collect and
// Disburse must be all-or-nothing across the whole call: the engine applies
// no state mutation when either returns an error.
type Ledger interface {
	// Collect takes the entry stake from an account into the pool.
	Collect(address string, amount decimal.Decimal) error
	// Disburse pays the given transfers out of the pool.
	Disburse(transfers []Transfer) error
}

// Registry owns the arena of game records. All mutation is routed through
// operations that take a game id; games are never exposed mutable. Mutating
// operations stage their changes on a clone and swap it in only once the
// ledger accepted the money movement, so readers always observe a fully
// formed game.
//
// The registry does not serialize operations on one game; the caller must
// (the game service holds a per-game lock around each operation).
type Registry struct {
	mu     sync.RWMutex
	games  map[int64]*Game
	nextID int64
}

func NewRegistry() *Registry {
	return &Registry{
		games:  make(map[int64]*Game),
		nextID: 1,
	}
}

// CreateGame allocates the next unused id and registers a Forming game.
func (r *Registry) CreateGame(mode ResourceMode) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.games[id] = newGame(id, mode)
	return id
}

func (r *Registry) game(id int64) *Game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[id]
}

func (r *Registry) swap(g *Game) {
	r.mu.Lock()
	r.games[g.ID] = g
	r.mu.Unlock()
}

// GameState returns the read-only projection of a game, or the all-zero
// sentinel view when the id was never created.
func (r *Registry) GameState(id int64) GameView {
	g := r.game(id)
	if g == nil {
		return GameView{}
	}
	return g.view()
}

// PlayerState returns the per-account projection, zero when never joined.
func (r *Registry) PlayerState(id int64, address string) PlayerView {
	g := r.game(id)
	if g == nil {
		return PlayerView{}
	}
	p := g.player(address)
	if p == nil {
		return PlayerView{}
	}
	return PlayerView{
		Team:      p.Team.String(),
		HasJoined: p.HasJoined,
		Deck:      append([]int64(nil), p.Deck...),
	}
}

// Card resolves a card id within a game to its derived attack value. The
// zero view signals an unknown game or an id outside the per-game card space.
func (r *Registry) Card(id, cardID int64) CardView {
	if r.game(id) == nil || !validCardID(cardID) {
		return CardView{}
	}
	return CardView{ID: cardID, Attack: Attack(id, cardID)}
}

// CloneGame deep-copies a game record, nil when absent. Paired with
// RestoreGame it lets the service roll the arena back when the transactional
// store rejects a snapshot after an operation already succeeded in memory.
func (r *Registry) CloneGame(id int64) *Game {
	g := r.game(id)
	if g == nil {
		return nil
	}
	return g.clone()
}

// RestoreGame puts a previously cloned record back.
func (r *Registry) RestoreGame(g *Game) {
	if g == nil {
		return
	}
	r.swap(g)
}

// DeleteGame withdraws a record from the arena. Only used to undo a
// CreateGame whose persistence failed; ids are never reused either way.
func (r *Registry) DeleteGame(id int64) {
	r.mu.Lock()
	delete(r.games, id)
	r.mu.Unlock()
}

// AdoptGame registers a game rebuilt from persisted state and advances the
// id sequence past it.
func (r *Registry) AdoptGame(g *Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.ID] = g
	if g.ID >= r.nextID {
		r.nextID = g.ID + 1
	}
}
