package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/teamwar/battle-services/internal/comm"
	"github.com/teamwar/battle-services/internal/gamesvc/archive"
	"github.com/teamwar/battle-services/internal/gamesvc/cache"
	"github.com/teamwar/battle-services/internal/gamesvc/engine"
	"github.com/teamwar/battle-services/internal/gamesvc/models"
	"github.com/teamwar/battle-services/internal/gamesvc/store"
)

// GameService owns the in-memory game registry and keeps it consistent
// with the transactional ledger: every mutating operation runs against the
// engine with a transaction-bound ledger, and the game snapshot, player
// rows and balance rows commit together. A failed commit restores the
// pre-operation game record, so memory never diverges from the substrate.
type GameService struct {
	pool     *pgxpool.Pool
	reg      *engine.Registry
	games    *store.GameStore
	players  *store.GamePlayerStore
	balances *store.BalanceStore
	arch     *archive.Archive

	locks sync.Map // gameID -> *sync.Mutex, serializes ops per game

	// OnEvent receives state-change notifications (game-created,
	// game-state, game-over) for the broker to publish. Optional.
	OnEvent func(eventType string, data interface{})
}

func NewGameService(pool *pgxpool.Pool, games *store.GameStore,
	players *store.GamePlayerStore, balances *store.BalanceStore,
	arch *archive.Archive) *GameService {
	return &GameService{
		pool:     pool,
		reg:      engine.NewRegistry(),
		games:    games,
		players:  players,
		balances: balances,
		arch:     arch,
	}
}

// Hydrate rebuilds the registry arena from the persisted snapshots. Players
// come back in join_seq order so deck allocation stays reproducible.
func (s *GameService) Hydrate(ctx context.Context) error {
	rows, err := s.games.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to load game snapshots: %w", err)
	}
	playerRows, err := s.players.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load player rows: %w", err)
	}

	byGame := make(map[int64][]*models.GamePlayer)
	for _, p := range playerRows {
		byGame[p.GameID] = append(byGame[p.GameID], p)
	}

	for _, row := range rows {
		g := engine.NewGameRecord(row.ID,
			engine.ResourceMode(row.Mode),
			engine.Phase(row.Phase),
			engine.Team(row.Turn),
			engine.Winner(row.Winner),
			row.Resource1, row.Resource2, row.PrizePool)
		for _, p := range byGame[row.ID] {
			g.AddPlayer(engine.Player{
				Address:   p.Address,
				Team:      engine.Team(p.Team),
				HasJoined: p.HasJoined,
				Deck:      p.Deck,
			})
		}
		s.reg.AdoptGame(g)
	}

	log.Infof("registry hydrated with %d games", len(rows))
	return nil
}

// ParseTeam maps the wire team name onto the engine type. Unknown names
// come back as TeamNone, which the engine rejects as an invalid team.
func ParseTeam(name string) engine.Team {
	switch name {
	case "red":
		return engine.TeamRed
	case "blue":
		return engine.TeamBlue
	}
	return engine.TeamNone
}

// ParseMode maps the wire variant name onto a resource mode; health
// count-down is the default.
func ParseMode(name string) engine.ResourceMode {
	if name == "annihilation" {
		return engine.ModeCountUp
	}
	return engine.ModeCountDown
}

// CreateGame allocates the next game id, persists the forming snapshot and
// emits the creation notification carrying the new id.
func (s *GameService) CreateGame(ctx context.Context, mode string) (engine.GameView, error) {
	id := s.reg.CreateGame(ParseMode(mode))

	err := func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := s.games.InsertGame(ctx, tx, s.gameRow(id)); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}()
	if err != nil {
		// ids are never reused, the hole stays
		s.reg.DeleteGame(id)
		return engine.GameView{}, fmt.Errorf("failed to persist game %d: %w", id, err)
	}

	v := s.reg.GameState(id)
	s.refreshView(ctx, id)
	s.emit("game-created", comm.GameNotice{GameID: id, Game: v})

	log.Infof("game %d created (mode %s)", id, v.Mode)
	return v, nil
}

// JoinTeam stakes the caller onto a team. The stake row and the snapshot
// commit in one transaction.
func (s *GameService) JoinTeam(ctx context.Context, gameID int64, address, team string, stake decimal.Decimal) error {
	err := s.mutate(ctx, gameID, "stake", func(l engine.Ledger) error {
		return s.reg.JoinTeam(l, gameID, address, ParseTeam(team), stake)
	})
	if err != nil {
		return err
	}

	s.emit("game-state", comm.GameNotice{GameID: gameID, Game: s.reg.GameState(gameID)})
	return nil
}

// BeginGame flips a forming game to active once both teams have members.
func (s *GameService) BeginGame(ctx context.Context, gameID int64) error {
	err := s.mutate(ctx, gameID, "", func(engine.Ledger) error {
		return s.reg.BeginGame(gameID)
	})
	if err != nil {
		return err
	}

	s.emit("game-state", comm.GameNotice{GameID: gameID, Game: s.reg.GameState(gameID)})
	log.Infof("game %d is active", gameID)
	return nil
}

// PlayCard resolves one turn. On a win the payout rows commit with the
// snapshot; a ledger failure fails the whole play with nothing recorded.
func (s *GameService) PlayCard(ctx context.Context, gameID int64, address string, cardIndex int) (engine.PlayOutcome, error) {
	var out engine.PlayOutcome
	err := s.mutate(ctx, gameID, "payout", func(l engine.Ledger) error {
		var opErr error
		out, opErr = s.reg.PlayCard(l, gameID, address, cardIndex)
		return opErr
	})
	if err != nil {
		return engine.PlayOutcome{}, err
	}

	v := s.reg.GameState(gameID)
	s.emit("game-state", comm.PlayNotice{
		GameID: gameID,
		Team:   out.Team.String(),
		CardID: out.CardID,
		Attack: out.Attack,
		Won:    out.Won,
		Game:   v,
	})

	if out.Won {
		s.recordSettlement(ctx, gameID, "payout", v.Winner, out.Transfers)
		s.emit("game-over", comm.GameNotice{GameID: gameID, Game: v})
		log.Infof("game %d finished, team %s takes the pool", gameID, v.Winner)
	}

	return out, nil
}

// AbortGame destroys a forming or active game and refunds every stake.
func (s *GameService) AbortGame(ctx context.Context, gameID int64, address string) error {
	var refunds []engine.Transfer
	err := s.mutate(ctx, gameID, "refund", func(l engine.Ledger) error {
		var opErr error
		refunds, opErr = s.reg.AbortGame(l, gameID, address)
		return opErr
	})
	if err != nil {
		return err
	}

	v := s.reg.GameState(gameID)
	s.recordSettlement(ctx, gameID, "refund", v.Winner, refunds)
	s.emit("game-over", comm.GameNotice{GameID: gameID, Game: v})
	log.Infof("game %d aborted by %s, %d stakes refunded", gameID, address, len(refunds))
	return nil
}

// GameState serves the authoritative view; the all-zero sentinel signals an
// unknown id. Reads never fail.
func (s *GameService) GameState(gameID int64) engine.GameView {
	return s.reg.GameState(gameID)
}

// CachedGameState serves the read-replica view when one is fresh, falling
// back to the registry. Staleness is bounded and harmless per the polling
// contract.
func (s *GameService) CachedGameState(ctx context.Context, gameID int64) engine.GameView {
	if cache.Rdb != nil {
		if v, ok := cache.GetGameView(ctx, gameID); ok {
			return v
		}
	}
	return s.reg.GameState(gameID)
}

func (s *GameService) PlayerState(gameID int64, address string) engine.PlayerView {
	return s.reg.PlayerState(gameID, address)
}

func (s *GameService) Card(gameID, cardID int64) engine.CardView {
	return s.reg.Card(gameID, cardID)
}

func (s *GameService) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	return s.balances.GetBalanceByAddress(ctx, address)
}

// Settlement reads the archived payout/refund breakdown of a settled game.
func (s *GameService) Settlement(ctx context.Context, gameID int64) (*archive.Settlement, error) {
	if s.arch == nil {
		return nil, nil
	}
	return s.arch.GetSettlement(ctx, gameID)
}

// mutate wraps one engine operation in a pg transaction: a tx-bound ledger
// feeds the engine, the post-operation snapshot persists in the same tx,
// and a failure on either side leaves both the substrate and the registry
// exactly as they were.
func (s *GameService) mutate(ctx context.Context, gameID int64, ttype string, op func(engine.Ledger) error) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	prev := s.reg.CloneGame(gameID)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open ledger transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	l := &txLedger{
		ctx:      ctx,
		tx:       tx,
		balances: s.balances,
		tref:     fmt.Sprintf("game:%d", gameID),
		ttype:    ttype,
	}

	if err := op(l); err != nil {
		return err
	}

	if err := s.persistGame(ctx, tx, gameID); err != nil {
		s.reg.RestoreGame(prev)
		return fmt.Errorf("failed to persist game %d: %w", gameID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		s.reg.RestoreGame(prev)
		return fmt.Errorf("failed to commit game %d: %w", gameID, err)
	}

	s.refreshView(ctx, gameID)
	return nil
}

func (s *GameService) gameLock(gameID int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(gameID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// persistGame writes the current snapshot and player rows of a game.
func (s *GameService) persistGame(ctx context.Context, tx pgx.Tx, gameID int64) error {
	if err := s.games.UpdateGame(ctx, tx, s.gameRow(gameID)); err != nil {
		return err
	}

	g := s.reg.CloneGame(gameID)
	for i, p := range g.Players() {
		row := &models.GamePlayer{
			GameID:    gameID,
			Address:   p.Address,
			Team:      int16(p.Team),
			HasJoined: p.HasJoined,
			Deck:      p.Deck,
			JoinSeq:   int32(i),
		}
		if err := s.players.UpsertPlayer(ctx, tx, row); err != nil {
			return err
		}
	}
	return nil
}

// gameRow projects the engine record onto the snapshot row model.
func (s *GameService) gameRow(gameID int64) *models.Game {
	g := s.reg.CloneGame(gameID)
	row := &models.Game{
		ID:        g.ID,
		Mode:      int16(g.Mode),
		Phase:     int16(g.Phase),
		Turn:      int16(g.Turn),
		Winner:    int16(g.Winner),
		Resource1: g.Resource1,
		Resource2: g.Resource2,
		PrizePool: g.PrizePool,
	}
	for _, p := range g.Players() {
		if p.Team == engine.TeamRed {
			row.Count1++
			row.CardsLeft1 += int32(len(p.Deck))
		} else {
			row.Count2++
			row.CardsLeft2 += int32(len(p.Deck))
		}
	}
	return row
}

func (s *GameService) refreshView(ctx context.Context, gameID int64) {
	if cache.Rdb == nil {
		return
	}
	if err := cache.PutGameView(ctx, s.reg.GameState(gameID)); err != nil {
		log.Warnf("unable to refresh cached view for game %d: %v", gameID, err)
	}
}

func (s *GameService) recordSettlement(ctx context.Context, gameID int64, kind, winner string, transfers []engine.Transfer) {
	if s.arch == nil {
		return
	}
	pool := decimal.Zero
	for _, t := range transfers {
		pool = pool.Add(t.Amount)
	}
	if err := s.arch.RecordSettlement(ctx, gameID, kind, winner, pool.String(), transfers); err != nil {
		log.Errorf("unable to archive settlement for game %d: %v", gameID, err)
	}
}

func (s *GameService) emit(eventType string, data interface{}) {
	if s.OnEvent != nil {
		s.OnEvent(eventType, data)
	}
}
