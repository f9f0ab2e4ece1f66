package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwar/battle-services/internal/gamesvc/models"
)

type GamePlayerStore struct {
	db *pgxpool.Pool
}

func NewGamePlayerStore(db *pgxpool.Pool) *GamePlayerStore {
	return &GamePlayerStore{db: db}
}

func (s *GamePlayerStore) GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	query := `
		SELECT id, game_id, address, team, has_joined, deck, join_seq, created_at, updated_at
		FROM game_players
		WHERE game_id = $1
		ORDER BY join_seq
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// ListPlayers returns every player row ordered by game and join sequence.
// Used once at startup to rebuild the in-memory arena.
func (s *GamePlayerStore) ListPlayers(ctx context.Context) ([]*models.GamePlayer, error) {
	query := `
		SELECT id, game_id, address, team, has_joined, deck, join_seq, created_at, updated_at
		FROM game_players
		ORDER BY game_id, join_seq
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func scanPlayers(rows pgx.Rows) ([]*models.GamePlayer, error) {
	var players []*models.GamePlayer
	for rows.Next() {
		var gp models.GamePlayer
		err := rows.Scan(
			&gp.ID,
			&gp.GameID,
			&gp.Address,
			&gp.Team,
			&gp.HasJoined,
			&gp.Deck,
			&gp.JoinSeq,
			&gp.CreatedAt,
			&gp.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, &gp)
	}
	return players, rows.Err()
}

// UpsertPlayer writes one player row inside the operation's transaction.
// The unique (game_id, address) constraint backs the one-team-per-game rule
// at the storage layer as well; the engine rejects duplicates first, this is
// the substrate's own guarantee.
func (s *GamePlayerStore) UpsertPlayer(ctx context.Context, tx pgx.Tx, gp *models.GamePlayer) error {
	query := `
		INSERT INTO game_players (game_id, address, team, has_joined, deck, join_seq)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT unique_game_address
		DO UPDATE SET deck = EXCLUDED.deck, updated_at = NOW()
	`

	_, err := tx.Exec(ctx, query, gp.GameID, gp.Address, gp.Team, gp.HasJoined, gp.Deck, gp.JoinSeq)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("invalid reference: %s", pgErr.Message)
		}
		return fmt.Errorf("failed to upsert player %s in game %d: %w", gp.Address, gp.GameID, err)
	}

	return nil
}
