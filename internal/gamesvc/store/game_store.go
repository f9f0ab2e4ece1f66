package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwar/battle-services/internal/gamesvc/models"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

// InsertGame persists a freshly created game with its registry-assigned id.
func (s *GameStore) InsertGame(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	query := `
		INSERT INTO games (id, mode, phase, turn, winner, resource1, resource2,
			count1, count2, cards_left1, cards_left2, prize_pool)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		g.ID, g.Mode, g.Phase, g.Turn, g.Winner,
		g.Resource1, g.Resource2, g.Count1, g.Count2,
		g.CardsLeft1, g.CardsLeft2, g.PrizePool,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game %d: %w", g.ID, err)
	}

	return nil
}

// UpdateGame overwrites the snapshot row of a game inside the operation's
// transaction.
func (s *GameStore) UpdateGame(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	query := `
		UPDATE games
		SET mode = $2, phase = $3, turn = $4, winner = $5,
			resource1 = $6, resource2 = $7, count1 = $8, count2 = $9,
			cards_left1 = $10, cards_left2 = $11, prize_pool = $12,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		g.ID, g.Mode, g.Phase, g.Turn, g.Winner,
		g.Resource1, g.Resource2, g.Count1, g.Count2,
		g.CardsLeft1, g.CardsLeft2, g.PrizePool,
	)
	if err != nil {
		return fmt.Errorf("failed to update game %d: %w", g.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %d has no snapshot row", g.ID)
	}

	return nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		SELECT id, mode, phase, turn, winner, resource1, resource2,
			count1, count2, cards_left1, cards_left2, prize_pool, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	game := &models.Game{}
	err := s.db.QueryRow(ctx, query, gameID).Scan(
		&game.ID, &game.Mode, &game.Phase, &game.Turn, &game.Winner,
		&game.Resource1, &game.Resource2, &game.Count1, &game.Count2,
		&game.CardsLeft1, &game.CardsLeft2, &game.PrizePool,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return game, nil
}

// ListGames returns every snapshot row, oldest first. Used once at startup
// to rebuild the in-memory arena.
func (s *GameStore) ListGames(ctx context.Context) ([]*models.Game, error) {
	query := `
		SELECT id, mode, phase, turn, winner, resource1, resource2,
			count1, count2, cards_left1, cards_left2, prize_pool, created_at, updated_at
		FROM games
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		err := rows.Scan(
			&g.ID, &g.Mode, &g.Phase, &g.Turn, &g.Winner,
			&g.Resource1, &g.Resource2, &g.Count1, &g.Count2,
			&g.CardsLeft1, &g.CardsLeft2, &g.PrizePool,
			&g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	return games, rows.Err()
}
