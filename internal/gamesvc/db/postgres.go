package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

// Connect initializes the connection pool
func Connect() (*pgxpool.Pool, error) {
	dsn := os.Getenv("POSTGRES_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	// Try pinging to make sure it's valid
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	DB = pool

	return pool, nil
}

// ClosePool is for graceful shutdown
func ClosePool() {
	if DB != nil {
		DB.Close()
	}
}

// Migrate brings up the ledger substrate tables. Game ids come from the
// registry, not a sequence, so the games table carries no serial column.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id          BIGINT PRIMARY KEY,
			mode        SMALLINT NOT NULL DEFAULT 0,
			phase       SMALLINT NOT NULL DEFAULT 0,
			turn        SMALLINT NOT NULL DEFAULT 0,
			winner      SMALLINT NOT NULL DEFAULT 0,
			resource1   BIGINT NOT NULL DEFAULT 0,
			resource2   BIGINT NOT NULL DEFAULT 0,
			count1      INT NOT NULL DEFAULT 0,
			count2      INT NOT NULL DEFAULT 0,
			cards_left1 INT NOT NULL DEFAULT 0,
			cards_left2 INT NOT NULL DEFAULT 0,
			prize_pool  NUMERIC(20,8) NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS game_players (
			id         BIGSERIAL PRIMARY KEY,
			game_id    BIGINT NOT NULL REFERENCES games(id),
			address    TEXT NOT NULL,
			team       SMALLINT NOT NULL,
			has_joined BOOLEAN NOT NULL DEFAULT FALSE,
			deck       BIGINT[] NOT NULL DEFAULT '{}',
			join_seq   INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT unique_game_address UNIQUE (game_id, address)
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			id         BIGSERIAL PRIMARY KEY,
			address    TEXT NOT NULL,
			ttype      TEXT NOT NULL,
			dr         NUMERIC(20,8) NOT NULL DEFAULT 0,
			cr         NUMERIC(20,8) NOT NULL DEFAULT 0,
			tref       TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'completed',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balances_address ON balances(address)`,
	}

	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
