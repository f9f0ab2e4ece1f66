package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
)

// Rdb is the global Redis client. Connect it once at service startup.
var Rdb *redis.Client

// viewTTL bounds how stale a cached view can get if the refresh after a
// mutation is ever lost. Reads are best effort; the registry stays the
// source of truth.
const viewTTL = 30 * time.Second

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

func gameKey(gameID int64) string {
	return fmt.Sprintf("battle:game:%d", gameID)
}

// PutGameView refreshes the read replica of one game's view.
func PutGameView(ctx context.Context, v engine.GameView) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal game view: %w", err)
	}
	if err := Rdb.Set(ctx, gameKey(v.ID), data, viewTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache game %d: %w", v.ID, err)
	}
	return nil
}

// GetGameView reads a cached view. The second return is false on a miss;
// callers fall back to the registry.
func GetGameView(ctx context.Context, gameID int64) (engine.GameView, bool) {
	data, err := Rdb.Get(ctx, gameKey(gameID)).Bytes()
	if err != nil {
		return engine.GameView{}, false
	}
	var v engine.GameView
	if err := json.Unmarshal(data, &v); err != nil {
		return engine.GameView{}, false
	}
	return v, true
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
