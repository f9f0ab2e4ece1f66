package models

import "time"

// GamePlayer is one joined account within a game. The deck is the ordered
// list of card ids the player still holds; join_seq preserves join order so
// deck allocation stays reproducible after a restart.
type GamePlayer struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	Address   string    `json:"address"`
	Team      int16     `json:"team"` // 1 red, 2 blue
	HasJoined bool      `json:"has_joined"`
	Deck      []int64   `json:"deck"`
	JoinSeq   int32     `json:"join_seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
