package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game is the persisted snapshot of one battle, one row per game id.
type Game struct {
	ID         int64           `json:"id"`
	Mode       int16           `json:"mode"`   // 0 health count-down, 1 annihilation count-up
	Phase      int16           `json:"phase"`  // 0 forming, 1 active, 2 finished, 3 aborted
	Turn       int16           `json:"turn"`   // 0 none, 1 red, 2 blue
	Winner     int16           `json:"winner"` // 0 none, 1 red, 2 blue, 3 aborted
	Resource1  int64           `json:"resource1"`
	Resource2  int64           `json:"resource2"`
	Count1     int32           `json:"count1"`
	Count2     int32           `json:"count2"`
	CardsLeft1 int32           `json:"cards_left1"`
	CardsLeft2 int32           `json:"cards_left2"`
	PrizePool  decimal.Decimal `json:"prize_pool"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
