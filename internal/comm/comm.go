package comm

import (
	"encoding/json"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
)

// WSMessage is the JSON envelope that travels between web clients, the
// socket service and the game service. SocketId routes responses back to
// the originating connection; push notifications leave it empty.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "join-team", "game-state"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// PlayerData answers init and balance requests.
type PlayerData struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// GameData carries a game view plus, when the request came from a joined
// player, their own projection.
type GameData struct {
	Game   engine.GameView    `json:"game"`
	Player *engine.PlayerView `json:"player,omitempty"`
}

// GameNotice is the creation notification: the newly assigned id and the
// initial view, observable by the caller that submitted the create.
type GameNotice struct {
	GameID int64           `json:"game_id"`
	Game   engine.GameView `json:"game"`
}

// PlayNotice is pushed after every resolved card play.
type PlayNotice struct {
	GameID int64           `json:"game_id"`
	Team   string          `json:"team"`
	CardID int64           `json:"card_id"`
	Attack int64           `json:"attack"`
	Won    bool            `json:"won"`
	Game   engine.GameView `json:"game"`
}

// Res is a minimal status reply.
type Res struct {
	Status bool   `json:"status"`
	Error  string `json:"error,omitempty"`
}
