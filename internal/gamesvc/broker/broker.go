package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/teamwar/battle-services/internal/comm"
	"github.com/teamwar/battle-services/internal/gamesvc/service"
)

type Broker struct {
	Conn        *nats.Conn
	GameService *service.GameService
}

func NewBroker(nc *nats.Conn, gameService *service.GameService) *Broker {
	b := &Broker{
		Conn:        nc,
		GameService: gameService,
	}

	// state-change events fan out to every connected socket
	gameService.OnEvent = b.PublishGameEvent

	return b
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "init":
		var request struct {
			Address string `json:"address"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		balance, err := b.GameService.Balance(ctx, request.Address)
		if err != nil {
			log.Errorf("Error [GameService.Balance] %s", err)
			balance = decimal.Zero
		}

		playerData := comm.PlayerData{
			Address: request.Address,
			Balance: balance.StringFixed(4),
		}
		b.publishTyped("init-resp", playerData, msg.SocketId)

	case "get-balance":
		var request struct {
			Address string `json:"address"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		balance, err := b.GameService.Balance(ctx, request.Address)
		if err != nil {
			log.Errorf("Error getBalance %s", err)
			break
		}

		playerData := comm.PlayerData{
			Address: request.Address,
			Balance: balance.StringFixed(4),
		}
		b.publishTyped("balance-resp", playerData, msg.SocketId)

	case "get-game-state":
		var request struct {
			GameID int64 `json:"game_id"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		v := b.GameService.CachedGameState(ctx, request.GameID)
		b.publishTyped("game-state-resp", comm.GameNotice{GameID: request.GameID, Game: v}, msg.SocketId)

	case "get-player":
		var request struct {
			GameID  int64  `json:"game_id"`
			Address string `json:"address"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		p := b.GameService.PlayerState(request.GameID, request.Address)
		v := b.GameService.GameState(request.GameID)
		b.publishTyped("player-resp", comm.GameData{Game: v, Player: &p}, msg.SocketId)

	case "create-game":
		var request struct {
			Mode string `json:"mode"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		v, err := b.GameService.CreateGame(ctx, request.Mode)
		if err != nil {
			log.Errorf("Error [GameService.CreateGame] %s", err)
			b.publishTyped("create-game-resp", comm.Res{Status: false, Error: err.Error()}, msg.SocketId)
			break
		}
		b.publishTyped("create-game-resp", comm.GameNotice{GameID: v.ID, Game: v}, msg.SocketId)

	case "join-team":
		var request struct {
			GameID  int64  `json:"game_id"`
			Address string `json:"address"`
			Team    string `json:"team"`
			Stake   string `json:"stake"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		stake, err := decimal.NewFromString(request.Stake)
		if err != nil {
			b.publishTyped("join-team-resp", comm.Res{Status: false, Error: "invalid stake amount"}, msg.SocketId)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := b.GameService.JoinTeam(ctx, request.GameID, request.Address, request.Team, stake); err != nil {
			log.Errorf("Error [GameService.JoinTeam] %s", err)
			b.publishTyped("join-team-resp", comm.Res{Status: false, Error: err.Error()}, msg.SocketId)
			break
		}

		v := b.GameService.GameState(request.GameID)
		b.publishTyped("join-team-resp", comm.GameNotice{GameID: request.GameID, Game: v}, msg.SocketId)

	case "begin-game":
		var request struct {
			GameID int64 `json:"game_id"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := b.GameService.BeginGame(ctx, request.GameID); err != nil {
			log.Errorf("Error [GameService.BeginGame] %s", err)
			b.publishTyped("begin-game-resp", comm.Res{Status: false, Error: err.Error()}, msg.SocketId)
			break
		}

		v := b.GameService.GameState(request.GameID)
		b.publishTyped("begin-game-resp", comm.GameNotice{GameID: request.GameID, Game: v}, msg.SocketId)

	case "play-card":
		var request struct {
			GameID    int64  `json:"game_id"`
			Address   string `json:"address"`
			CardIndex int    `json:"card_index"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		out, err := b.GameService.PlayCard(ctx, request.GameID, request.Address, request.CardIndex)
		if err != nil {
			log.Errorf("Error [GameService.PlayCard] %s", err)
			b.publishTyped("play-card-resp", comm.Res{Status: false, Error: err.Error()}, msg.SocketId)
			break
		}

		notice := comm.PlayNotice{
			GameID: request.GameID,
			Team:   out.Team.String(),
			CardID: out.CardID,
			Attack: out.Attack,
			Won:    out.Won,
			Game:   b.GameService.GameState(request.GameID),
		}
		b.publishTyped("play-card-resp", notice, msg.SocketId)

	case "abort-game":
		var request struct {
			GameID  int64  `json:"game_id"`
			Address string `json:"address"`
		}
		err := json.Unmarshal(msg.Data, &request)
		if err != nil {
			log.Errorf("Error decoding request: %s", err)
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := b.GameService.AbortGame(ctx, request.GameID, request.Address); err != nil {
			log.Errorf("Error [GameService.AbortGame] %s", err)
			b.publishTyped("abort-game-resp", comm.Res{Status: false, Error: err.Error()}, msg.SocketId)
			break
		}

		v := b.GameService.GameState(request.GameID)
		b.publishTyped("abort-game-resp", comm.GameNotice{GameID: request.GameID, Game: v}, msg.SocketId)
	}
}

// PublishGameEvent fans a state-change notification out to every socket; an
// empty socket id tells the socket service to broadcast.
func (b *Broker) PublishGameEvent(eventType string, data interface{}) {
	b.publishTyped(eventType, data, "")
}

func (b *Broker) publishTyped(msgType string, payload interface{}, socketId string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("unable to marshal %s payload: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	b.Publish(topic, raw)
}

func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error %s", err)
		return err
	}
	return nil
}
