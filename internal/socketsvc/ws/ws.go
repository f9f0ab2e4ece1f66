package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/teamwar/battle-services/internal/comm"
	"github.com/teamwar/battle-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap  sync.Map // to keep track of socket connection with socketId
	watchMap sync.Map // to keep track of which game a socket is watching
	Broker   *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "watch-game":
		s.handleWatch(socketId, message)
	case "init", "get-balance", "get-game-state", "get-player",
		"create-game", "join-team", "begin-game", "play-card", "abort-game":
		s.relay(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleWatch pins a socket to a game so pushed notifications reach it.
// The state itself still comes from the game service; watching only routes.
func (s *Ws) handleWatch(socketId string, msg *comm.WSMessage) {
	var payload struct {
		GameID int64 `json:"game_id"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed watch-game payload %s", err)
		return
	}

	s.watchMap.Store(socketId, payload.GameID)
	log.Infof("socket %s is watching game %d", socketId, payload.GameID)
}

// relay forwards a client request to the game service with the socket id
// stamped in, so the response finds its way back to this connection.
func (s *Ws) relay(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "socket.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
		return
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.watchMap.Delete(socketId)
}

// GetGameSockets lists every socket currently watching a game.
func (s *Ws) GetGameSockets(gameId int64) []string {
	var sockets []string

	s.watchMap.Range(func(key, value interface{}) bool {
		if value.(int64) == gameId {
			sockets = append(sockets, key.(string))
		}
		return true // continue iterating
	})

	return sockets
}
