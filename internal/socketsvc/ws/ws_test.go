package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamwar/battle-services/internal/comm"
)

func TestWatchGameRoutesSocketsByGame(t *testing.T) {
	s := NewWs()

	watch := func(socketId string, gameId int64) {
		data, _ := json.Marshal(map[string]int64{"game_id": gameId})
		s.SocketMessage(socketId, &comm.WSMessage{Type: "watch-game", Data: data})
	}

	watch("sock-a", 7)
	watch("sock-b", 7)
	watch("sock-c", 9)

	assert.ElementsMatch(t, []string{"sock-a", "sock-b"}, s.GetGameSockets(7))
	assert.ElementsMatch(t, []string{"sock-c"}, s.GetGameSockets(9))
	assert.Empty(t, s.GetGameSockets(12))
}

func TestDisconnectDropsWatch(t *testing.T) {
	s := NewWs()

	data, _ := json.Marshal(map[string]int64{"game_id": 3})
	s.SocketMessage("sock-a", &comm.WSMessage{Type: "watch-game", Data: data})
	assert.Len(t, s.GetGameSockets(3), 1)

	s.HandleDisconnect("sock-a")
	assert.Empty(t, s.GetGameSockets(3))

	_, ok := s.GetConnection("sock-a")
	assert.False(t, ok)
}

func TestUnknownMessageTypeIsIgnored(t *testing.T) {
	s := NewWs()

	// must not panic or relay anywhere
	s.SocketMessage("sock-a", &comm.WSMessage{Type: "teleport", Data: json.RawMessage(`{}`)})
	assert.Empty(t, s.GetGameSockets(0))
}
