package engine

import (
	"encoding/binary"
	"hash/fnv"
)

// Attack bounds for the card catalog. Values are derived, never stored, so
// any party can recompute a card from (gameID, cardID) alone.
const (
	MinAttack int64 = 10
	MaxAttack int64 = 40
)

// Attack returns the deterministic attack value of a card within a game.
func Attack(gameID, cardID int64) int64 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(gameID))
	binary.BigEndian.PutUint64(buf[8:16], uint64(cardID))

	h := fnv.New64a()
	h.Write(buf[:])

	span := uint64(MaxAttack - MinAttack + 1)
	return MinAttack + int64(h.Sum64()%span)
}

// validCardID reports whether cardID belongs to the per-game id space
// (red holds 1..CardsPerTeam, blue the next CardsPerTeam ids).
func validCardID(cardID int64) bool {
	return cardID >= 1 && cardID <= 2*CardsPerTeam
}
