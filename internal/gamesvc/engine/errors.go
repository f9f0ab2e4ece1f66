package engine

import "fmt"

// Kind classifies why a mutating operation was rejected. Reads never fail,
// they return sentinel views instead.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindWrongPhase
	KindInvalidTeam
	KindInvalidStake
	KindAlreadyJoined
	KindNotEnoughPlayers
	KindNotYourTurn
	KindInvalidCardIndex
	KindNotJoined
	KindTransferFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindWrongPhase:
		return "wrong_phase"
	case KindInvalidTeam:
		return "invalid_team"
	case KindInvalidStake:
		return "invalid_stake"
	case KindAlreadyJoined:
		return "already_joined"
	case KindNotEnoughPlayers:
		return "not_enough_players"
	case KindNotYourTurn:
		return "not_your_turn"
	case KindInvalidCardIndex:
		return "invalid_card_index"
	case KindNotJoined:
		return "not_joined"
	case KindTransferFailure:
		return "transfer_failure"
	}
	return "unknown"
}

// Error carries the rejection kind plus a human readable reason for the
// presentation layer to surface.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func errf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an engine error, KindNone for anything else.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindNone
}
