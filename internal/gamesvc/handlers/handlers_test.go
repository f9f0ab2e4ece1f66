package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
)

func TestStatusOfMapsEngineRejections(t *testing.T) {
	cases := []struct {
		kind engine.Kind
		want int
	}{
		{engine.KindNotFound, http.StatusNotFound},
		{engine.KindInvalidTeam, http.StatusBadRequest},
		{engine.KindInvalidStake, http.StatusBadRequest},
		{engine.KindInvalidCardIndex, http.StatusBadRequest},
		{engine.KindWrongPhase, http.StatusConflict},
		{engine.KindAlreadyJoined, http.StatusConflict},
		{engine.KindNotEnoughPlayers, http.StatusConflict},
		{engine.KindNotYourTurn, http.StatusConflict},
		{engine.KindNotJoined, http.StatusForbidden},
		{engine.KindTransferFailure, http.StatusPaymentRequired},
	}

	for _, c := range cases {
		err := &engine.Error{Kind: c.kind, Reason: "rejected"}
		assert.Equal(t, c.want, statusOf(err), "kind %s", c.kind)
	}
}

func TestStatusOfUnknownErrorIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
}
