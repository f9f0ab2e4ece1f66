package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
)

func TestParseTeam(t *testing.T) {
	assert.Equal(t, engine.TeamRed, ParseTeam("red"))
	assert.Equal(t, engine.TeamBlue, ParseTeam("blue"))
	assert.Equal(t, engine.TeamNone, ParseTeam("green"))
	assert.Equal(t, engine.TeamNone, ParseTeam(""))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, engine.ModeCountUp, ParseMode("annihilation"))
	assert.Equal(t, engine.ModeCountDown, ParseMode("health"))
	assert.Equal(t, engine.ModeCountDown, ParseMode(""))
}
