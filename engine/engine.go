package engine

import (
	"sherman/game"
)

// MaxSteps bounds a single Run so a commander that never ends a pool cannot spin
// forever.
const MaxSteps = 10000

// Commander picks the player's next intent from the ones currently available.
type Commander interface {
	Name() string
	Choose(state *game.GameState, intents []game.Intent) game.Intent
}

// Update is published after every accepted intent.
type Update struct {
	Intent  game.Intent
	Outcome game.Outcome
	// State is a snapshot taken after the intent was applied.
	State *game.GameState
}

// Result summarises a finished Run.
type Result struct {
	Winner   string
	Turns    int
	Steps    int
	Rejected int
}
