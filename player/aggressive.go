package player

import (
	"sherman/game"
	"sherman/hex"
)

// AggressiveCommander closes with the nearest enemy and shoots whenever it can.
// It only ever picks a die whose action it wants, so it never cycles between
// selections.
type AggressiveCommander struct{}

func NewAggressiveCommander() *AggressiveCommander {
	return &AggressiveCommander{}
}

func (c *AggressiveCommander) Name() string { return "aggressive" }

func (c *AggressiveCommander) Choose(state *game.GameState, intents []game.Intent) game.Intent {
	var (
		best      game.Intent
		bestScore int
		fallback  = intents[len(intents)-1]
	)
	for _, in := range intents {
		var score int
		switch in.Type {
		case game.StartTurn, game.RollPool, game.ResolveFireCheck, game.ResolveKIACheck:
			return in
		case game.ChoosePosture:
			// more dice in the maneuver and attack pools
			if in.Posture == game.PoppedHatch {
				return in
			}
		case game.PerformAction:
			score = desire(state, in)
		case game.SelectDie, game.SelectDoubles:
			score = selectionDesire(state, in)
		}
		if score > bestScore {
			best, bestScore = in, score
		}
	}
	if bestScore == 0 {
		return fallback
	}
	return best
}

// selectionDesire is how much the commander wants the best action a selection
// would unlock.
func selectionDesire(state *game.GameState, in game.Intent) int {
	sim := state.Copy()
	// selecting never rolls, the copy only needs somewhere to look
	if _, err := sim.Play(in); err != nil {
		return 0
	}
	best := 0
	for _, next := range sim.AvailableIntents() {
		if next.Type == game.PerformAction {
			best = max(best, desire(sim, next))
		}
	}
	return best
}

// desire ranks a concrete action: shooting first, then the things that make the
// next shot possible, then closing the distance.
func desire(state *game.GameState, in game.Intent) int {
	sherman := state.Sherman()
	target := nearestEnemy(state, sherman)
	inArc := len(state.TargetsInArc(sherman)) > 0

	switch in.Action {
	case game.FireMainGun:
		return 10
	case game.Extinguish:
		if sherman.FireLevel > 0 {
			return 9
		}
	case game.FireMG:
		return 8
	case game.Load:
		if sherman.MainGun == game.Unloaded {
			return 7
		}
	case game.Repair:
		if sherman.TurretDamaged || sherman.Immobilized {
			return 6
		}
	case game.Turn:
		if target == nil {
			return 0
		}
		want := game.TurnTowardSteps(sherman.Facing, game.FacingToward(sherman, target))
		if want != 0 && want == in.Steps {
			return 5
		}
	case game.Move:
		if target != nil && !inArc && hex.Distance(sherman.Hex, target.Hex) > 1 {
			return 4
		}
	case game.HullDown:
		if !sherman.HullDown {
			return 3
		}
	case game.Smoke:
		if !inArc {
			return 1
		}
	}
	return 0
}

func nearestEnemy(state *game.GameState, sherman *game.Vehicle) *game.Vehicle {
	order := game.ActivationOrder(state.Scenario.Enemies(), sherman)
	if len(order) == 0 {
		return nil
	}
	return order[0]
}
