package game

import (
	"sherman/hex"
)

// AvailableIntents returns the intents that would be accepted in the current
// state. Actions that would come back illegal are left out.
func (gs *GameState) AvailableIntents() []Intent {
	ts := &gs.Turn
	if ts.Phase.Terminal() {
		return nil
	}
	if ts.KIAPending {
		return []Intent{{Type: ResolveKIACheck}}
	}
	switch ts.Phase {
	case Initial:
		return []Intent{{Type: StartTurn}}
	case CommanderDecision:
		return []Intent{Posture(ButtonedUp), Posture(PoppedHatch)}
	case ShermanOperations:
		return gs.operationIntents()
	case EndOfTurn:
		return []Intent{{Type: ResolveFireCheck}}
	}
	return nil
}

func (gs *GameState) operationIntents() []Intent {
	ts := &gs.Turn
	pool := ts.Pool()
	if !pool.Rolled {
		return []Intent{Roll(pool.Kind)}
	}

	var intents []Intent
	switch {
	case ts.Doubles():
		for _, a := range PoolActions(pool.Kind) {
			intents = append(intents, gs.actionIntents(a)...)
		}
	case ts.Selected >= 0:
		intents = append(intents, gs.actionIntents(FaceAction(pool.Kind, pool.Dice[ts.Selected]))...)
	}
	if !ts.selectionLocked() {
		for _, i := range pool.Available() {
			if i != ts.Selected {
				intents = append(intents, Select(i))
			}
		}
		if doublesAllowed(pool.Kind, gs.Sherman().Crew) {
			for _, p := range pool.Doubles() {
				if !ts.Doubles() || p != ts.Pair {
					intents = append(intents, SelectPair(p[0], p[1]))
				}
			}
		}
	}
	return append(intents, Intent{Type: EndPool})
}

// actionIntents expands an action into its legal concrete intents.
func (gs *GameState) actionIntents(a Action) []Intent {
	sherman := gs.Sherman()
	switch a {
	case Move, Reverse:
		if _, reason := gs.canMove(sherman, a == Move); reason != "" {
			return nil
		}
	case Turn:
		if sherman.Immobilized {
			return nil
		}
		return []Intent{TurnBy(1), TurnBy(-1)}
	case FireMG, FireMainGun:
		w := MainGun
		if a == FireMG {
			w = MachineGun
		}
		var intents []Intent
		for _, e := range gs.Scenario.Enemies() {
			if gs.canFire(sherman, e, w) == "" && gs.Scenario.Board.Contains(e.Hex) {
				intents = append(intents, FireAt(w, e.ID))
			}
		}
		return intents
	}
	return []Intent{Perform(a)}
}

// TargetsInArc lists the enemies the vehicle could legally fire its main gun at,
// ignoring gun state.
func (gs *GameState) TargetsInArc(v *Vehicle) []*Vehicle {
	var out []*Vehicle
	arc := gs.Scenario.Board.FiringArcHexes(v.Hex, gs.Rules.FiringArc(v.Facing)...)
	for _, e := range gs.Scenario.Vehicles {
		if e.Destroyed || e.Faction == v.Faction || !arc.Has(e.Hex) {
			continue
		}
		if res := gs.Scenario.Board.ClearPath(v.Hex, e.Hex); !res.Blocked {
			out = append(out, e)
		}
	}
	return out
}

// FacingToward is the snapped bearing from one vehicle to another.
func FacingToward(from, to *Vehicle) hex.Facing {
	return hex.AngleOfAttack(from.Hex, to.Hex)
}
