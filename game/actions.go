package game

import (
	"fmt"

	"sherman/hex"
)

// Reasons reported for illegal actions.
const (
	ReasonOccupied      = "occupied"
	ReasonOffMap        = "off map"
	ReasonImmobilized   = "immobilized"
	ReasonTurretDamaged = "turret damaged"
	ReasonNotLoaded     = "gun not loaded"
	ReasonOutOfArc      = "target outside firing arc"
	ReasonNoTarget      = "no such target"
)

func (gs *GameState) performAction(in Intent) (string, error) {
	pool, err := gs.requireRolled(PerformAction)
	if err != nil {
		return "", err
	}
	ts := &gs.Turn
	switch {
	case ts.Doubles():
		if in.Action.pool() != pool.Kind || in.Action == NoAction {
			return "", fmt.Errorf("%s is not a %s action: %w", in.Action, pool.Kind, ErrInvalidAction)
		}
	case ts.Selected >= 0:
		face := FaceAction(pool.Kind, pool.Dice[ts.Selected])
		if in.Action == NoAction {
			in.Action = face
		}
		if in.Action != face {
			return "", fmt.Errorf("die shows %s, not %s: %w", face, in.Action, ErrInvalidAction)
		}
	default:
		return "", fmt.Errorf("no die selected: %w", ErrInvalidDie)
	}
	if in.Action == Turn && in.Steps != 1 && in.Steps != -1 {
		return "", fmt.Errorf("turn by %d steps: %w", in.Steps, ErrInvalidAction)
	}

	sherman := gs.Sherman()
	// an illegal attempt leaves the die in hand
	if reason := gs.execute(sherman, in); reason != "" {
		return reason, nil
	}
	gs.expendSelection()
	return "", nil
}

// execute performs one player action. A non-empty reason means nothing changed.
func (gs *GameState) execute(v *Vehicle, in Intent) string {
	switch in.Action {
	case Move, Reverse:
		dest, reason := gs.canMove(v, in.Action == Move)
		if reason != "" {
			return reason
		}
		gs.moveTo(v, dest, in.Action)
	case Turn:
		if v.Immobilized {
			return ReasonImmobilized
		}
		gs.turn(v, in.Steps)
	case Load:
		if v.MainGun == Loaded {
			gs.emit(EventWarning, v, "main gun already loaded")
			break
		}
		v.MainGun = Loaded
		gs.emit(EventLoaded, v, "main gun loaded")
	case FireMG, FireMainGun:
		w := MainGun
		if in.Action == FireMG {
			w = MachineGun
		}
		target := gs.Scenario.Vehicle(in.Target)
		if reason := gs.canFire(v, target, w); reason != "" {
			return reason
		}
		if _, err := gs.resolveShot(v, target, w); err != nil {
			return err.Error()
		}
		if w == MainGun {
			v.MainGun = Unloaded
		}
	case Smoke:
		gs.Scenario.Board.Mark(v.Hex, func(c *hex.Cell) { c.ShermanSmoke = true })
		gs.emit(EventSmoke, v, "smoke laid at %s", v.Hex).hint(HintSmoke)
	case HullDown:
		v.HullDown = true
		gs.emit(EventHullDown, v, "%s goes hull down", v.Label())
	case Repair:
		gs.repair(v)
	case Extinguish:
		if v.FireLevel == 0 {
			gs.emit(EventWarning, v, "nothing to extinguish")
			break
		}
		v.FireLevel--
		gs.emit(EventExtinguished, v, "fire level down to %d", v.FireLevel)
	}
	return ""
}

// canMove checks a one-hex step forward or backward and returns the destination.
func (gs *GameState) canMove(v *Vehicle, forward bool) (hex.Coord, string) {
	if v.Immobilized {
		return hex.Coord{}, ReasonImmobilized
	}
	f := v.Facing
	if !forward {
		f = f.Opposite()
	}
	dest := hex.Neighbor(v.Hex, f)
	if !gs.Scenario.Board.Contains(dest) {
		return dest, ReasonOffMap
	}
	if other := gs.Scenario.OccupantAt(dest); other != nil && other != v {
		return dest, ReasonOccupied
	}
	return dest, ""
}

func (gs *GameState) moveTo(v *Vehicle, dest hex.Coord, a Action) {
	from := v.Hex
	v.Hex = dest
	v.HullDown = false
	verb := "moves"
	if a == Reverse {
		verb = "reverses"
	}
	gs.emit(EventMoved, v, "%s %s from %s to %s", v.Label(), verb, from, dest).
		with("from", from).with("to", dest)
}

func (gs *GameState) turn(v *Vehicle, steps int) {
	v.Facing = v.Facing.Rotate(steps)
	v.HullDown = false
	gs.emit(EventTurned, v, "%s turns to face %s", v.Label(), v.Facing).with("facing", int(v.Facing))
}

// canFire checks target validity, gun state, firing arc and line of sight.
// Only the player's main gun has a load state and a turret to damage.
func (gs *GameState) canFire(v, target *Vehicle, w Weapon) string {
	if target == nil || target.Destroyed || target.Faction == v.Faction {
		return ReasonNoTarget
	}
	if w == MainGun && v.IsPlayer() {
		if v.TurretDamaged {
			return ReasonTurretDamaged
		}
		if v.MainGun != Loaded {
			return ReasonNotLoaded
		}
	}
	arc := gs.Scenario.Board.FiringArcHexes(v.Hex, gs.Rules.FiringArc(v.Facing)...)
	if !arc.Has(target.Hex) {
		return ReasonOutOfArc
	}
	if res := gs.Scenario.Board.ClearPath(v.Hex, target.Hex); res.Blocked {
		return res.Reason
	}
	return ""
}

// repair fixes the turret first, then the tracks. An enemy with neither
// problem clears its damage instead.
func (gs *GameState) repair(v *Vehicle) {
	switch {
	case v.TurretDamaged:
		v.TurretDamaged = false
		gs.emit(EventRepaired, v, "turret repaired")
	case v.Immobilized:
		v.Immobilized = false
		gs.emit(EventRepaired, v, "tracks repaired")
	case v.Faction == Enemy && v.Damaged:
		v.Damaged = false
		gs.emit(EventRepaired, v, "%s patched up", v.Label())
	default:
		gs.emit(EventWarning, v, "nothing to repair")
	}
}
