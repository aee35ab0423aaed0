package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"sherman/dice"
	"sherman/hex"
)

var ErrHexNotFound = errors.New("target hex not found")

// ArmorArc is the side of a vehicle a shot strikes.
type ArmorArc int

const (
	FrontArc ArmorArc = iota
	FrontSideArc
	RearSideArc
	RearArc
)

func (a ArmorArc) String() string {
	switch a {
	case FrontArc:
		return "front"
	case FrontSideArc:
		return "front_side"
	case RearSideArc:
		return "rear_side"
	}
	return "rear"
}

// ArcFromRelative buckets an angle relative to the target's facing into one of
// six 60° sectors centred on the facing.
func ArcFromRelative(deg int) ArmorArc {
	d := hex.NormalizeDegrees(deg)
	switch {
	case d >= 330 || d < 30:
		return FrontArc
	case d < 90:
		return FrontSideArc
	case d < 150:
		return RearSideArc
	case d < 210:
		return RearArc
	case d < 270:
		return RearSideArc
	}
	return FrontSideArc
}

// StruckArc reports which armor arc of target faces a shot from attacker.
func StruckArc(attacker, target *Vehicle) ArmorArc {
	from := int(hex.AngleOfAttack(attacker.Hex, target.Hex)) + 180
	return ArcFromRelative(from - int(target.Facing))
}

// ToHit is the to-hit number and the addends that produced it.
type ToHit struct {
	Distance    int
	Size        int
	Building    int
	Smoke       int
	HullDown    int
	SouthernArc int
	Total       int
}

func (t ToHit) String() string {
	return fmt.Sprintf("%d (distance %d, size %d, building %d, smoke %d, hull down %d, southern arc %d)",
		t.Total, t.Distance, t.Size, t.Building, t.Smoke, t.HullDown, t.SouthernArc)
}

// CalculateToHit computes the 2d6 total needed for attacker to hit target.
func CalculateToHit(attacker, target *Vehicle, board *hex.Board) (ToHit, error) {
	cell, ok := board.Cell(target.Hex)
	if !ok {
		return ToHit{}, fmt.Errorf("%s at %s: %w", target.ID, target.Hex, ErrHexNotFound)
	}
	th := ToHit{
		Distance: hex.Distance(attacker.Hex, target.Hex),
		Size:     target.Size,
	}
	if cell.Terrain.Has(hex.Buildings) {
		th.Building = 1
	}
	if cell.Smoked() {
		th.Smoke = 1
	}
	if target.HullDown {
		th.HullDown = 2
	}
	dq := target.Hex.Q - attacker.Hex.Q
	dr := target.Hex.R - attacker.Hex.R
	if dr < 0 || (dr == 0 && dq < 0) {
		th.SouthernArc = 1
	}
	th.Total = th.Distance + th.Size + th.Building + th.Smoke + th.HullDown + th.SouthernArc
	return th, nil
}

// Penetrates reports whether a penetration roll beats armor minus pen.
func Penetrates(roll, armor, pen int) bool {
	return roll >= armor-pen
}

type Weapon int

const (
	MainGun Weapon = iota
	MachineGun
)

func (w Weapon) String() string {
	if w == MachineGun {
		return "machine gun"
	}
	return "main gun"
}

// Shot is the full record of one resolved shot.
type Shot struct {
	Attacker   string
	Target     string
	Weapon     Weapon
	ToHit      ToHit
	Roll       dice.Result
	Hit        bool
	Arc        ArmorArc
	Needed     int
	PenRoll    int
	Penetrated bool
	// DamageRoll is the d6 on the damage table, 0 if nothing penetrated.
	DamageRoll int
	KIA        bool
}

// resolveShot rolls to hit, to penetrate and for damage. A player target that
// comes up on the casualty result is flagged in Shot.KIA; the caller decides how
// the KIA check is resolved.
func (gs *GameState) resolveShot(attacker, target *Vehicle, w Weapon) (Shot, error) {
	th, err := CalculateToHit(attacker, target, gs.Scenario.Board)
	if err != nil {
		log.Warn().Err(err).Msgf("%s cannot fire on %s", attacker.ID, target.ID)
		return Shot{}, err
	}

	shot := Shot{
		Attacker: attacker.ID,
		Target:   target.ID,
		Weapon:   w,
		ToHit:    th,
		Roll:     dice.Roll2D6(gs.Dice),
	}
	shot.Hit = shot.Roll.Total >= th.Total
	gs.emit(EventShot, attacker, "%s fires %s at %s: needs %s, rolled %d",
		attacker.Label(), w, target.Label(), th, shot.Roll.Total).
		with("toHit", th).with("roll", shot.Roll.Dice)

	if !shot.Hit {
		gs.emit(EventMiss, attacker, "missed %s", target.Label())
		return shot, nil
	}

	pen := attacker.ArmorPen
	if w == MachineGun {
		pen = attacker.MGPen
	}
	shot.Arc = StruckArc(attacker, target)
	armor := target.Armor.Value(shot.Arc)
	shot.Needed = armor - pen
	shot.PenRoll = gs.Dice.D6()
	shot.Penetrated = Penetrates(shot.PenRoll, armor, pen)
	gs.emit(EventHit, target, "hit on the %s armor (%d), needs %d to penetrate, rolled %d",
		shot.Arc, armor, shot.Needed, shot.PenRoll).
		with("arc", shot.Arc.String()).hint(HintHit)

	if !shot.Penetrated {
		gs.emit(EventBounce, target, "shot bounced off %s", target.Label()).hint(HintBounce)
		return shot, nil
	}

	gs.emit(EventPenetration, target, "%s penetrated", target.Label())
	shot.DamageRoll = gs.Dice.D6()
	if target.IsPlayer() {
		shot.KIA = gs.applyPlayerDamage(target, shot.DamageRoll)
	} else {
		gs.applyEnemyDamage(target, shot.DamageRoll)
	}
	return shot, nil
}

// applyEnemyDamage escalates on 1-4 and destroys outright on 5-6.
func (gs *GameState) applyEnemyDamage(v *Vehicle, roll int) {
	switch {
	case roll >= 5 || v.Damaged:
		v.Destroyed = true
		gs.emit(EventDestroyed, v, "%s destroyed (rolled %d)", v.Label(), roll).with("roll", roll)
	default:
		v.Damaged = true
		gs.emit(EventDamaged, v, "%s damaged (rolled %d)", v.Label(), roll).with("roll", roll)
	}
}

// applyPlayerDamage applies one result of the player damage table and reports
// whether a KIA check is now owed.
func (gs *GameState) applyPlayerDamage(v *Vehicle, roll int) (kia bool) {
	switch roll {
	case 1:
		v.Destroyed = true
		gs.emit(EventDestroyed, v, "%s destroyed", v.Label()).with("roll", roll)
	case 2:
		gs.emit(EventKIACheck, v, "crew casualty check required").with("roll", roll)
		return true
	case 3, 4:
		v.FireLevel++
		gs.emit(EventFire, v, "fire spreads, level %d", v.FireLevel).with("roll", roll)
	case 5:
		v.TurretDamaged = true
		gs.emit(EventTurretDamaged, v, "turret damaged").with("roll", roll)
	case 6:
		v.Immobilized = true
		gs.emit(EventImmobilized, v, "immobilized").with("roll", roll)
	}
	return false
}

// applyKIA rolls the casualty table. 1-5 hit a station directly; 6 only kills a
// commander with a popped hatch.
func (gs *GameState) applyKIA(v *Vehicle, roll int) {
	var station Station
	switch {
	case roll >= 1 && roll <= 5:
		station = Stations[roll-1]
	case roll == 6 && v.Crew.PoppedHatch():
		station = Commander
	default:
		gs.emit(EventKIACheck, v, "rolled %d, no casualties", roll).with("roll", roll)
		return
	}
	if !v.Crew.Alive(station) {
		gs.emit(EventKIACheck, v, "rolled %d, %s already lost", roll, station).with("roll", roll)
		return
	}
	v.Crew.Set(station, KIA)
	gs.emit(EventCasualty, v, "%s killed in action", station).
		with("roll", roll).with("station", station.String())
}

// FireCheck is the result of an end-of-turn fire roll.
type FireCheck struct {
	Dice   []int
	Lowest int
	KIA    bool
}

func (gs *GameState) fireCheck(v *Vehicle) FireCheck {
	rolls := dice.Roll(gs.Dice, v.FireLevel)
	fc := FireCheck{Dice: rolls, Lowest: dice.Lowest(rolls)}
	gs.emit(EventFireCheck, v, "fire check rolled %v, lowest %d", dice.Sorted(rolls), fc.Lowest).
		with("dice", rolls)
	fc.KIA = gs.applyPlayerDamage(v, fc.Lowest)
	return fc
}
