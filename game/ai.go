package game

import (
	"cmp"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"sherman/dice"
	"sherman/hex"
)

type aiStep int

const (
	stepNone aiStep = iota
	stepFire
	stepTurnToward
	stepMove
	stepReverse
	stepSmoke
	stepHullDown
	stepRepair
)

func (s aiStep) String() string {
	return [...]string{"none", "fire", "turn toward", "move", "reverse", "smoke", "hull down", "repair"}[s]
}

func (s aiStep) movement() bool {
	return s == stepMove || s == stepReverse || s == stepTurnToward
}

// aiEntry is a primary step and the step used when the primary is illegal.
type aiEntry struct {
	primary, fallback aiStep
}

// AITable maps each d6 face to a step for one terrain or damage state.
type AITable struct {
	Name    string
	Dice    int
	entries [6]aiEntry
}

var (
	fireOrTurn = aiEntry{stepFire, stepTurnToward}
	moveOrBack = aiEntry{stepMove, stepReverse}
	turnOnly   = aiEntry{stepTurnToward, stepNone}
)

var (
	RoadTable = AITable{Name: "road", Dice: 4, entries: [6]aiEntry{
		{stepReverse, stepTurnToward}, turnOnly, moveOrBack, moveOrBack, fireOrTurn, fireOrTurn,
	}}
	FieldTable = AITable{Name: "field", Dice: 3, entries: [6]aiEntry{
		{stepSmoke, stepNone}, turnOnly, moveOrBack, {stepHullDown, stepNone}, fireOrTurn, fireOrTurn,
	}}
	MudTable = AITable{Name: "mud", Dice: 2, entries: [6]aiEntry{
		turnOnly, turnOnly, moveOrBack, {stepSmoke, stepNone}, fireOrTurn, fireOrTurn,
	}}
	DamagedTable = AITable{Name: "damaged", Dice: 2, entries: [6]aiEntry{
		{stepRepair, stepNone}, {stepRepair, stepNone}, {stepRepair, stepNone}, turnOnly, fireOrTurn, fireOrTurn,
	}}
)

// SelectTable picks the behaviour table for an enemy vehicle.
func SelectTable(v *Vehicle, terrain hex.Terrain) AITable {
	if v.Damaged {
		return DamagedTable
	}
	switch ClassifyTerrain(terrain) {
	case RoadTerrain:
		return RoadTable
	case MudTerrain:
		return MudTable
	}
	return FieldTable
}

// ActivationOrder sorts enemies by distance to the Sherman, ties by id.
func ActivationOrder(enemies []*Vehicle, sherman *Vehicle) []*Vehicle {
	order := slices.Clone(enemies)
	slices.SortStableFunc(order, func(a, b *Vehicle) int {
		da, db := hex.Distance(a.Hex, sherman.Hex), hex.Distance(b.Hex, sherman.Hex)
		if da != db {
			return cmp.Compare(da, db)
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return order
}

// TurnTowardSteps is the single 60° step that brings facing closer to target:
// +1 clockwise, -1 counter-clockwise, 0 if already there. A reversed facing
// turns clockwise.
func TurnTowardSteps(facing, target hex.Facing) int {
	diff := hex.NormalizeDegrees(int(target) - int(facing))
	switch {
	case diff == 0:
		return 0
	case diff <= 180:
		return 1
	}
	return -1
}

func (gs *GameState) runEnemies() {
	gs.clearSmoke(Enemy)
	sherman := gs.Sherman()
	for _, v := range ActivationOrder(gs.Scenario.Enemies(), sherman) {
		if sherman.Destroyed {
			return
		}
		if v.Destroyed {
			continue
		}
		gs.activate(v)
	}
}

// activate rolls and plays one enemy's steps in ascending roll order.
func (gs *GameState) activate(v *Vehicle) {
	sherman := gs.Sherman()
	table := SelectTable(v, gs.Scenario.TerrainAt(v.Hex))
	rolls := dice.Sorted(dice.Roll(gs.Dice, table.Dice))
	gs.emit(EventAIRolled, v, "%s uses the %s table, rolled %v", v.Label(), table.Name, rolls).
		with("table", table.Name).with("dice", rolls)

	for _, roll := range rolls {
		entry := table.entries[roll-1]
		switch {
		case v.Destroyed, sherman.Destroyed:
			gs.emit(EventAIInterrupted, v, "%s stops acting", v.Label())
			return
		case v.Immobilized && entry.primary.movement():
			gs.emit(EventAIInterrupted, v, "%s is immobilized", v.Label())
			return
		}
		step := gs.enemyStep(v, entry)
		if step != stepNone {
			log.Debug().Msgf("AI %s rolled %d: %s", v.ID, roll, step)
		}
	}
}

// enemyStep tries the primary step, then the fallback, and returns the one taken.
func (gs *GameState) enemyStep(v *Vehicle, entry aiEntry) aiStep {
	if gs.tryEnemyStep(v, entry.primary) {
		return entry.primary
	}
	if entry.fallback != stepNone && gs.tryEnemyStep(v, entry.fallback) {
		return entry.fallback
	}
	return stepNone
}

func (gs *GameState) tryEnemyStep(v *Vehicle, s aiStep) bool {
	sherman := gs.Sherman()
	switch s {
	case stepFire:
		if gs.canFire(v, sherman, MainGun) != "" {
			return false
		}
		gs.emit(EventAIStep, v, "%s opens fire", v.Label()).hint(HintAIStep)
		shot, err := gs.resolveShot(v, sherman, MainGun)
		if err != nil {
			return false
		}
		if shot.KIA {
			gs.applyKIA(sherman, gs.Dice.D6())
		}
	case stepTurnToward:
		if v.Immobilized {
			return false
		}
		steps := TurnTowardSteps(v.Facing, hex.AngleOfAttack(v.Hex, sherman.Hex))
		if steps != 0 {
			gs.turn(v, steps)
		}
	case stepMove, stepReverse:
		dest, reason := gs.canMove(v, s == stepMove)
		if reason != "" {
			return false
		}
		a := Move
		if s == stepReverse {
			a = Reverse
		}
		gs.moveTo(v, dest, a)
	case stepSmoke:
		gs.Scenario.Board.Mark(v.Hex, func(c *hex.Cell) { c.GermanSmoke = true })
		gs.emit(EventSmoke, v, "%s lays smoke at %s", v.Label(), v.Hex).hint(HintSmoke)
	case stepHullDown:
		v.HullDown = true
		gs.emit(EventHullDown, v, "%s goes hull down", v.Label())
	case stepRepair:
		gs.repair(v)
	default:
		return false
	}
	return true
}
