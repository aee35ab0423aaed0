package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"sherman/dice"
	"sherman/hex"
)

// board returns an open square of hexes with |q|,|r| <= radius.
func board(radius int) []hex.Cell {
	var cells []hex.Cell
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			cells = append(cells, hex.Cell{Coord: hex.Coord{Q: q, R: r}, Terrain: hex.Open})
		}
	}
	return cells
}

func newSherman(at hex.Coord, f hex.Facing) *Vehicle {
	return &Vehicle{
		ID:       "sherman",
		Name:     "Sherman",
		Faction:  Player,
		Hex:      at,
		Facing:   f,
		Size:     1,
		Armor:    Armor{Front: 6, FrontSide: 5, RearSide: 4, Rear: 3},
		ArmorPen: 2,
		MainGun:  Loaded,
		Crew:     FullCrew(),
	}
}

func newEnemy(id string, at hex.Coord, f hex.Facing) *Vehicle {
	return &Vehicle{
		ID:       id,
		Name:     id,
		Faction:  Enemy,
		Hex:      at,
		Facing:   f,
		Size:     2,
		Armor:    Armor{Front: 5, FrontSide: 4, RearSide: 3, Rear: 2},
		ArmorPen: 3,
		Crew:     FullCrew(),
	}
}

func newState(cells []hex.Cell, roller dice.Roller, vehicles ...*Vehicle) *GameState {
	s := &Scenario{Name: "test", Board: hex.NewBoard(cells), Vehicles: vehicles}
	return NewGameState(s, NewStandardRules(), roller)
}

// play applies intents that are all expected to succeed.
func play(t *testing.T, gs *GameState, intents ...Intent) []Event {
	t.Helper()
	var events []Event
	for _, in := range intents {
		out, err := gs.Play(in)
		require.NoError(t, err, "playing %s", in)
		require.True(t, out.OK, "playing %s: %s", in, out.Reason)
		events = append(events, out.Events...)
	}
	return events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func count(events []Event, k EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

var startOps = []Intent{{Type: StartTurn}, Posture(ButtonedUp)}

func TestFullTurnAdvancesOnce(t *testing.T) {
	// maneuver 3, attack 4, misc 3, then the enemy's three field dice
	roller := dice.NewSequence(
		2, 3, 4,
		1, 2, 3, 4,
		1, 3, 5,
		4, 4, 4,
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	enemy := newEnemy("tiger", hex.Coord{Q: 3, R: 1}, hex.South)
	gs := newState(board(4), roller, sherman, enemy)

	events := play(t, gs, startOps...)
	require.Equal(t, ShermanOperations, gs.Phase())
	require.Equal(t, Maneuver, gs.Turn.Current)

	for _, p := range PoolKinds {
		events = append(events, play(t, gs, Roll(p), Intent{Type: EndPool})...)
	}

	require.Equal(t, 2, gs.Turn.Number)
	require.Equal(t, CommanderDecision, gs.Phase())
	require.Equal(t, 1, count(events, EventNextTurn))
	require.Equal(t, 3, count(events, EventPoolClosed))
	require.True(t, enemy.HullDown)
	require.Zero(t, roller.Remaining())

	_, err := gs.Play(Roll(Maneuver))
	require.ErrorIs(t, err, ErrWrongPhase, "operations are not re-entered for the same turn")
}

func TestStraightAheadShot(t *testing.T) {
	roller := dice.NewSequence(
		2, 3, 4, // maneuver
		5, 1, 1, 3, // attack
		2, 3, // to hit: 5 against 4
		3, // penetration: front 5 - pen 2 = 3
		2, // damage: escalate
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	tiger := newEnemy("tiger", hex.Coord{Q: 0, R: 2}, hex.South)
	gs := newState(board(4), roller, sherman, tiger)

	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Intent{Type: EndPool}, Roll(Attack))

	th, err := CalculateToHit(sherman, tiger, gs.Scenario.Board)
	require.NoError(t, err)
	require.Equal(t, 2+tiger.Size, th.Total)

	events := play(t, gs, Select(0), FireAt(MainGun, "tiger"))
	require.Equal(t, []EventKind{EventShot, EventHit, EventPenetration, EventDamaged}, kinds(events))
	require.Equal(t, FrontArc.String(), events[1].Data["arc"])
	require.True(t, tiger.Damaged)
	require.False(t, tiger.Destroyed)
	require.Equal(t, Unloaded, sherman.MainGun)
	require.True(t, gs.Turn.Pool().Expended[0])
	require.Equal(t, ShermanOperations, gs.Phase())
}

func TestDoublesRejectedWithoutCrew(t *testing.T) {
	roller := dice.NewSequence(5, 5)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.Crew.Driver = KIA
	sherman.Crew.AssistantDriver = KIA
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: -3}, hex.North))

	// popped hatch keeps two maneuver dice: field 1 + hatch 1
	play(t, gs, Intent{Type: StartTurn}, Posture(PoppedHatch), Roll(Maneuver))
	require.Equal(t, []int{5, 5}, gs.Turn.Pool().Dice)
	require.NotContains(t, gs.AvailableIntents(), SelectPair(0, 1))

	out, err := gs.Play(SelectPair(0, 1))
	require.NoError(t, err)
	require.False(t, out.OK)
	require.False(t, gs.Turn.Doubles())

	play(t, gs, Select(0), Perform(Move))
	require.Equal(t, hex.Coord{Q: 0, R: 1}, sherman.Hex)
}

func TestAttackDoublesRejectedWithoutGunCrew(t *testing.T) {
	// maneuver 2, 3, 4 then an attack pair of loads
	roller := dice.NewSequence(2, 3, 4, 1, 1)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.MainGun = Unloaded
	sherman.Crew.Gunner = KIA
	sherman.Crew.Loader = KIA
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: -3}, hex.North))

	// field 2 and no gun crew leaves two attack dice
	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Intent{Type: EndPool}, Roll(Attack))
	require.Equal(t, []int{1, 1}, gs.Turn.Pool().Dice)
	require.NotContains(t, gs.AvailableIntents(), SelectPair(0, 1))

	out, err := gs.Play(SelectPair(0, 1))
	require.NoError(t, err)
	require.False(t, out.OK)
	require.False(t, gs.Turn.Doubles())

	events := play(t, gs, Select(0), Perform(Load))
	require.Contains(t, kinds(events), EventLoaded)
	require.Equal(t, Loaded, sherman.MainGun)
	require.Equal(t, []bool{true, false}, gs.Turn.Pool().Expended)
}

func TestDoublesGiveTwoActions(t *testing.T) {
	roller := dice.NewSequence(3, 3, 1)
	sherman := newSherman(hex.Coord{}, hex.North)
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: -3}, hex.North))

	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), SelectPair(0, 1))
	require.Equal(t, 2, gs.Turn.Remaining)

	// any maneuver action, not just the face
	play(t, gs, Perform(Move))
	require.False(t, gs.Turn.Pool().Expended[0], "pair is spent after the second action")

	_, err := gs.Play(Select(2))
	require.ErrorIs(t, err, ErrInvalidDie)

	play(t, gs, TurnBy(1))
	require.Equal(t, hex.NorthEast, sherman.Facing)
	require.Equal(t, []bool{true, true, false}, gs.Turn.Pool().Expended)
}

func TestMoveIntoOccupiedHex(t *testing.T) {
	roller := dice.NewSequence(5, 6, 2)
	sherman := newSherman(hex.Coord{}, hex.North)
	blocker := newEnemy("tiger", hex.Coord{Q: 0, R: 1}, hex.South)
	gs := newState(board(4), roller, sherman, blocker)

	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Select(0))

	out, err := gs.Play(Perform(Move))
	require.NoError(t, err)
	require.False(t, out.OK)
	require.Equal(t, ReasonOccupied, out.Reason)
	require.Equal(t, hex.Coord{}, sherman.Hex)
	require.False(t, gs.Turn.Pool().Expended[0], "illegal move keeps the die")
	require.Equal(t, 0, gs.Turn.Selected)

	t.Run("destroyed vehicles do not block", func(t *testing.T) {
		blocker.Destroyed = true
		play(t, gs, Perform(Move))
		require.Equal(t, hex.Coord{Q: 0, R: 1}, sherman.Hex)
	})
}

func TestMoveOffMapAndImmobilized(t *testing.T) {
	roller := dice.NewSequence(5, 1, 2)
	sherman := newSherman(hex.Coord{Q: 0, R: 2}, hex.North)
	gs := newState(board(2), roller, sherman, newEnemy("tiger", hex.Coord{Q: 2, R: -2}, hex.North))
	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Select(0))

	out, err := gs.Play(Perform(Move))
	require.NoError(t, err)
	require.Equal(t, ReasonOffMap, out.Reason)

	sherman.Immobilized = true
	play(t, gs, Select(1))
	out, err = gs.Play(Perform(Reverse))
	require.NoError(t, err)
	require.Equal(t, ReasonImmobilized, out.Reason)

	play(t, gs, Select(2))
	out, err = gs.Play(TurnBy(1))
	require.NoError(t, err)
	require.Equal(t, ReasonImmobilized, out.Reason)
}

func TestMoveClearsHullDown(t *testing.T) {
	roller := dice.NewSequence(2, 2, 2)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.HullDown = true
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: -3}, hex.North))

	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Select(0), TurnBy(-1))
	require.Equal(t, hex.NorthWest, sherman.Facing)
	require.False(t, sherman.HullDown)

	_, err := gs.Play(Select(1))
	require.NoError(t, err)
	_, err = gs.Play(TurnBy(2))
	require.ErrorIs(t, err, ErrInvalidAction)
	_, err = gs.Play(Perform(Move))
	require.ErrorIs(t, err, ErrInvalidAction, "a TURN die cannot move")
}

func TestAttackPoolActions(t *testing.T) {
	roller := dice.NewSequence(
		2, 3, 4,
		1, 5, 6, 2,
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.MainGun = Unloaded
	// behind the Sherman, out of the front arc
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 0, R: -2}, hex.North))
	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Intent{Type: EndPool}, Roll(Attack))

	t.Run("fire with an unloaded gun keeps the die", func(t *testing.T) {
		play(t, gs, Select(1))
		out, err := gs.Play(FireAt(MainGun, "tiger"))
		require.NoError(t, err)
		require.Equal(t, ReasonNotLoaded, out.Reason)
		require.False(t, gs.Turn.Pool().Expended[1])
	})

	t.Run("load", func(t *testing.T) {
		play(t, gs, Select(0), Perform(Load))
		require.Equal(t, Loaded, sherman.MainGun)
		require.True(t, gs.Turn.Pool().Expended[0])
	})

	t.Run("load when loaded still spends the die", func(t *testing.T) {
		events := play(t, gs, Select(3), Perform(Load))
		require.Equal(t, []EventKind{EventWarning}, kinds(events))
		require.True(t, gs.Turn.Pool().Expended[3])
	})

	t.Run("target outside the arc", func(t *testing.T) {
		play(t, gs, Select(2))
		out, err := gs.Play(FireAt(MainGun, "tiger"))
		require.NoError(t, err)
		require.Equal(t, ReasonOutOfArc, out.Reason)
		require.Equal(t, Loaded, sherman.MainGun)
	})

	t.Run("unknown target", func(t *testing.T) {
		out, err := gs.Play(FireAt(MainGun, "panther"))
		require.NoError(t, err)
		require.Equal(t, ReasonNoTarget, out.Reason)
	})
}

func TestVictoryIsAbsorbing(t *testing.T) {
	roller := dice.NewSequence(
		2, 3, 4,
		5, 1, 1, 3,
		6, 6, // hit
		6, // penetrate
		5, // destroyed
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 0, R: 3}, hex.South))

	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Intent{Type: EndPool}, Roll(Attack))
	events := play(t, gs, Select(0), FireAt(MainGun, "tiger"))

	require.Equal(t, Victory, gs.Phase())
	require.Equal(t, string(Player), gs.Winner())
	require.Equal(t, EventVictory, events[len(events)-1].Kind)
	require.Empty(t, gs.AvailableIntents())

	for _, in := range []Intent{{Type: EndPool}, {Type: StartTurn}, Select(1), {Type: ResolveKIACheck}} {
		_, err := gs.Play(in)
		require.True(t, errors.Is(err, ErrGameOver), "%s after victory", in)
	}
}

func TestFireCheckTriggersKIA(t *testing.T) {
	roller := dice.NewSequence(
		2, 3, 4,
		1, 2, 3, 4,
		1, 3, 5,
		2, 5, 6, // fire check: lowest 2
		3, // kia: loader
		4, 4, 4, // enemy field table
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.FireLevel = 3
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: 1}, hex.South))

	play(t, gs, startOps...)
	for _, p := range PoolKinds {
		play(t, gs, Roll(p), Intent{Type: EndPool})
	}
	require.Equal(t, EndOfTurn, gs.Phase())
	require.Equal(t, []Intent{{Type: ResolveFireCheck}}, gs.AvailableIntents())

	events := play(t, gs, Intent{Type: ResolveFireCheck})
	require.Equal(t, []EventKind{EventFireCheck, EventKIACheck}, kinds(events))
	require.Equal(t, 3, sherman.FireLevel, "a 2 is a casualty, not fire spreading")
	require.True(t, gs.Turn.KIAPending)

	_, err := gs.Play(Intent{Type: EndPool})
	require.ErrorIs(t, err, ErrKIAPending)

	play(t, gs, Intent{Type: ResolveKIACheck})
	require.Equal(t, KIA, sherman.Crew.Loader)
	require.Equal(t, 2, gs.Turn.Number)
	require.Equal(t, CommanderDecision, gs.Phase())
	require.False(t, gs.Turn.FireCheckDone)
}

func TestFireCheckDestroys(t *testing.T) {
	roller := dice.NewSequence(
		2, 3, 4,
		1, 2, 3, 4,
		1, 3, 5,
		1,
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.FireLevel = 1
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: 1}, hex.South))

	play(t, gs, startOps...)
	for _, p := range PoolKinds {
		play(t, gs, Roll(p), Intent{Type: EndPool})
	}
	play(t, gs, Intent{Type: ResolveFireCheck})
	require.Equal(t, Defeat, gs.Phase())
	require.Equal(t, string(Enemy), gs.Winner())
}

func TestEmptyPoolIsSkipped(t *testing.T) {
	roller := dice.NewSequence()
	cells := board(3)
	for i := range cells {
		cells[i].Terrain = hex.Mud
	}
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.Crew.Driver = KIA
	sherman.Crew.AssistantDriver = KIA
	gs := newState(cells, roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: -3}, hex.North))

	events := play(t, gs, startOps...)
	require.Equal(t, Attack, gs.Turn.Current)
	require.True(t, gs.Turn.Pools[Maneuver].Closed)
	require.Contains(t, kinds(events), EventPoolSkipped)
}

func TestPoolSizes(t *testing.T) {
	crew := FullCrew()
	popped := crew
	popped.Commander = PoppedHatch
	dead := crew
	dead.Commander = KIA
	dead.Gunner = KIA

	tests := []struct {
		name    string
		pool    PoolKind
		terrain TerrainClass
		crew    Crew
		want    int
	}{
		{"maneuver road", Maneuver, RoadTerrain, crew, 4},
		{"maneuver mud popped", Maneuver, MudTerrain, popped, 3},
		{"attack field", Attack, FieldTerrain, crew, 4},
		{"attack mud gunner dead", Attack, MudTerrain, dead, 2},
		{"misc field", Misc, FieldTerrain, crew, 3},
		{"misc road commander dead", Misc, RoadTerrain, dead, 1},
	}
	rules := NewStandardRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rules.PoolSize(tt.pool, tt.terrain, tt.crew))
		})
	}

	require.Equal(t, RoadTerrain, ClassifyTerrain(hex.Road|hex.Mud))
	require.Equal(t, MudTerrain, ClassifyTerrain(hex.Mud|hex.Forest))
	require.Equal(t, FieldTerrain, ClassifyTerrain(hex.Buildings))
}

func TestMiscPool(t *testing.T) {
	roller := dice.NewSequence(
		2, 3, 4,
		1, 2, 3, 4,
		1, 3, 5, // smoke, hull down, repair
	)
	sherman := newSherman(hex.Coord{}, hex.North)
	sherman.TurretDamaged = true
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: 1}, hex.South))

	play(t, gs, startOps...)
	play(t, gs, Roll(Maneuver), Intent{Type: EndPool}, Roll(Attack), Intent{Type: EndPool})
	require.Equal(t, Misc, gs.Turn.Current)

	play(t, gs, Roll(Misc), Select(0), Perform(Smoke), Select(1), Perform(HullDown))
	cell, _ := gs.Scenario.Board.Cell(hex.Coord{})
	require.True(t, cell.ShermanSmoke)
	require.True(t, sherman.HullDown)

	t.Run("friendly smoke clears at the next turn", func(t *testing.T) {
		roller.Push(4, 4, 4)
		play(t, gs, Select(2), Perform(Repair))
		require.False(t, sherman.TurretDamaged)
		require.Equal(t, 2, gs.Turn.Number)
		cell, _ := gs.Scenario.Board.Cell(hex.Coord{})
		require.False(t, cell.ShermanSmoke)
	})
}

func TestProtocolErrorsLeaveStateUntouched(t *testing.T) {
	roller := dice.NewSequence(2, 3, 4)
	sherman := newSherman(hex.Coord{}, hex.North)
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: 1}, hex.South))

	_, err := gs.Play(Posture(PoppedHatch))
	require.ErrorIs(t, err, ErrWrongPhase)
	require.Equal(t, ButtonedUp, sherman.Crew.Commander)

	play(t, gs, startOps...)
	_, err = gs.Play(Roll(Attack))
	require.ErrorIs(t, err, ErrWrongPhase)
	_, err = gs.Play(Select(0))
	require.ErrorIs(t, err, ErrWrongPhase, "pool not rolled yet")

	play(t, gs, Roll(Maneuver))
	_, err = gs.Play(Select(7))
	require.ErrorIs(t, err, ErrInvalidDie)
	_, err = gs.Play(SelectPair(0, 1))
	require.ErrorIs(t, err, ErrInvalidDie, "2 and 3 are not doubles")
	_, err = gs.Play(Perform(Move))
	require.ErrorIs(t, err, ErrInvalidDie)
	require.Equal(t, -1, gs.Turn.Selected)
}

func TestCopyIsIndependent(t *testing.T) {
	sherman := newSherman(hex.Coord{}, hex.North)
	gs := newState(board(2), dice.NewSequence(), sherman, newEnemy("tiger", hex.Coord{Q: 1, R: 1}, hex.South))
	gs.Turn.Pools[Maneuver].Dice = []int{1, 2}

	snap := gs.Copy()
	sherman.Hex = hex.Coord{Q: 1, R: 0}
	gs.Scenario.Vehicles[1].Destroyed = true
	gs.Scenario.Board.Mark(hex.Coord{}, func(c *hex.Cell) { c.GermanSmoke = true })
	gs.Turn.Pools[Maneuver].Dice[0] = 6

	require.Equal(t, hex.Coord{}, snap.Sherman().Hex)
	require.False(t, snap.Scenario.Vehicles[1].Destroyed)
	cell, _ := snap.Scenario.Board.Cell(hex.Coord{})
	require.False(t, cell.GermanSmoke)
	require.Equal(t, []int{1, 2}, snap.Turn.Pools[Maneuver].Dice)
}

func TestAvailableIntents(t *testing.T) {
	roller := dice.NewSequence(5, 5, 2)
	sherman := newSherman(hex.Coord{}, hex.North)
	gs := newState(board(4), roller, sherman, newEnemy("tiger", hex.Coord{Q: 3, R: 1}, hex.South))

	require.Equal(t, []Intent{{Type: StartTurn}}, gs.AvailableIntents())
	play(t, gs, Intent{Type: StartTurn})
	require.Len(t, gs.AvailableIntents(), 2)
	play(t, gs, Posture(ButtonedUp))
	require.Equal(t, []Intent{Roll(Maneuver)}, gs.AvailableIntents())

	play(t, gs, Roll(Maneuver))
	require.ElementsMatch(t, []Intent{
		Select(0), Select(1), Select(2), SelectPair(0, 1), {Type: EndPool},
	}, gs.AvailableIntents())

	play(t, gs, Select(2))
	require.ElementsMatch(t, []Intent{
		TurnBy(1), TurnBy(-1), Select(0), Select(1), SelectPair(0, 1), {Type: EndPool},
	}, gs.AvailableIntents())

	// every offered intent is accepted
	for _, in := range gs.AvailableIntents() {
		cp := gs.Copy()
		cp.Dice = dice.NewSequence()
		out, err := cp.Play(in)
		require.NoError(t, err, "%s", in)
		require.True(t, out.OK, "%s: %s", in, out.Reason)
	}
}
