package game

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"sherman/dice"
	"sherman/hex"
)

func (gs *GameState) startTurn() error {
	if err := gs.requirePhase(StartTurn, Initial); err != nil {
		return err
	}
	gs.clearSmoke(Player)
	gs.Turn.Phase = CommanderDecision
	gs.emit(EventTurnStarted, gs.Sherman(), "turn %d begins", gs.Turn.Number)
	return nil
}

func (gs *GameState) choosePosture(p CrewStatus) error {
	if err := gs.requirePhase(ChoosePosture, CommanderDecision); err != nil {
		return err
	}
	if p != ButtonedUp && p != PoppedHatch {
		return fmt.Errorf("posture %q: %w", p, ErrInvalidAction)
	}
	sherman := gs.Sherman()
	if sherman.Crew.Alive(Commander) {
		sherman.Crew.Commander = p
		gs.emit(EventPosture, sherman, "commander is %s", p)
	} else {
		gs.emit(EventPosture, sherman, "commander is dead, posture ignored")
	}
	gs.Turn.Phase = ShermanOperations
	gs.enterPool(Maneuver)
	return nil
}

// enterPool makes p the current pool, skipping it if it has no dice.
func (gs *GameState) enterPool(p PoolKind) {
	gs.Turn.Current = p
	gs.Turn.clearSelection()
	if gs.poolSize(p) == 0 {
		gs.Turn.Pools[p].Closed = true
		gs.emit(EventPoolSkipped, gs.Sherman(), "%s pool has no dice", p).with("pool", p.String())
		gs.advancePool()
	}
}

func (gs *GameState) poolSize(p PoolKind) int {
	sherman := gs.Sherman()
	terrain := ClassifyTerrain(gs.Scenario.TerrainAt(sherman.Hex))
	return gs.Rules.PoolSize(p, terrain, sherman.Crew)
}

// advancePool moves past the current (closed) pool. Misc follows only once
// Maneuver and Attack are both closed; after Misc come the end-of-turn checks.
func (gs *GameState) advancePool() {
	switch gs.Turn.Current {
	case Maneuver:
		gs.enterPool(Attack)
	case Attack:
		if gs.Turn.Pools[Maneuver].Closed {
			gs.enterPool(Misc)
		}
	case Misc:
		gs.enterEndOfTurn()
	}
}

func (gs *GameState) rollPool(p PoolKind) error {
	if err := gs.requirePhase(RollPool, ShermanOperations); err != nil {
		return err
	}
	pool := gs.Turn.Pool()
	if p != gs.Turn.Current {
		return fmt.Errorf("cannot roll %s while on %s: %w", p, gs.Turn.Current, ErrWrongPhase)
	}
	if pool.Rolled {
		return fmt.Errorf("%s pool already rolled: %w", p, ErrWrongPhase)
	}
	n := gs.poolSize(p)
	pool.Dice = dice.Roll(gs.Dice, n)
	pool.Expended = make([]bool, n)
	pool.Rolled = true
	gs.emit(EventPoolRolled, gs.Sherman(), "%s pool rolled %v", p, pool.Dice).
		with("pool", p.String()).with("dice", pool.Dice)
	return nil
}

func (gs *GameState) requireRolled(in IntentType) (*Pool, error) {
	if err := gs.requirePhase(in, ShermanOperations); err != nil {
		return nil, err
	}
	pool := gs.Turn.Pool()
	if !pool.Rolled {
		return nil, fmt.Errorf("%s pool not rolled: %w", pool.Kind, ErrWrongPhase)
	}
	return pool, nil
}

// selectionLocked reports whether a doubles pair has already spent an action.
func (ts *TurnState) selectionLocked() bool {
	return ts.Remaining == 1
}

func (gs *GameState) selectDie(i int) error {
	pool, err := gs.requireRolled(SelectDie)
	if err != nil {
		return err
	}
	if !pool.usable(i) {
		return fmt.Errorf("die %d: %w", i, ErrInvalidDie)
	}
	if gs.Turn.selectionLocked() {
		return fmt.Errorf("doubles in progress: %w", ErrInvalidDie)
	}
	gs.Turn.clearSelection()
	gs.Turn.Selected = i
	return nil
}

func (gs *GameState) selectDoubles(pair [2]int) (string, error) {
	pool, err := gs.requireRolled(SelectDoubles)
	if err != nil {
		return "", err
	}
	a, b := pair[0], pair[1]
	if a == b || !pool.usable(a) || !pool.usable(b) || pool.Dice[a] != pool.Dice[b] {
		return "", fmt.Errorf("pair %d+%d: %w", a, b, ErrInvalidDie)
	}
	if gs.Turn.selectionLocked() {
		return "", fmt.Errorf("doubles in progress: %w", ErrInvalidDie)
	}
	if !doublesAllowed(pool.Kind, gs.Sherman().Crew) {
		return fmt.Sprintf("no crew left to act twice from the %s pool", pool.Kind), nil
	}
	gs.Turn.clearSelection()
	gs.Turn.Pair = pair
	gs.Turn.Remaining = 2
	return "", nil
}

func (gs *GameState) endPool() error {
	pool, err := gs.requireRolled(EndPool)
	if err != nil {
		return err
	}
	pool.expendAll()
	gs.closePool()
	return nil
}

// expendSelection consumes the selected die, or one action of a doubles pair,
// and closes the pool once every die is spent.
func (gs *GameState) expendSelection() {
	pool := gs.Turn.Pool()
	switch {
	case gs.Turn.Doubles():
		gs.Turn.Remaining--
		if gs.Turn.Remaining > 0 {
			return
		}
		pool.Expended[gs.Turn.Pair[0]] = true
		pool.Expended[gs.Turn.Pair[1]] = true
	case gs.Turn.Selected >= 0:
		pool.Expended[gs.Turn.Selected] = true
	}
	gs.Turn.clearSelection()
	if pool.exhausted() {
		gs.closePool()
	}
}

func (gs *GameState) closePool() {
	pool := gs.Turn.Pool()
	pool.Closed = true
	gs.Turn.clearSelection()
	gs.emit(EventPoolClosed, gs.Sherman(), "%s pool finished", pool.Kind).
		with("pool", pool.Kind.String()).hint(HintPoolSettle)
	gs.advancePool()
}

func (gs *GameState) enterEndOfTurn() {
	gs.Turn.Phase = EndOfTurn
	if gs.Sherman().FireLevel > 0 && !gs.Turn.FireCheckDone {
		return
	}
	gs.runAIPhase()
}

func (gs *GameState) resolveFireCheck() error {
	if err := gs.requirePhase(ResolveFireCheck, EndOfTurn); err != nil {
		return err
	}
	sherman := gs.Sherman()
	if sherman.FireLevel == 0 || gs.Turn.FireCheckDone {
		return fmt.Errorf("no fire check due: %w", ErrWrongPhase)
	}
	fc := gs.fireCheck(sherman)
	gs.Turn.FireCheckDone = true
	switch {
	case sherman.Destroyed:
		return nil
	case fc.KIA:
		gs.Turn.KIAPending = true
		return nil
	}
	gs.runAIPhase()
	return nil
}

func (gs *GameState) resolveKIACheck() error {
	if !gs.Turn.KIAPending {
		return fmt.Errorf("no kia check due: %w", ErrWrongPhase)
	}
	gs.applyKIA(gs.Sherman(), gs.Dice.D6())
	gs.Turn.KIAPending = false
	if gs.Turn.Phase == EndOfTurn {
		gs.runAIPhase()
	}
	return nil
}

// runAIPhase lets every enemy act, then either ends the game or starts the next
// turn at the commander decision.
func (gs *GameState) runAIPhase() {
	gs.Turn.Phase = AIPhase
	gs.runEnemies()

	sherman := gs.Sherman()
	if sherman.Destroyed || len(gs.Scenario.Enemies()) == 0 {
		gs.checkTerminal()
		return
	}
	gs.Turn = newTurn(gs.Turn.Number + 1)
	gs.clearSmoke(Player)
	gs.emit(EventNextTurn, sherman, "turn %d begins", gs.Turn.Number)
	log.Debug().Msgf("Turn %d", gs.Turn.Number)
}

// clearSmoke removes the smoke laid by one side.
func (gs *GameState) clearSmoke(f Faction) {
	gs.Scenario.Board.Each(func(c *hex.Cell) {
		if f == Player {
			c.ShermanSmoke = false
		} else {
			c.GermanSmoke = false
		}
	})
}
