package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"sherman/dice"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrWrongPhase    = errors.New("intent not valid in this phase")
	ErrInvalidDie    = errors.New("invalid die selection")
	ErrInvalidAction = errors.New("invalid action")
	ErrKIAPending    = errors.New("kia check pending")
	ErrUnknownIntent = errors.New("unknown intent")
)

type Phase int

const (
	Initial Phase = iota
	CommanderDecision
	ShermanOperations
	EndOfTurn
	AIPhase
	Victory
	Defeat
)

func (p Phase) String() string {
	return [...]string{
		"initial", "commander decision", "sherman operations", "end of turn",
		"ai phase", "victory", "defeat",
	}[p]
}

func (p Phase) Terminal() bool {
	return p == Victory || p == Defeat
}

// TurnState is the per-turn bookkeeping of the state machine.
type TurnState struct {
	Number  int
	Phase   Phase
	Current PoolKind
	Pools   [3]Pool
	// Selected is the single die chosen from the current pool, -1 for none.
	Selected int
	// Pair is the doubles selection while Remaining > 0.
	Pair      [2]int
	Remaining int

	KIAPending    bool
	FireCheckDone bool
}

func newTurn(number int) TurnState {
	ts := TurnState{Number: number, Phase: CommanderDecision, Selected: -1}
	for _, k := range PoolKinds {
		ts.Pools[k] = Pool{Kind: k}
	}
	return ts
}

// Pool returns the pool currently being worked.
func (ts *TurnState) Pool() *Pool {
	return &ts.Pools[ts.Current]
}

// Doubles reports whether a doubles pair is in progress.
func (ts *TurnState) Doubles() bool {
	return ts.Remaining > 0
}

func (ts *TurnState) clearSelection() {
	ts.Selected = -1
	ts.Pair = [2]int{}
	ts.Remaining = 0
}

func (ts TurnState) copy() TurnState {
	for i := range ts.Pools {
		ts.Pools[i] = ts.Pools[i].copy()
	}
	return ts
}

// GameState is the whole mutable state of a session. It is owned by a single
// writer; observers get copies.
type GameState struct {
	Scenario *Scenario
	Turn     TurnState
	Rules    Rules
	Dice     dice.Roller

	events []Event
}

// NewGameState starts a session in the initial phase on turn 1.
func NewGameState(s *Scenario, rules Rules, roller dice.Roller) *GameState {
	gs := &GameState{
		Scenario: s,
		Turn:     newTurn(1),
		Rules:    rules,
		Dice:     roller,
	}
	gs.Turn.Phase = Initial
	return gs
}

// Copy returns a deep copy. Rules and the roller are shared.
func (gs *GameState) Copy() *GameState {
	return &GameState{
		Scenario: gs.Scenario.Copy(),
		Turn:     gs.Turn.copy(),
		Rules:    gs.Rules,
		Dice:     gs.Dice,
	}
}

func (gs *GameState) Phase() Phase {
	return gs.Turn.Phase
}

func (gs *GameState) Sherman() *Vehicle {
	return gs.Scenario.Sherman()
}

// Winner returns the winning faction, or "" while the game is running.
func (gs *GameState) Winner() string {
	switch gs.Turn.Phase {
	case Victory:
		return string(Player)
	case Defeat:
		return string(Enemy)
	}
	return ""
}

// Play applies one intent. Protocol misuse returns an error and leaves the state
// untouched; an illegal action returns an Outcome with OK false, also without
// changes.
func (gs *GameState) Play(in Intent) (Outcome, error) {
	if gs.Turn.Phase.Terminal() {
		return Outcome{}, fmt.Errorf("%s: %w", in, ErrGameOver)
	}
	if gs.Turn.KIAPending && in.Type != ResolveKIACheck {
		return Outcome{}, fmt.Errorf("%s: %w", in, ErrKIAPending)
	}

	gs.events = nil
	reason, err := gs.apply(in)
	if err != nil {
		gs.events = nil
		return Outcome{}, err
	}
	if reason == "" {
		gs.checkTerminal()
	} else {
		gs.events = nil
		gs.emit(EventIllegal, gs.Sherman(), "%s: %s", in, reason)
		log.Debug().Msgf("Rejected %s: %s", in, reason)
	}
	out := Outcome{OK: reason == "", Reason: reason, Events: gs.events}
	gs.events = nil
	return out, nil
}

func (gs *GameState) apply(in Intent) (reason string, err error) {
	switch in.Type {
	case StartTurn:
		return "", gs.startTurn()
	case ChoosePosture:
		return "", gs.choosePosture(in.Posture)
	case RollPool:
		return "", gs.rollPool(in.Pool)
	case SelectDie:
		return "", gs.selectDie(in.Die)
	case SelectDoubles:
		return gs.selectDoubles(in.Pair)
	case PerformAction:
		return gs.performAction(in)
	case EndPool:
		return "", gs.endPool()
	case ResolveFireCheck:
		return "", gs.resolveFireCheck()
	case ResolveKIACheck:
		return "", gs.resolveKIACheck()
	}
	return "", fmt.Errorf("%d: %w", in.Type, ErrUnknownIntent)
}

func (gs *GameState) requirePhase(in IntentType, p Phase) error {
	if gs.Turn.Phase != p {
		return fmt.Errorf("%s during %s: %w", in, gs.Turn.Phase, ErrWrongPhase)
	}
	return nil
}

// checkTerminal ends the game as soon as either side is wiped out.
func (gs *GameState) checkTerminal() {
	if gs.Turn.Phase.Terminal() {
		return
	}
	sherman := gs.Sherman()
	switch {
	case sherman.Destroyed:
		gs.Turn.Phase = Defeat
		gs.Turn.KIAPending = false
		gs.emit(EventDefeat, sherman, "%s has been destroyed", sherman.Label())
	case len(gs.Scenario.Enemies()) == 0:
		gs.Turn.Phase = Victory
		gs.emit(EventVictory, sherman, "all enemy vehicles destroyed")
	}
}
