package game

import "fmt"

// IntentType is the kind of input a commander can submit.
type IntentType int

const (
	StartTurn IntentType = iota
	ChoosePosture
	RollPool
	SelectDie
	SelectDoubles
	PerformAction
	EndPool
	ResolveFireCheck
	ResolveKIACheck
)

func (t IntentType) String() string {
	return [...]string{
		"start turn", "choose posture", "roll pool", "select die", "select doubles",
		"perform action", "end pool", "resolve fire check", "resolve kia check",
	}[t]
}

// Intent is a single user input. Only the fields relevant to Type are read.
type Intent struct {
	Type    IntentType
	Posture CrewStatus // ChoosePosture
	Pool    PoolKind   // RollPool
	Die     int        // SelectDie
	Pair    [2]int     // SelectDoubles
	Action  Action     // PerformAction
	Steps   int        // TURN: +1 clockwise, -1 counter-clockwise
	Target  string     // FIRE_*: target vehicle id
}

func (in Intent) String() string {
	switch in.Type {
	case ChoosePosture:
		return fmt.Sprintf("%s %s", in.Type, in.Posture)
	case RollPool:
		return fmt.Sprintf("%s %s", in.Type, in.Pool)
	case SelectDie:
		return fmt.Sprintf("%s %d", in.Type, in.Die)
	case SelectDoubles:
		return fmt.Sprintf("%s %d+%d", in.Type, in.Pair[0], in.Pair[1])
	case PerformAction:
		switch in.Action {
		case Turn:
			return fmt.Sprintf("%s %s %+d", in.Type, in.Action, in.Steps)
		case FireMG, FireMainGun:
			return fmt.Sprintf("%s %s at %s", in.Type, in.Action, in.Target)
		}
		return fmt.Sprintf("%s %s", in.Type, in.Action)
	}
	return in.Type.String()
}

func Posture(p CrewStatus) Intent { return Intent{Type: ChoosePosture, Posture: p} }
func Roll(p PoolKind) Intent      { return Intent{Type: RollPool, Pool: p} }
func Select(die int) Intent       { return Intent{Type: SelectDie, Die: die} }
func SelectPair(a, b int) Intent  { return Intent{Type: SelectDoubles, Pair: [2]int{a, b}} }
func Perform(a Action) Intent     { return Intent{Type: PerformAction, Action: a} }
func TurnBy(steps int) Intent     { return Intent{Type: PerformAction, Action: Turn, Steps: steps} }

func FireAt(w Weapon, target string) Intent {
	a := FireMainGun
	if w == MachineGun {
		a = FireMG
	}
	return Intent{Type: PerformAction, Action: a, Target: target}
}

// Outcome is the result of applying an intent. Illegal actions come back with
// OK false and a reason; nothing is applied.
type Outcome struct {
	OK     bool
	Reason string
	Events []Event
}
