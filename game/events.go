package game

import (
	"fmt"
	"time"
)

type EventKind string

const (
	EventTurnStarted    EventKind = "turn_started"
	EventPosture        EventKind = "posture"
	EventPoolRolled     EventKind = "pool_rolled"
	EventPoolSkipped    EventKind = "pool_skipped"
	EventPoolClosed     EventKind = "pool_closed"
	EventMoved          EventKind = "moved"
	EventTurned         EventKind = "turned"
	EventIllegal        EventKind = "illegal"
	EventLoaded         EventKind = "loaded"
	EventShot           EventKind = "shot"
	EventHit            EventKind = "hit"
	EventMiss           EventKind = "miss"
	EventBounce         EventKind = "bounce"
	EventPenetration    EventKind = "penetration"
	EventDamaged        EventKind = "damaged"
	EventDestroyed      EventKind = "destroyed"
	EventKIACheck       EventKind = "kia_check"
	EventCasualty       EventKind = "casualty"
	EventFire           EventKind = "fire"
	EventTurretDamaged  EventKind = "turret_damaged"
	EventImmobilized    EventKind = "immobilized"
	EventSmoke          EventKind = "smoke"
	EventHullDown       EventKind = "hull_down"
	EventRepaired       EventKind = "repaired"
	EventExtinguished   EventKind = "extinguished"
	EventWarning        EventKind = "warning"
	EventFireCheck      EventKind = "fire_check"
	EventAIRolled       EventKind = "ai_rolled"
	EventAIStep         EventKind = "ai_step"
	EventAIInterrupted  EventKind = "ai_interrupted"
	EventVictory        EventKind = "victory"
	EventDefeat         EventKind = "defeat"
	EventNextTurn       EventKind = "next_turn"
)

// Pacing hints for the presentation layer. Rule logic never waits on them.
const (
	HintPoolSettle = 500 * time.Millisecond
	HintAIStep     = 1500 * time.Millisecond
	HintBounce     = 800 * time.Millisecond
	HintSmoke      = 1200 * time.Millisecond
	HintHit        = 1000 * time.Millisecond
)

// Event is a record of something that happened while resolving an intent.
type Event struct {
	Kind    EventKind
	Turn    int
	Unit    string
	Message string
	Data    map[string]any
	Hint    time.Duration
}

func (e Event) String() string {
	if e.Unit == "" {
		return fmt.Sprintf("[turn %d] %s: %s", e.Turn, e.Kind, e.Message)
	}
	return fmt.Sprintf("[turn %d] %s %s: %s", e.Turn, e.Unit, e.Kind, e.Message)
}

// emit appends an event stamped with the current turn.
func (gs *GameState) emit(kind EventKind, unit *Vehicle, format string, args ...any) *Event {
	e := Event{
		Kind:    kind,
		Turn:    gs.Turn.Number,
		Message: fmt.Sprintf(format, args...),
	}
	if unit != nil {
		e.Unit = unit.ID
	}
	gs.events = append(gs.events, e)
	return &gs.events[len(gs.events)-1]
}

func (e *Event) with(key string, value any) *Event {
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	e.Data[key] = value
	return e
}

func (e *Event) hint(d time.Duration) *Event {
	e.Hint = d
	return e
}
