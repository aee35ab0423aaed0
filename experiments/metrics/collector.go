package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"sherman/engine"
	"sherman/game"
)

const meterName = "sherman/experiments"

// TurnMetric tallies what happened during one turn.
type TurnMetric struct {
	Turn         int
	Shots        int // fired by the Sherman
	Hits         int
	Penetrations int
	EnemyShots   int
	EnemyHits    int
	Kills        int
	Casualties   int
	EnemiesLeft  int
	// Material is game.EvaluateMaterial at the end of the turn.
	Material float64
}

type GameMetric struct {
	Commander  string
	Seed       uint64
	Winner     string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Turns      int
	Steps      int
	Rejected   int
	Shots      int
	Hits       int
	Kills      int
	Casualties int
	Material   float64
}

// Collector watches the updates of one game at a time.
type Collector interface {
	Start(ctx context.Context, commander string, seed uint64)
	Observe(u engine.Update)
	Complete(res engine.Result) (GameMetric, []TurnMetric)
}

type collector struct {
	intents metric.Int64Counter
	events  metric.Int64Counter
	turns   metric.Int64Histogram

	ctx       context.Context
	game      GameMetric
	current   TurnMetric
	completed []TurnMetric
	material  float64
}

// NewCollector records into the given meter, or the global otel meter when nil.
func NewCollector(meter metric.Meter) (Collector, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	intents, err := meter.Int64Counter("sherman.intents",
		metric.WithDescription("Intents applied by autopilot commanders"))
	if err != nil {
		return nil, fmt.Errorf("intent counter: %w", err)
	}
	events, err := meter.Int64Counter("sherman.events",
		metric.WithDescription("Rule events by kind"))
	if err != nil {
		return nil, fmt.Errorf("event counter: %w", err)
	}
	turns, err := meter.Int64Histogram("sherman.game.turns",
		metric.WithDescription("Length of finished games"), metric.WithUnit("{turn}"))
	if err != nil {
		return nil, fmt.Errorf("turn histogram: %w", err)
	}
	return &collector{intents: intents, events: events, turns: turns, ctx: context.Background()}, nil
}

func (m *collector) Start(ctx context.Context, commander string, seed uint64) {
	m.ctx = ctx
	m.game = GameMetric{Commander: commander, Seed: seed, StartTime: time.Now()}
	m.current = TurnMetric{Turn: 1}
	m.completed = nil
	m.material = 0
}

func (m *collector) Observe(u engine.Update) {
	m.intents.Add(m.ctx, 1, metric.WithAttributes(
		attribute.String("intent", u.Intent.Type.String()),
		attribute.Bool("ok", u.Outcome.OK),
	))

	for _, ev := range u.Outcome.Events {
		m.events.Add(m.ctx, 1, metric.WithAttributes(attribute.String("kind", string(ev.Kind))))
		m.tally(u.State, ev)
	}

	m.material = game.EvaluateMaterial(u.State)
	if u.State.Turn.Number != m.current.Turn || u.State.Phase().Terminal() {
		m.closeTurn(u.State)
		m.current = TurnMetric{Turn: u.State.Turn.Number}
	}
}

// tally counts an event against the turn it was stamped with.
func (m *collector) tally(state *game.GameState, ev game.Event) {
	t := &m.current
	own := false
	if v := state.Scenario.Vehicle(ev.Unit); v != nil {
		own = v.IsPlayer()
	}
	switch ev.Kind {
	case game.EventShot:
		if own {
			t.Shots++
		} else {
			t.EnemyShots++
		}
	case game.EventHit:
		// hits are reported against the vehicle struck
		if own {
			t.EnemyHits++
		} else {
			t.Hits++
		}
	case game.EventPenetration:
		if !own {
			t.Penetrations++
		}
	case game.EventDestroyed:
		if !own {
			t.Kills++
		}
	case game.EventCasualty:
		t.Casualties++
	}
}

func (m *collector) closeTurn(state *game.GameState) {
	m.current.Material = m.material
	m.current.EnemiesLeft = len(state.Scenario.Enemies())
	m.completed = append(m.completed, m.current)
}

func (m *collector) Complete(res engine.Result) (GameMetric, []TurnMetric) {
	g := m.game
	g.EndTime = time.Now()
	g.Duration = g.EndTime.Sub(g.StartTime)
	g.Winner = res.Winner
	g.Turns = res.Turns
	g.Steps = res.Steps
	g.Rejected = res.Rejected
	g.Material = m.material

	turns := m.completed
	for _, t := range turns {
		g.Shots += t.Shots
		g.Hits += t.Hits
		g.Kills += t.Kills
		g.Casualties += t.Casualties
	}

	winner := res.Winner
	if winner == "" {
		winner = "none"
	}
	m.turns.Record(m.ctx, int64(res.Turns), metric.WithAttributes(
		attribute.String("commander", g.Commander),
		attribute.String("winner", winner),
	))
	return g, turns
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(context.Context, string, uint64) {}
func (m *dummyCollector) Observe(engine.Update)                 {}
func (m *dummyCollector) Complete(res engine.Result) (GameMetric, []TurnMetric) {
	return GameMetric{Winner: res.Winner, Turns: res.Turns, Steps: res.Steps, Rejected: res.Rejected}, nil
}
