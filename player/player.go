// Package player holds the autopilot commanders that drive the Sherman when
// no human is at the controls.
package player

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"

	"sherman/engine"
	"sherman/game"
	"sherman/searcher"
)

var commanders = map[string]func(seed uint64) engine.Commander{
	"random":     func(seed uint64) engine.Commander { return NewRandomCommander(seed) },
	"aggressive": func(uint64) engine.Commander { return NewAggressiveCommander() },
	"greedy":     func(seed uint64) engine.Commander { return NewGreedyCommander(seed, game.EvaluateThreat, 0.1) },
	"search":     func(seed uint64) engine.Commander { return NewSearchCommander(seed) },
}

// Names lists the registered commanders in alphabetical order.
func Names() []string {
	names := maps.Keys(commanders)
	slices.Sort(names)
	return names
}

// New builds the commander registered under name.
func New(name string, seed uint64) (engine.Commander, error) {
	build, ok := commanders[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown commander %q, expected one of %s", name, strings.Join(Names(), ", "))
	}
	return build(seed), nil
}

// NewSearchCommander runs a small Monte Carlo search before every choice.
func NewSearchCommander(seed uint64) *searcher.MCTS {
	return searcher.NewMCTS(4,
		searcher.WithEpisodes(100),
		searcher.WithCutoff(20),
		searcher.WithEvaluationFn(game.EvaluateThreat),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	)
}

// RandomCommander picks uniformly among the available intents.
type RandomCommander struct {
	rng *rand.Rand
}

func NewRandomCommander(seed uint64) *RandomCommander {
	return &RandomCommander{rng: rand.New(rand.NewSource(seed))}
}

func (c *RandomCommander) Name() string { return "random" }

func (c *RandomCommander) Choose(_ *game.GameState, intents []game.Intent) game.Intent {
	return intents[c.rng.Intn(len(intents))]
}
