// Package searcher picks the Sherman's intents by Monte Carlo search: the
// available intents are the arms of a UCB1 bandit, and each episode plays one
// of them followed by a random rollout on a private copy of the state.
package searcher

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"sherman/dice"
	"sherman/game"
)

const C_SQUARED = 2.0

// Rewards are kept in [0, 1] so they mix with evaluations at the cutoff.
const WIN = 1.0
const LOSS = 0.0

// MaxCutoff is the default rollout depth, in intents.
const MaxCutoff = 50

type Option func(mcts *MCTS)

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

// WithCutoff bounds the rollout depth. Zero evaluates right after the candidate
// intent.
func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth >= 0 {
			m.cutoff = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewMetricsCollector()
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluate
	seed       uint64
	rounds     atomic.Uint64
	metrics    MetricsCollector
	last       SearchMetrics
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines: max(goroutines, 1),
		cutoff:     MaxCutoff,
		evaluate:   game.EvaluateMaterial,
		metrics:    NewNoMetricsCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

func (m *MCTS) Name() string { return "search" }

// Choose returns the most visited intent.
func (m *MCTS) Choose(state *game.GameState, intents []game.Intent) game.Intent {
	if len(intents) == 1 {
		return intents[0]
	}
	policy := m.Simulate(state, intents)
	log.Debug().Msgf("search: %d episodes, %d full playouts in %s",
		m.last.Episodes, m.last.FullPlayouts, m.last.Duration)
	return intents[findMax(policy)]
}

// Metrics reports on the last search.
func (m *MCTS) Metrics() SearchMetrics {
	return m.last
}

// Simulate runs the search and returns the visit share of each intent.
func (m *MCTS) Simulate(state *game.GameState, intents []game.Intent) []float64 {
	root := newRoot(len(intents))
	// every search and every worker gets its own dice stream
	base := m.seed + m.rounds.Add(1)*uint64(m.goroutines+1)

	m.metrics.Start()
	if m.episodes > 0 {
		m.iterate(root, state, intents, base)
	} else {
		m.countdown(root, state, intents, base)
	}
	m.last = m.metrics.Complete()
	return root.policy()
}

func (m *MCTS) iterate(root *root, state *game.GameState, intents []game.Intent, base uint64) {
	task := make(chan any, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- nil
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			w := newWorker(seed)

			for range task {
				m.simulate(w, root, state, intents)
				m.metrics.AddEpisode()
			}
		}(base + uint64(i))
	}

	wg.Wait()
}

func (m *MCTS) countdown(root *root, state *game.GameState, intents []game.Intent, base uint64) {
	done := make(chan any)

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			w := newWorker(seed)
			for {
				select {
				case <-done:
					return
				default:
					m.simulate(w, root, state, intents)
					m.metrics.AddEpisode()
				}
			}
		}(base + uint64(i))
	}

	<-time.After(m.duration)
	close(done)
	wg.Wait()
}

// worker holds the randomness of one goroutine; neither source is safe to share.
type worker struct {
	rng    *rand.Rand
	roller *dice.Random
}

func newWorker(seed uint64) worker {
	return worker{rng: rand.New(rand.NewSource(seed)), roller: dice.NewRandom(seed)}
}

func (m *MCTS) simulate(w worker, root *root, state *game.GameState, intents []game.Intent) {
	arm := root.pick()
	sim := state.Copy()
	sim.Dice = w.roller
	if out, err := sim.Play(intents[arm]); err != nil || !out.OK {
		root.update(arm, LOSS)
		return
	}
	root.update(arm, rollout(sim, m.cutoff, m.evaluate, w.rng, m.metrics))
}

// rollout plays random intents until the game ends or cutoff is reached.
func rollout(state *game.GameState, cutoff int, evaluate game.Evaluate, rng *rand.Rand, metrics MetricsCollector) float64 {
	depth := 0
	intents := state.AvailableIntents()
	for len(intents) > 0 && depth < cutoff {
		in := intents[rng.Intn(len(intents))] // Random rollout policy
		if _, err := state.Play(in); err != nil {
			log.Warn().Err(err).Msgf("rollout rejected %s", in)
			break
		}
		intents = state.AvailableIntents()
		depth++
	}

	if state.Phase().Terminal() { // Game over before cutoff
		metrics.AddFullPlayout()
		if state.Winner() == string(game.Player) {
			return WIN
		}
		return LOSS
	}
	// evaluations are in [-1, 1]
	return (evaluate(state) + 1) / 2
}

// root keeps the bandit statistics of the intents under consideration.
type root struct {
	sync.Mutex
	rewards []float64
	visits  []int
	total   int
}

func newRoot(arms int) *root {
	return &root{rewards: make([]float64, arms), visits: make([]int, arms)}
}

// pick chooses the next arm and counts the visit straight away, so parallel
// workers spread out before the reward is known.
func (r *root) pick() int {
	r.Lock()
	defer r.Unlock()

	best := 0
	for i, n := range r.visits {
		if n == 0 { // Prioritize unexplored arms
			best = i
			break
		}
		if ucb1(r.rewards[i], n, r.total) > ucb1(r.rewards[best], r.visits[best], r.total) {
			best = i
		}
	}
	r.visits[best]++
	r.total++
	return best
}

func (r *root) update(arm int, reward float64) {
	r.Lock()
	defer r.Unlock()
	r.rewards[arm] += reward
}

func (r *root) policy() []float64 {
	r.Lock()
	defer r.Unlock()
	policy := make([]float64, len(r.visits))
	if r.total == 0 {
		return policy
	}
	for i, n := range r.visits {
		policy[i] = float64(n) / float64(r.total)
	}
	return policy
}

func ucb1(rewards float64, visits, total int) float64 {
	if visits == 0 {
		return math.Inf(1)
	}
	return rewards/float64(visits) + math.Sqrt(C_SQUARED*math.Log(float64(total))/float64(visits))
}

func findMax(policy []float64) int {
	best := 0
	for i, p := range policy {
		if p > policy[best] {
			best = i
		}
	}
	return best
}
