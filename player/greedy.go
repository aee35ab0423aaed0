package player

import (
	"math"

	"golang.org/x/exp/rand"

	"sherman/dice"
	"sherman/game"
)

// GreedyCommander looks one intent ahead: every available intent is tried on a
// copy of the state, scored with an evaluation function, and the choice is
// sampled from the temperature-adjusted scores.
type GreedyCommander struct {
	evaluate    game.Evaluate
	temperature float64
	rng         *rand.Rand
	// sim rolls the dice for lookahead so the game's own dice stream is untouched
	sim *dice.Random
}

func NewGreedyCommander(seed uint64, evaluate game.Evaluate, temperature float64) *GreedyCommander {
	return &GreedyCommander{
		evaluate:    evaluate,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
		sim:         dice.NewRandom(seed + 1),
	}
}

func (c *GreedyCommander) Name() string { return "greedy" }

func (c *GreedyCommander) Choose(state *game.GameState, intents []game.Intent) game.Intent {
	if len(intents) == 1 {
		return intents[0]
	}
	scores := make([]float64, len(intents))
	for i, in := range intents {
		sim := state.Copy()
		sim.Dice = c.sim
		out, err := sim.Play(in)
		if err != nil || !out.OK {
			scores[i] = math.Inf(-1)
			continue
		}
		scores[i] = c.evaluate(sim)
	}
	policy := adjustTemperature(scores, c.temperature)
	return intents[sample(policy, c.rng.Float64())]
}

// adjustTemperature turns scores into probabilities. Low temperatures approach
// always taking the best score.
func adjustTemperature(scores []float64, temperature float64) []float64 {
	if temperature <= 0 {
		temperature = 1e-3
	}
	best := math.Inf(-1)
	for _, s := range scores {
		best = max(best, s)
	}
	policy := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		if math.IsInf(s, -1) {
			continue
		}
		// shift by the best score so the exponent never overflows
		policy[i] = math.Exp((s - best) / temperature)
		sum += policy[i]
	}
	if sum == 0 {
		for i := range policy {
			policy[i] = 1 / float64(len(policy))
		}
		return policy
	}
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

// sample picks an index from policy given a uniform draw in [0, 1).
func sample(policy []float64, draw float64) int {
	cumulative := 0.0
	last := 0
	for i, prob := range policy {
		if prob == 0 {
			continue
		}
		last = i
		cumulative += prob
		if draw < cumulative {
			return i
		}
	}
	return last // rounding
}
