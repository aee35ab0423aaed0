// Package dice provides the six-sided dice used by the rules.
package dice

import (
	"fmt"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

// Roller produces six-sided die results and random orderings.
type Roller interface {
	D6() int
	Shuffle(n int, swap func(i, j int))
}

// Random is a seeded pseudo-random roller.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) D6() int {
	return r.rng.Intn(6) + 1
}

func (r *Random) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// Read fills p from the same stream, so identifiers derived from it are
// reproducible for a given seed.
func (r *Random) Read(p []byte) (int, error) {
	return r.rng.Read(p)
}

// Sequence replays a fixed list of results. It never reorders on Shuffle.
// Running out of results is a programming error and panics.
type Sequence struct {
	values []int
	next   int
}

func NewSequence(values ...int) *Sequence {
	for _, v := range values {
		if v < 1 || v > 6 {
			panic(fmt.Sprintf("dice: %d is not a d6 result", v))
		}
	}
	return &Sequence{values: values}
}

func (s *Sequence) D6() int {
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("dice: sequence exhausted after %d rolls", len(s.values)))
	}
	v := s.values[s.next]
	s.next++
	return v
}

func (s *Sequence) Shuffle(int, func(i, j int)) {}

// Push appends more results to the end of the sequence.
func (s *Sequence) Push(values ...int) {
	s.values = append(s.values, NewSequence(values...).values...)
}

// Remaining reports how many results are left.
func (s *Sequence) Remaining() int {
	return len(s.values) - s.next
}

// Roll rolls n dice in order.
func Roll(r Roller, n int) []int {
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = r.D6()
	}
	return rolls
}

// Result is a multi-die roll and its total.
type Result struct {
	Dice  []int
	Total int
}

func Roll2D6(r Roller) Result {
	rolls := Roll(r, 2)
	return Result{Dice: rolls, Total: rolls[0] + rolls[1]}
}

// Sorted returns an ascending copy of rolls.
func Sorted(rolls []int) []int {
	out := slices.Clone(rolls)
	slices.Sort(out)
	return out
}

// Lowest returns the smallest roll, or 0 for no rolls.
func Lowest(rolls []int) int {
	if len(rolls) == 0 {
		return 0
	}
	return slices.Min(rolls)
}
