package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"sherman/game"
	"sherman/meta"
)

type Option func(e *Engine)

// WithMaxTurns stops Run once the given turn number is passed.
func WithMaxTurns(turns int) Option {
	return func(e *Engine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithBuffer sets the per-subscriber update buffer.
func WithBuffer(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.buffer = size
		}
	}
}

// WithObserver registers a callback invoked synchronously with every update.
func WithObserver(observe func(Update)) Option {
	return func(e *Engine) {
		if observe != nil {
			e.observers = append(e.observers, observe)
		}
	}
}

// Engine owns the single mutable game state. Intents are applied one at a time;
// everyone else sees snapshots.
type Engine struct {
	mu          sync.Mutex
	state       *game.GameState
	subscribers []chan Update
	observers   []func(Update)
	buffer      int
	maxTurns    int
	closed      bool
}

func New(state *game.GameState, options ...Option) *Engine {
	e := &Engine{ // Default values
		state:    state,
		buffer:   meta.SUBSCRIBER_BUFFER,
		maxTurns: meta.MAX_TURNS,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() *game.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Copy()
}

// Subscribe returns a channel of updates. A subscriber that falls behind loses
// its oldest updates. The channel is closed when the game ends.
func (e *Engine) Subscribe() <-chan Update {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan Update, e.buffer)
	if e.closed {
		close(ch)
		return ch
	}
	e.subscribers = append(e.subscribers, ch)
	return ch
}

// Play applies one intent and publishes the result.
func (e *Engine) Play(in game.Intent) (game.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := e.state.Play(in)
	if err != nil {
		return out, err
	}
	for _, ev := range out.Events {
		log.Debug().Msg(ev.String())
	}

	u := Update{Intent: in, Outcome: out, State: e.state.Copy()}
	for _, observe := range e.observers {
		observe(u)
	}
	for _, ch := range e.subscribers {
		publish(ch, u)
	}
	if e.state.Phase().Terminal() {
		e.closeSubscribers()
	}
	return out, nil
}

// publish never blocks the writer: when the buffer is full the oldest update is
// dropped to make room.
func publish(ch chan Update, u Update) {
	for {
		select {
		case ch <- u:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (e *Engine) closeSubscribers() {
	if e.closed {
		return
	}
	e.closed = true
	for _, ch := range e.subscribers {
		close(ch)
	}
}

// Run drives a whole game with the given commander until the game ends, the
// turn cap is reached or ctx is cancelled. Cancellation is only observed between
// intents.
func (e *Engine) Run(ctx context.Context, c Commander) (Result, error) {
	var res Result
	log.Info().Msgf("%s is in command", c.Name())

	for steps := 0; steps < MaxSteps; steps++ {
		if err := ctx.Err(); err != nil {
			return e.result(res), err
		}
		state := e.Snapshot()
		if state.Phase().Terminal() || state.Turn.Number > e.maxTurns {
			break
		}

		intents := state.AvailableIntents()
		if len(intents) == 0 {
			return e.result(res), fmt.Errorf("no available intents in %s", state.Phase())
		}

		in := c.Choose(state, intents)
		out, err := e.Play(in)
		if err != nil || !out.OK {
			if errors.Is(err, game.ErrGameOver) {
				break
			}
			// the commander asked for something unusable; fall back to the first
			// available intent
			res.Rejected++
			log.Debug().Msgf("%s chose %s, falling back to %s", c.Name(), in, intents[0])
			if _, err := e.Play(intents[0]); err != nil {
				return e.result(res), fmt.Errorf("fallback %s: %w", intents[0], err)
			}
		}
		res.Steps++
	}

	res = e.result(res)
	if res.Winner != "" {
		log.Info().Msgf("Game ended on turn %d, winner: %s", res.Turns, res.Winner)
	} else {
		log.Info().Msgf("Stopped after %d turns (no winner yet)", res.Turns)
	}
	return res, nil
}

func (e *Engine) result(res Result) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	res.Winner = e.state.Winner()
	res.Turns = e.state.Turn.Number
	return res
}
