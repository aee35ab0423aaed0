// Package scenario loads scenario definitions from disk or from the built-in
// default and turns them into playable game states.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"sherman/dice"
	"sherman/game"
)

//go:embed data/scenario1.yaml
var defaultScenario []byte

var (
	ErrNoHexes = errors.New("scenario has no map hexes")
	ErrNoUnits = errors.New("scenario has no units")
)

// Default returns the built-in scenario.
func Default() (game.Definition, error) {
	return Parse(defaultScenario)
}

// Load reads a scenario file. JSON files are valid YAML and go through the same
// decoder.
func Load(path string) (game.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return game.Definition{}, fmt.Errorf("read scenario: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return game.Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Msgf("Loaded scenario %q from %s", def.Name, path)
	return def, nil
}

// Parse decodes and sanity-checks a scenario definition.
func Parse(data []byte) (game.Definition, error) {
	var def game.Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return def, ErrNoHexes
		}
		return def, fmt.Errorf("decode scenario: %w", err)
	}
	if len(def.Map.Hexes) == 0 {
		return def, ErrNoHexes
	}
	if len(def.Units) == 0 && len(def.DynamicSpawns) == 0 {
		return def, ErrNoUnits
	}
	return def, nil
}

// New builds a fresh game from a definition. Spawns and every later roll use the
// same roller.
func New(def game.Definition, rules game.Rules, roller dice.Roller) (*game.GameState, error) {
	s, err := game.NewScenario(def, roller)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Scenario %q: %d hexes, %d vehicles", s.Name, s.Board.Len(), len(s.Vehicles))
	return game.NewGameState(s, rules, roller), nil
}

// Open loads the scenario at path, or the built-in one when path is empty.
func Open(path string) (game.Definition, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
