package game

import (
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"sherman/dice"
	"sherman/hex"
)

var ErrNoSherman = errors.New("scenario has no player vehicle")

// Scenario is the board plus every vehicle on it.
type Scenario struct {
	Name      string
	Objective string
	Board     *hex.Board
	Vehicles  []*Vehicle
}

// NewScenario builds the runtime scenario from a definition. Fixed units are placed
// first, then dynamic spawns are resolved once using roller for hex selection.
// Integrity problems are logged and the affected unit is skipped.
func NewScenario(def Definition, roller dice.Roller) (*Scenario, error) {
	s := &Scenario{
		Name:      def.Name,
		Objective: def.Objective,
		Board:     hex.NewBoard(def.cells()),
	}

	for _, u := range def.Units {
		if s.Vehicle(u.ID) != nil {
			log.Warn().Msgf("Duplicate unit id %q, skipping", u.ID)
			continue
		}
		s.place(u.Vehicle())
	}

	for _, spawn := range def.DynamicSpawns {
		s.spawn(def, spawn, roller)
	}

	if s.Sherman() == nil {
		return nil, ErrNoSherman
	}
	return s, nil
}

func (s *Scenario) place(v *Vehicle) bool {
	if !s.Board.Contains(v.Hex) {
		log.Warn().Msgf("Unit %s is off the board at %s, skipping", v.ID, v.Hex)
		return false
	}
	if other := s.OccupantAt(v.Hex); other != nil {
		log.Warn().Msgf("Unit %s cannot be placed at %s, occupied by %s", v.ID, v.Hex, other.ID)
		return false
	}
	s.Vehicles = append(s.Vehicles, v)
	return true
}

func (s *Scenario) spawn(def Definition, spawn SpawnDefinition, roller dice.Roller) {
	tmpl, ok := def.template(spawn.TemplateID)
	if !ok {
		log.Warn().Msgf("Template with ID %q not found for dynamic spawn", spawn.TemplateID)
		return
	}

	pool := slices.Clone(spawn.PossibleHexes)
	if len(pool) < spawn.Count {
		log.Warn().Msgf("Spawn %q wants %d units but only has %d hexes", spawn.TemplateID, spawn.Count, len(pool))
	}
	roller.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	for _, h := range pool[:min(max(spawn.Count, 0), len(pool))] {
		v := tmpl.Vehicle()
		v.ID = spawnID(tmpl.ID, roller)
		v.Hex = h.Coord()
		v.Facing = hex.North
		if h.Rotation != nil {
			v.Facing = RotationFacing(v.ID, *h.Rotation)
		}
		if s.place(v) {
			log.Debug().Msgf("Spawned %s at %s facing %s", v.ID, v.Hex, v.Facing)
		}
	}
}

// spawnID builds "<template>-<9 chars>". When the roller can also act as a byte
// stream the id is drawn from it, keeping seeded runs reproducible.
func spawnID(template string, roller dice.Roller) string {
	id := uuid.New()
	if r, ok := roller.(io.Reader); ok {
		if rid, err := uuid.NewRandomFromReader(r); err == nil {
			id = rid
		}
	}
	return template + "-" + strings.ReplaceAll(id.String(), "-", "")[:9]
}

// Sherman returns the player vehicle, destroyed or not.
func (s *Scenario) Sherman() *Vehicle {
	for _, v := range s.Vehicles {
		if v.IsPlayer() {
			return v
		}
	}
	return nil
}

func (s *Scenario) Vehicle(id string) *Vehicle {
	for _, v := range s.Vehicles {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Enemies returns the enemy vehicles still in play, in scenario order.
func (s *Scenario) Enemies() []*Vehicle {
	var out []*Vehicle
	for _, v := range s.Vehicles {
		if !v.IsPlayer() && !v.Destroyed {
			out = append(out, v)
		}
	}
	return out
}

// OccupantAt returns the non-destroyed vehicle standing on c, if any.
func (s *Scenario) OccupantAt(c hex.Coord) *Vehicle {
	for _, v := range s.Vehicles {
		if !v.Destroyed && v.Hex == c {
			return v
		}
	}
	return nil
}

// TerrainAt reports the terrain under c; off-board hexes are open.
func (s *Scenario) TerrainAt(c hex.Coord) hex.Terrain {
	if cell, ok := s.Board.Cell(c); ok {
		return cell.Terrain
	}
	return hex.Open
}

func (s *Scenario) Copy() *Scenario {
	vehicles := make([]*Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		vehicles[i] = v.Copy()
	}
	return &Scenario{
		Name:      s.Name,
		Objective: s.Objective,
		Board:     s.Board.Copy(),
		Vehicles:  vehicles,
	}
}
