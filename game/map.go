package game

import (
	"strings"

	"github.com/rs/zerolog/log"

	"sherman/hex"
)

// Definition is the static scenario data as it is stored on disk.
type Definition struct {
	Name          string            `yaml:"name" json:"name"`
	Objective     string            `yaml:"objective" json:"objective"`
	Map           MapDefinition     `yaml:"map" json:"map"`
	Units         []UnitDefinition  `yaml:"units" json:"units"`
	UnitTemplates []UnitDefinition  `yaml:"unitTemplates" json:"unitTemplates"`
	DynamicSpawns []SpawnDefinition `yaml:"dynamicSpawns" json:"dynamicSpawns"`
}

type MapDefinition struct {
	Hexes []HexDefinition `yaml:"hexes" json:"hexes"`
}

type HexDefinition struct {
	Q            int    `yaml:"q" json:"q"`
	R            int    `yaml:"r" json:"r"`
	Terrain      string `yaml:"terrain" json:"terrain"`
	ShermanSmoke bool   `yaml:"shermanSmoke" json:"shermanSmoke"`
	GermanSmoke  bool   `yaml:"germanSmoke" json:"germanSmoke"`
}

// UnitDefinition describes a fixed unit or a spawn template.
type UnitDefinition struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Faction       string    `yaml:"faction" json:"faction"`
	Size          int       `yaml:"size" json:"size"`
	Armor         Armor     `yaml:"armor" json:"armor"`
	ArmorPen      int       `yaml:"armor_pen" json:"armor_pen"`
	MGPen         int       `yaml:"mg_pen" json:"mg_pen"`
	MainGunStatus string    `yaml:"mainGunStatus" json:"mainGunStatus"`
	Crew          Crew      `yaml:"crew" json:"crew"`
	Rotation      int       `yaml:"rotation" json:"rotation"`
	CurrentHex    hex.Coord `yaml:"currentHex" json:"currentHex"`

	Damaged       bool `yaml:"damaged" json:"damaged"`
	HullDown      bool `yaml:"hull_down" json:"hull_down"`
	TurretDamaged bool `yaml:"turret_damaged" json:"turret_damaged"`
	Immobilized   bool `yaml:"immobilized" json:"immobilized"`
	FireLevel     int  `yaml:"fireLevel" json:"fireLevel"`
}

type SpawnDefinition struct {
	TemplateID    string     `yaml:"templateId" json:"templateId"`
	Count         int        `yaml:"count" json:"count"`
	PossibleHexes []SpawnHex `yaml:"possibleHexes" json:"possibleHexes"`
}

// SpawnHex is a candidate spawn location. A nil Rotation faces north.
type SpawnHex struct {
	Q        int  `yaml:"q" json:"q"`
	R        int  `yaml:"r" json:"r"`
	Rotation *int `yaml:"rotation" json:"rotation"`
}

func (h SpawnHex) Coord() hex.Coord {
	return hex.Coord{Q: h.Q, R: h.R}
}

// ParseFaction accepts the faction names used by scenario files. Anything that is
// not recognisably the player side is an enemy.
func ParseFaction(s string) Faction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "allied", "allies", "us", "usa", "american", "sherman":
		return Player
	}
	return Enemy
}

// Vehicle builds a runtime vehicle from the definition.
func (u UnitDefinition) Vehicle() *Vehicle {
	gun := Unloaded
	if strings.EqualFold(u.MainGunStatus, string(Loaded)) {
		gun = Loaded
	}
	return &Vehicle{
		ID:            u.ID,
		Name:          u.Name,
		Faction:       ParseFaction(u.Faction),
		Hex:           u.CurrentHex,
		Facing:        RotationFacing(u.ID, u.Rotation),
		Size:          u.Size,
		Armor:         u.Armor,
		ArmorPen:      u.ArmorPen,
		MGPen:         u.MGPen,
		MainGun:       gun,
		Damaged:       u.Damaged,
		HullDown:      u.HullDown,
		TurretDamaged: u.TurretDamaged,
		Immobilized:   u.Immobilized,
		FireLevel:     max(u.FireLevel, 0),
		Crew:          u.Crew.normalize(),
	}
}

// RotationFacing converts a stored rotation to a facing, snapping angles that
// are off the hex grid.
func RotationFacing(id string, rotation int) hex.Facing {
	f := hex.Facing(hex.NormalizeDegrees(rotation))
	if !f.Valid() {
		f = hex.SnapFacing(rotation)
		log.Warn().Msgf("Unit %q has rotation %d, not a multiple of 60; using %d", id, rotation, int(f))
	}
	return f
}

func (d Definition) cells() []hex.Cell {
	cells := make([]hex.Cell, 0, len(d.Map.Hexes))
	for _, h := range d.Map.Hexes {
		cells = append(cells, hex.Cell{
			Coord:        hex.Coord{Q: h.Q, R: h.R},
			Terrain:      hex.ParseTerrain(h.Terrain),
			ShermanSmoke: h.ShermanSmoke,
			GermanSmoke:  h.GermanSmoke,
		})
	}
	return cells
}

func (d Definition) template(id string) (UnitDefinition, bool) {
	for _, t := range d.UnitTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return UnitDefinition{}, false
}
