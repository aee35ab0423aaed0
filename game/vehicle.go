package game

import (
	"sherman/hex"
)

type Faction string

const (
	Player Faction = "player"
	Enemy  Faction = "enemy"
)

// Station is one of the five crew positions.
type Station int

const (
	Commander Station = iota
	Gunner
	Loader
	Driver
	AssistantDriver
)

// Stations lists every crew position in KIA-table order.
var Stations = []Station{Commander, Gunner, Loader, Driver, AssistantDriver}

func (s Station) String() string {
	switch s {
	case Commander:
		return "commander"
	case Gunner:
		return "gunner"
	case Loader:
		return "loader"
	case Driver:
		return "driver"
	case AssistantDriver:
		return "assistant driver"
	}
	return "unknown"
}

type CrewStatus string

const (
	OK          CrewStatus = "ok"
	KIA         CrewStatus = "kia"
	ButtonedUp  CrewStatus = "buttoned up"
	PoppedHatch CrewStatus = "popped hatch"
)

// Crew holds the status of each station. The commander is ButtonedUp,
// PoppedHatch or KIA; everyone else is OK or KIA.
type Crew struct {
	Commander       CrewStatus `yaml:"commander" json:"commander"`
	Gunner          CrewStatus `yaml:"gunner" json:"gunner"`
	Loader          CrewStatus `yaml:"loader" json:"loader"`
	Driver          CrewStatus `yaml:"driver" json:"driver"`
	AssistantDriver CrewStatus `yaml:"assistantDriver" json:"assistantDriver"`
}

// FullCrew is a healthy crew with the commander buttoned up.
func FullCrew() Crew {
	return Crew{Commander: ButtonedUp, Gunner: OK, Loader: OK, Driver: OK, AssistantDriver: OK}
}

func (c *Crew) station(s Station) *CrewStatus {
	switch s {
	case Commander:
		return &c.Commander
	case Gunner:
		return &c.Gunner
	case Loader:
		return &c.Loader
	case Driver:
		return &c.Driver
	default:
		return &c.AssistantDriver
	}
}

func (c Crew) Status(s Station) CrewStatus {
	return *c.station(s)
}

func (c *Crew) Set(s Station, status CrewStatus) {
	*c.station(s) = status
}

func (c Crew) Alive(s Station) bool {
	return c.Status(s) != KIA
}

func (c Crew) PoppedHatch() bool {
	return c.Commander == PoppedHatch
}

// normalize fills blank stations from scenario data with healthy defaults.
func (c Crew) normalize() Crew {
	full := FullCrew()
	for _, s := range Stations {
		if c.Status(s) == "" {
			c.Set(s, full.Status(s))
		}
	}
	if c.Commander == OK {
		c.Commander = ButtonedUp
	}
	return c
}

// Armor values keyed by struck facing arc.
type Armor struct {
	Front     int `yaml:"front" json:"front"`
	FrontSide int `yaml:"front_side" json:"front_side"`
	RearSide  int `yaml:"rear_side" json:"rear_side"`
	Rear      int `yaml:"rear" json:"rear"`
}

func (a Armor) Value(arc ArmorArc) int {
	switch arc {
	case FrontArc:
		return a.Front
	case FrontSideArc:
		return a.FrontSide
	case RearSideArc:
		return a.RearSide
	default:
		return a.Rear
	}
}

type GunStatus string

const (
	Unloaded GunStatus = "unloaded"
	Loaded   GunStatus = "loaded"
)

// Vehicle is a tank on the board, player or enemy.
type Vehicle struct {
	ID      string
	Name    string
	Faction Faction
	Hex     hex.Coord
	Facing  hex.Facing
	Size    int
	Armor   Armor
	// Penetration ratings of the main gun and the machine gun.
	ArmorPen int
	MGPen    int
	MainGun  GunStatus

	Destroyed     bool
	Damaged       bool
	HullDown      bool
	TurretDamaged bool
	Immobilized   bool
	FireLevel     int

	Crew Crew
}

func (v *Vehicle) Copy() *Vehicle {
	cp := *v
	return &cp
}

func (v *Vehicle) IsPlayer() bool {
	return v.Faction == Player
}

// Label is a short display name.
func (v *Vehicle) Label() string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}
