package game

import (
	"sherman/hex"
)

// TerrainClass is the coarse terrain category that drives pool sizes and AI tables.
type TerrainClass int

const (
	FieldTerrain TerrainClass = iota
	RoadTerrain
	MudTerrain
)

func (c TerrainClass) String() string {
	switch c {
	case RoadTerrain:
		return "road"
	case MudTerrain:
		return "mud"
	}
	return "field"
}

// ClassifyTerrain picks road if present, else mud, else field.
func ClassifyTerrain(t hex.Terrain) TerrainClass {
	switch {
	case t.Has(hex.Road):
		return RoadTerrain
	case t.Has(hex.Mud):
		return MudTerrain
	}
	return FieldTerrain
}

type PoolKind int

const (
	Maneuver PoolKind = iota
	Attack
	Misc
)

// PoolKinds lists the pools in the order they are offered.
var PoolKinds = []PoolKind{Maneuver, Attack, Misc}

func (p PoolKind) String() string {
	switch p {
	case Maneuver:
		return "maneuver"
	case Attack:
		return "attack"
	case Misc:
		return "misc"
	}
	return "unknown"
}

// Action is what a die face unlocks.
type Action int

const (
	NoAction Action = iota
	Reverse
	Turn
	Move
	Load
	FireMG
	FireMainGun
	Smoke
	HullDown
	Repair
	Extinguish
)

func (a Action) String() string {
	switch a {
	case Reverse:
		return "REVERSE"
	case Turn:
		return "TURN"
	case Move:
		return "MOVE"
	case Load:
		return "LOAD"
	case FireMG:
		return "FIRE_MG"
	case FireMainGun:
		return "FIRE_MAIN_GUN"
	case Smoke:
		return "SMOKE"
	case HullDown:
		return "HULL_DOWN"
	case Repair:
		return "REPAIR"
	case Extinguish:
		return "EXTINGUISH"
	}
	return "NONE"
}

// faceActions maps each pool's die faces 1..6 to an action.
var faceActions = map[PoolKind][6]Action{
	Maneuver: {Reverse, Turn, Turn, Turn, Move, Move},
	Attack:   {Load, Load, FireMG, FireMG, FireMainGun, FireMainGun},
	Misc:     {Smoke, Smoke, HullDown, HullDown, Repair, Extinguish},
}

// FaceAction returns the action a die face unlocks in the given pool.
func FaceAction(p PoolKind, face int) Action {
	if face < 1 || face > 6 {
		return NoAction
	}
	return faceActions[p][face-1]
}

// PoolActions lists the distinct actions of a pool, in face order.
func PoolActions(p PoolKind) []Action {
	var out []Action
	for _, a := range faceActions[p] {
		if len(out) == 0 || out[len(out)-1] != a {
			out = append(out, a)
		}
	}
	return out
}

func (a Action) pool() PoolKind {
	switch a {
	case Reverse, Turn, Move:
		return Maneuver
	case Load, FireMG, FireMainGun:
		return Attack
	}
	return Misc
}

// movement reports whether the action relocates or rotates the vehicle.
func (a Action) movement() bool {
	return a == Reverse || a == Turn || a == Move
}

// terrainBonus holds the per-pool bonus for road, field and mud.
var terrainBonus = map[PoolKind]map[TerrainClass]int{
	Maneuver: {RoadTerrain: 2, FieldTerrain: 1, MudTerrain: 0},
	Attack:   {RoadTerrain: 2, FieldTerrain: 2, MudTerrain: 1},
	Misc:     {RoadTerrain: 1, FieldTerrain: 2, MudTerrain: 1},
}

// poolSize computes the standard die count for a pool.
func poolSize(p PoolKind, terrain TerrainClass, crew Crew) int {
	n := terrainBonus[p][terrain]
	hatch := 0
	if crew.PoppedHatch() {
		hatch = 1
	}
	switch p {
	case Maneuver:
		n += alive(crew, Driver) + alive(crew, AssistantDriver) + hatch
	case Attack:
		n += alive(crew, Gunner) + alive(crew, Loader) + hatch
	case Misc:
		n += alive(crew, Commander)
	}
	return n
}

// doublesAllowed reports whether the crew can still act twice from a pool.
func doublesAllowed(p PoolKind, crew Crew) bool {
	switch p {
	case Maneuver:
		return crew.Alive(Driver) || crew.Alive(AssistantDriver)
	case Attack:
		return crew.Alive(Gunner) || crew.Alive(Loader)
	}
	return true
}

func alive(crew Crew, s Station) int {
	if crew.Alive(s) {
		return 1
	}
	return 0
}

// Pool is the rolled state of one dice pool for the current turn.
type Pool struct {
	Kind     PoolKind
	Dice     []int
	Expended []bool
	Rolled   bool
	Closed   bool
}

func (p *Pool) Available() []int {
	var idx []int
	for i := range p.Dice {
		if !p.Expended[i] {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *Pool) usable(i int) bool {
	return i >= 0 && i < len(p.Dice) && !p.Expended[i]
}

func (p *Pool) exhausted() bool {
	return len(p.Available()) == 0
}

func (p *Pool) expendAll() {
	for i := range p.Expended {
		p.Expended[i] = true
	}
}

// Doubles lists every pair of unexpended dice sharing a face.
func (p *Pool) Doubles() [][2]int {
	var pairs [][2]int
	avail := p.Available()
	for a := 0; a < len(avail); a++ {
		for b := a + 1; b < len(avail); b++ {
			if p.Dice[avail[a]] == p.Dice[avail[b]] {
				pairs = append(pairs, [2]int{avail[a], avail[b]})
			}
		}
	}
	return pairs
}

func (p Pool) copy() Pool {
	p.Dice = append([]int(nil), p.Dice...)
	p.Expended = append([]bool(nil), p.Expended...)
	return p
}
