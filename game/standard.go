package game

import (
	"fmt"
	"strings"

	"sherman/hex"
)

// ArcPolicy selects which rays count as a vehicle's firing arc.
type ArcPolicy int

const (
	// ArcFront is the facing plus one step either side.
	ArcFront ArcPolicy = iota
	// ArcAll is every ray around the vehicle.
	ArcAll
)

func (a ArcPolicy) String() string {
	if a == ArcAll {
		return "all"
	}
	return "front"
}

func ParseArcPolicy(s string) (ArcPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "front":
		return ArcFront, nil
	case "all":
		return ArcAll, nil
	}
	return ArcFront, fmt.Errorf("unknown firing arc %q", s)
}

type StandardRules struct {
	Arc ArcPolicy
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		Arc: ArcFront,
	}
}

func (sr *StandardRules) PoolSize(p PoolKind, terrain TerrainClass, crew Crew) int {
	return poolSize(p, terrain, crew)
}

func (sr *StandardRules) FiringArc(facing hex.Facing) []hex.Facing {
	if sr.Arc == ArcAll {
		return hex.AllFacings
	}
	return []hex.Facing{facing.Rotate(-1), facing, facing.Rotate(1)}
}
