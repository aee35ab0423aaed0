package game

import (
	"sherman/hex"
)

// Rules holds the tunable parts of the ruleset.
type Rules interface {
	PoolSize(p PoolKind, terrain TerrainClass, crew Crew) int
	// FiringArc returns the rays a vehicle with the given facing can fire along.
	FiringArc(facing hex.Facing) []hex.Facing
}
