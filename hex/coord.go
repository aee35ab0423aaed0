// Package hex implements axial hex-grid geometry: coordinates, facings,
// pixel projection, distance, straight-line tracing and line of sight.
//
// Facings are compass degrees with 0 pointing north and increasing clockwise.
// The grid is flat-topped; positive r moves north.
package hex

import (
	"fmt"
	"math"
)

// Size is the distance from a hex centre to a vertex, in pixels.
const Size = 50.0

var (
	Width  = Size * 2
	Height = Size * math.Sqrt(3)
)

// Coord is an axial hex coordinate. The implied cube coordinate is s = -q - r.
type Coord struct {
	Q int `yaml:"q" json:"q"`
	R int `yaml:"r" json:"r"`
}

// S returns the implied third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

// Facing is one of six 60° orientations, in degrees.
type Facing int

const (
	North     Facing = 0
	NorthEast Facing = 60
	SouthEast Facing = 120
	South     Facing = 180
	SouthWest Facing = 240
	NorthWest Facing = 300
)

// AllFacings lists the six facings clockwise from north.
var AllFacings = []Facing{North, NorthEast, SouthEast, South, SouthWest, NorthWest}

// directions holds the axial offset for each facing index (facing/60).
var directions = [6]Coord{
	{Q: 0, R: 1},  // N
	{Q: 1, R: 0},  // NE
	{Q: 1, R: -1}, // SE
	{Q: 0, R: -1}, // S
	{Q: -1, R: 0}, // SW
	{Q: -1, R: 1}, // NW
}

// NormalizeDegrees maps any angle in degrees into [0, 360).
func NormalizeDegrees(deg int) int {
	return ((deg % 360) + 360) % 360
}

// Normalize returns the facing mapped into [0, 360).
func (f Facing) Normalize() Facing {
	return Facing(NormalizeDegrees(int(f)))
}

// Valid reports whether f is a multiple of 60 degrees.
func (f Facing) Valid() bool {
	return int(f.Normalize())%60 == 0
}

// SnapFacing rounds an angle to the nearest facing. Halfway angles go clockwise.
func SnapFacing(deg int) Facing {
	return Facing(NormalizeDegrees((NormalizeDegrees(deg) + 30) / 60 * 60))
}

// Index returns the 0..5 direction index for the facing.
func (f Facing) Index() int {
	return int(f.Normalize()) / 60
}

// Rotate turns the facing by the given number of 60° steps (positive is clockwise).
func (f Facing) Rotate(steps int) Facing {
	return Facing(NormalizeDegrees(int(f) + steps*60))
}

func (f Facing) Opposite() Facing {
	return f.Rotate(3)
}

func (f Facing) String() string {
	names := [6]string{"N", "NE", "SE", "S", "SW", "NW"}
	if !f.Valid() {
		return fmt.Sprintf("%d°", int(f))
	}
	return names[f.Index()]
}

// Neighbor returns the adjacent hex in the given facing.
func Neighbor(c Coord, f Facing) Coord {
	return c.Add(directions[f.Index()])
}

// Distance is the cube-coordinate Manhattan distance, halved.
func Distance(a, b Coord) int {
	return (abs(a.Q-b.Q) + abs(a.R-b.R) + abs(a.S()-b.S())) / 2
}

// Direction returns the facing that leads from a to b along one of the six axial
// rays. ok is false when the two hexes are equal or not on a shared ray.
func Direction(a, b Coord) (f Facing, ok bool) {
	dq, dr, ds := b.Q-a.Q, b.R-a.R, b.S()-a.S()
	switch {
	case a == b:
		return North, false
	case dq == 0 && dr > 0:
		return North, true
	case dq == 0:
		return South, true
	case dr == 0 && dq > 0:
		return NorthEast, true
	case dr == 0:
		return SouthWest, true
	case ds == 0 && dq > 0:
		return SouthEast, true
	case ds == 0:
		return NorthWest, true
	}
	return North, false
}

// PixelCenter projects an axial coordinate to screen pixels. Screen y grows
// downward, so it is negated to make positive r move up.
func PixelCenter(c Coord) (x, y float64) {
	x = float64(c.Q) * (Width * 0.75)
	y = -(float64(c.R)*Height + float64(c.Q)*(Height/2))
	return x, y
}

// AngleOfAttack is the compass bearing from a to b, snapped to the nearest 60°.
// Equal coordinates report north.
func AngleOfAttack(a, b Coord) Facing {
	if a == b {
		return North
	}
	ax, ay := PixelCenter(a)
	bx, by := PixelCenter(b)
	// screen y is inverted, so north is -y
	deg := math.Atan2(bx-ax, -(by-ay)) * 180 / math.Pi
	step := int(math.Round(deg/60)) * 60
	return Facing(NormalizeDegrees(step))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
