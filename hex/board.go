package hex

import (
	"iter"
	"strings"
	"unicode"
)

// Terrain is a set of terrain features present on a hex.
type Terrain uint8

const (
	Open Terrain = 1 << iota
	Road
	Mud
	Field
	Forest
	Buildings
)

var terrainNames = []struct {
	t    Terrain
	name string
}{
	{Open, "open"},
	{Road, "road"},
	{Mud, "mud"},
	{Field, "field"},
	{Forest, "forest"},
	{Buildings, "buildings"},
}

var terrainAliases = map[string]Terrain{
	"woods":    Forest,
	"wood":     Forest,
	"trees":    Forest,
	"building": Buildings,
	"town":     Buildings,
	"clear":    Open,
	"grass":    Field,
}

// ParseTerrain reads a terrain description such as "road", "forest/buildings" or
// "mud, field". Unknown words are ignored; an empty result is Open.
func ParseTerrain(s string) Terrain {
	var t Terrain
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if a, ok := terrainAliases[w]; ok {
			t |= a
			continue
		}
		for _, n := range terrainNames {
			if n.name == w {
				t |= n.t
			}
		}
	}
	if t == 0 {
		return Open
	}
	return t
}

// Has reports whether every feature in o is present.
func (t Terrain) Has(o Terrain) bool {
	return t&o == o && o != 0
}

// BlocksSight reports whether the terrain blocks a line of fire passing through it.
func (t Terrain) BlocksSight() bool {
	return t.Has(Forest) || t.Has(Buildings)
}

func (t Terrain) String() string {
	var parts []string
	for _, n := range terrainNames {
		if t.Has(n.t) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "open"
	}
	return strings.Join(parts, "/")
}

// Cell is a single map hex. Identity and terrain are fixed; smoke overlays change
// from turn to turn.
type Cell struct {
	Coord
	Terrain      Terrain
	ShermanSmoke bool
	GermanSmoke  bool
}

// Smoked reports whether either side's smoke covers the hex.
func (c Cell) Smoked() bool {
	return c.ShermanSmoke || c.GermanSmoke
}

// Board is the ordered collection of map cells with coordinate lookup.
type Board struct {
	cells []Cell
	index map[Coord]int
}

// NewBoard builds a board from cells. A duplicate coordinate keeps the first cell.
func NewBoard(cells []Cell) *Board {
	b := &Board{
		cells: make([]Cell, 0, len(cells)),
		index: make(map[Coord]int, len(cells)),
	}
	for _, c := range cells {
		if _, dup := b.index[c.Coord]; dup {
			continue
		}
		b.index[c.Coord] = len(b.cells)
		b.cells = append(b.cells, c)
	}
	return b
}

// Cell returns the cell at c. ok is false when c is not on the board.
func (b *Board) Cell(c Coord) (cell Cell, ok bool) {
	i, ok := b.index[c]
	if !ok {
		return Cell{}, false
	}
	return b.cells[i], true
}

func (b *Board) Contains(c Coord) bool {
	_, ok := b.index[c]
	return ok
}

func (b *Board) Len() int {
	return len(b.cells)
}

// Cells returns a copy of the cells in board order.
func (b *Board) Cells() []Cell {
	out := make([]Cell, len(b.cells))
	copy(out, b.cells)
	return out
}

// Mark applies fn to the cell at c in place. It returns false when c is off the board.
func (b *Board) Mark(c Coord, fn func(*Cell)) bool {
	i, ok := b.index[c]
	if !ok {
		return false
	}
	fn(&b.cells[i])
	return true
}

// Each applies fn to every cell in board order.
func (b *Board) Each(fn func(*Cell)) {
	for i := range b.cells {
		fn(&b.cells[i])
	}
}

func (b *Board) Copy() *Board {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	index := make(map[Coord]int, len(b.index))
	for k, v := range b.index {
		index[k] = v
	}
	return &Board{cells: cells, index: index}
}

// Ray lazily walks the neighbour chain from start in the given facing, excluding
// start, and stops at the first coordinate that is not on the board.
func (b *Board) Ray(start Coord, f Facing) iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		cur := start
		for {
			cur = Neighbor(cur, f)
			if !b.Contains(cur) {
				return
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// TraceLine collects Ray into a slice.
func (b *Board) TraceLine(start Coord, f Facing) []Coord {
	var line []Coord
	for c := range b.Ray(start, f) {
		line = append(line, c)
	}
	return line
}
