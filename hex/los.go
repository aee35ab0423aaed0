package hex

import "fmt"

// ReasonNotAxial is reported for endpoints that do not share an axial ray.
const ReasonNotAxial = "not a straight axial line"

// PathResult describes a line-of-fire check between two hexes.
type PathResult struct {
	Blocked bool
	Reason  string
	// Set when terrain blocks the path.
	BlockedAt Coord
	Terrain   Terrain
	// Intervening hexes scanned, exclusive of both endpoints.
	Intervening []Coord
}

// ClearPath checks the straight axial line from one hex to another. Intervening
// hexes are scanned in order and the first forest or buildings hex blocks the
// path. Intervening coordinates missing from the board carry no terrain.
func (b *Board) ClearPath(from, to Coord) PathResult {
	if from == to {
		return PathResult{}
	}
	dir, ok := Direction(from, to)
	if !ok {
		return PathResult{Blocked: true, Reason: ReasonNotAxial}
	}

	var res PathResult
	cur := Neighbor(from, dir)
	for cur != to {
		res.Intervening = append(res.Intervening, cur)
		if cell, ok := b.Cell(cur); ok && cell.Terrain.BlocksSight() {
			res.Blocked = true
			res.BlockedAt = cur
			res.Terrain = cell.Terrain
			res.Reason = fmt.Sprintf("blocked by %s at %s", cell.Terrain, cur)
			return res
		}
		cur = Neighbor(cur, dir)
	}
	return res
}

// CoordSet is an unordered set of coordinates.
type CoordSet map[Coord]struct{}

func (s CoordSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// FiringArcHexes returns every on-board hex reachable along the given rays from c.
// With no facings it uses all six.
func (b *Board) FiringArcHexes(c Coord, facings ...Facing) CoordSet {
	if len(facings) == 0 {
		facings = AllFacings
	}
	set := CoordSet{}
	for _, f := range facings {
		for h := range b.Ray(c, f) {
			set[h] = struct{}{}
		}
	}
	return set
}
