package graph

import (
	"math"
	"strconv"
)

// GeoKey is the bucket key of the unit cell containing (x, y).
// Coordinates in [n, n+1) on each axis share a key.
func GeoKey(x, y float64) string {
	return strconv.FormatInt(int64(math.Floor(x)), 10) + "," + strconv.FormatInt(int64(math.Floor(y)), 10)
}

// insertConnection runs once per connection, at construction. Positions are
// immutable so the bucket never goes stale.
func (g *Graph) insertConnection(c *Connection) {
	key := GeoKey(c.x, c.y)
	g.geo[key] = append(g.geo[key], c.id)
}

// GeoBucket returns the connections in the cell containing (x, y), in
// insertion order.
func (g *Graph) GeoBucket(x, y float64) []*Connection {
	ids := g.geo[GeoKey(x, y)]
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Connection, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.resolveConnection(id))
	}
	return out
}

// Cells is the number of non-empty geo buckets.
func (g *Graph) Cells() int {
	return len(g.geo)
}

// Range collects the connections of every cell stepped from (minX, minY)
// in unit increments up to the exclusive bounds minX+width and minY+height.
// Rows (y) are the outer loop, columns (x) the inner one. Steps are counted,
// so coordinates too large for a unit increment still terminate.
func (g *Graph) Range(minX, minY, width, height float64) []*Connection {
	var result []*Connection

	cols := steps(width)
	rows := steps(height)
	for j := 0; j < rows; j++ {
		y := minY + float64(j)
		for i := 0; i < cols; i++ {
			x := minX + float64(i)
			for _, id := range g.geo[GeoKey(x, y)] {
				result = append(result, g.resolveConnection(id))
			}
		}
	}

	return result
}

// steps is the number of unit steps k with k < extent, capped at MaxInt32.
func steps(extent float64) int {
	if !(extent > 0) {
		return 0
	}
	if extent >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(extent))
}

// RangeCells is the number of cells Range would scan for the same arguments.
func RangeCells(width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return math.Ceil(width) * math.Ceil(height)
}
