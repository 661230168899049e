package hub

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKey is the id of the unit cell at integer coordinates (x, y). It
// matches the geo bucket keys of the network graph.
func CellKey(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}

// CellOf returns the key of the cell containing a point
func CellOf(x, y float64) string {
	return CellKey(int(math.Floor(x)), int(math.Floor(y)))
}

// ParseCellKey extracts x, y from a cell key
func ParseCellKey(key string) (x, y int, ok bool) {
	xs, ys, found := strings.Cut(key, ",")
	if !found {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// AdjacentCells returns the given cell plus its 8 neighbors
func AdjacentCells(x, y int) []string {
	cells := make([]string, 0, 9)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			cells = append(cells, CellKey(x+dx, y+dy))
		}
	}
	return cells
}

// CellsInRect returns the keys of the cells a range query over the same
// rectangle scans, in the same row-major order. limit caps the result.
func CellsInRect(minX, minY, width, height float64, limit int) []string {
	var cells []string
	for j := 0; float64(j) < height; j++ {
		y := minY + float64(j)
		for i := 0; float64(i) < width; i++ {
			if len(cells) >= limit {
				return cells
			}
			cells = append(cells, CellOf(minX+float64(i), y))
		}
	}
	return cells
}
