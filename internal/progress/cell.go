// Package progress tracks painting progress over a palette-indexed image:
// the painted-state overlay, per-color counters, flood fill and the
// section projection/merge protocol.
package progress

import "fmt"

// Cell is the paint state of one image cell: either unpainted or painted
// with a color index.
type Cell struct {
	color   int
	painted bool
}

// Unpainted is the zero Cell.
var Unpainted = Cell{}

// Painted returns a cell painted with color index c.
func Painted(c int) Cell {
	return Cell{color: c, painted: true}
}

// IsPainted reports whether the cell has been painted.
func (c Cell) IsPainted() bool {
	return c.painted
}

// Color returns the painted color index, or false for an unpainted cell.
func (c Cell) Color() (int, bool) {
	return c.color, c.painted
}

// Encode returns the stored integer form: 0 for unpainted, color+1 otherwise.
func (c Cell) Encode() int {
	if !c.painted {
		return 0
	}
	return c.color + 1
}

// DecodeCell is the inverse of Encode. Values <= 0 decode as unpainted.
func DecodeCell(v int) Cell {
	if v <= 0 {
		return Unpainted
	}
	return Painted(v - 1)
}

func (c Cell) String() string {
	if !c.painted {
		return "unpainted"
	}
	return fmt.Sprintf("painted(%d)", c.color)
}
