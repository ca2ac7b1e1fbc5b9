package progress

import (
	"errors"
	"fmt"
	"sort"

	pbnimage "paint-by-number/internal/image"
	"paint-by-number/pkg/geometry"
)

// DefaultSectionSize is the side of a section in cells.
const DefaultSectionSize = 50

// ErrSectionRange is returned for a section id outside the section grid.
var ErrSectionRange = errors.New("section outside image")

// SectionID identifies a section by its column and row in the section grid.
type SectionID struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (id SectionID) String() string {
	return fmt.Sprintf("(%d,%d)", id.X, id.Y)
}

// Geometry partitions a W×H image into non-overlapping squares of side Size.
// Sections on the right and bottom edges may be partial.
type Geometry struct {
	Size   int
	Width  int
	Height int
}

// NewGeometry returns the section geometry for an image. A non-positive size
// selects DefaultSectionSize.
func NewGeometry(size, width, height int) Geometry {
	if size <= 0 {
		size = DefaultSectionSize
	}
	return Geometry{Size: size, Width: width, Height: height}
}

// Grid returns the number of section columns and rows.
func (g Geometry) Grid() (cols, rows int) {
	return (g.Width + g.Size - 1) / g.Size, (g.Height + g.Size - 1) / g.Size
}

// Valid reports whether id lies inside the section grid.
func (g Geometry) Valid(id SectionID) bool {
	cols, rows := g.Grid()
	return id.X >= 0 && id.Y >= 0 && id.X < cols && id.Y < rows
}

// Bounds returns the global rectangle covered by a section, clamped to the image.
func (g Geometry) Bounds(id SectionID) geometry.RectInt {
	full := geometry.NewRectInt(id.X*g.Size, id.Y*g.Size, g.Size, g.Size)
	return full.Intersect(geometry.NewRectInt(0, 0, g.Width, g.Height))
}

// ToGlobal maps a local coordinate inside a section to image coordinates.
func (g Geometry) ToGlobal(id SectionID, lx, ly int) geometry.PointInt {
	return geometry.Pt(id.X*g.Size+lx, id.Y*g.Size+ly)
}

// ToLocal maps an image coordinate to its section and local offset.
func (g Geometry) ToLocal(x, y int) (SectionID, geometry.PointInt) {
	id := g.SectionAt(x, y)
	return id, geometry.Pt(x-id.X*g.Size, y-id.Y*g.Size)
}

// SectionAt returns the section containing image coordinate (x, y).
func (g Geometry) SectionAt(x, y int) SectionID {
	return SectionID{X: x / g.Size, Y: y / g.Size}
}

// All returns every section id in row-major order.
func (g Geometry) All() []SectionID {
	cols, rows := g.Grid()
	ids := make([]SectionID, 0, cols*rows)
	for sy := 0; sy < rows; sy++ {
		for sx := 0; sx < cols; sx++ {
			ids = append(ids, SectionID{X: sx, Y: sy})
		}
	}
	return ids
}

// SectionProgress is a local copy of the overlay for one section, edited
// while the section view is open. It is not authoritative: the global
// overlay becomes the source of truth again once the copy is merged.
type SectionProgress struct {
	ID     SectionID
	bounds geometry.RectInt
	base   *pbnimage.Indexed
	cells  []Cell
}

func newSectionProgress(base *pbnimage.Indexed, id SectionID, bounds geometry.RectInt) *SectionProgress {
	return &SectionProgress{
		ID:     id,
		bounds: bounds,
		base:   base,
		cells:  make([]Cell, bounds.Area()),
	}
}

// Bounds returns the global rectangle this copy covers.
func (s *SectionProgress) Bounds() geometry.RectInt {
	return s.bounds
}

// Size returns the local width and height. Edge sections may be smaller
// than the section size.
func (s *SectionProgress) Size() (w, h int) {
	return s.bounds.Width, s.bounds.Height
}

// ColorAt returns the base color under local cell (lx, ly).
func (s *SectionProgress) ColorAt(lx, ly int) int {
	return s.base.At(s.bounds.X+lx, s.bounds.Y+ly)
}

// CellAt returns the local paint state at (lx, ly).
func (s *SectionProgress) CellAt(lx, ly int) Cell {
	if !inside(s, lx, ly) {
		return Unpainted
	}
	return s.cells[ly*s.bounds.Width+lx]
}

func (s *SectionProgress) mark(lx, ly int, c Cell) {
	s.cells[ly*s.bounds.Width+lx] = c
}

// Paint paints one local cell if its base color matches and it is unpainted.
func (s *SectionProgress) Paint(lx, ly, color int) bool {
	return paintCell(s, lx, ly, color)
}

// Fill flood-fills from a local cell, bounded by the section. It returns the
// changed cells in local coordinates.
func (s *SectionProgress) Fill(lx, ly, color int) []geometry.PointInt {
	return floodFill(s, lx, ly, color)
}

// Reset clears the local copy only. The global overlay is unaffected.
func (s *SectionProgress) Reset() {
	clear(s.cells)
}

// Absorb copies painted cells from other into this copy where this copy is
// unpainted. Cells whose recorded color disagrees with the base are skipped.
func (s *SectionProgress) Absorb(other *SectionProgress) int {
	if other == nil || other.ID != s.ID {
		return 0
	}
	n := 0
	w, h := s.Size()
	for ly := 0; ly < h; ly++ {
		for lx := 0; lx < w; lx++ {
			col, ok := other.CellAt(lx, ly).Color()
			if ok && paintCell(s, lx, ly, col) {
				n++
			}
		}
	}
	return n
}

// PaintedCount returns the number of painted local cells.
func (s *SectionProgress) PaintedCount() int {
	n := 0
	for _, c := range s.cells {
		if c.IsPainted() {
			n++
		}
	}
	return n
}

// Colors returns the distinct base colors present in the section, ascending.
func (s *SectionProgress) Colors() []int {
	seen := make(map[int]struct{})
	w, h := s.Size()
	for ly := 0; ly < h; ly++ {
		for lx := 0; lx < w; lx++ {
			seen[s.ColorAt(lx, ly)] = struct{}{}
		}
	}
	colors := make([]int, 0, len(seen))
	for c := range seen {
		colors = append(colors, c)
	}
	sort.Ints(colors)
	return colors
}

// Encoded returns the local copy in its stored form.
func (s *SectionProgress) Encoded() [][]int {
	return encodeCells(s.cells, s.bounds.Width, s.bounds.Height)
}
