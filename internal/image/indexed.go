// Package image provides the palette-indexed base raster and its color table.
package image

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"paint-by-number/pkg/geometry"
)

var (
	ErrEmpty          = errors.New("image has no cells")
	ErrRagged         = errors.New("image rows differ in length")
	ErrColorRange     = errors.New("color index outside palette")
	ErrComponentRange = errors.New("palette component outside 0-255")
	ErrEmptyPalette   = errors.New("palette has no colors")
)

// Palette is the ordered color table addressed by color index.
type Palette []color.RGBA

// Len returns the number of colors K.
func (p Palette) Len() int {
	return len(p)
}

// Color returns the color at index i, or false if i is out of range.
func (p Palette) Color(i int) (color.RGBA, bool) {
	if i < 0 || i >= len(p) {
		return color.RGBA{}, false
	}
	return p[i], true
}

// Triples returns the palette in its [R,G,B] document form.
func (p Palette) Triples() [][3]int {
	out := make([][3]int, len(p))
	for i, c := range p {
		out[i] = [3]int{int(c.R), int(c.G), int(c.B)}
	}
	return out
}

// DecodePalette parses a JSON array of [R,G,B] triples.
func DecodePalette(data []byte) (Palette, error) {
	var raw [][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse palette: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPalette
	}

	pal := make(Palette, len(raw))
	for i, entry := range raw {
		if len(entry) != 3 {
			return nil, fmt.Errorf("palette entry %d: want 3 components, got %d", i, len(entry))
		}
		for _, v := range entry {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("palette entry %d: %w", i, ErrComponentRange)
			}
		}
		pal[i] = color.RGBA{R: uint8(entry[0]), G: uint8(entry[1]), B: uint8(entry[2]), A: 255}
	}
	return pal, nil
}

// Indexed is an immutable raster of color indices. Cells are stored row-major.
type Indexed struct {
	width  int
	height int
	pix    []int
	colors int
}

// New builds an Indexed image from rows of color indices, validating every
// index against a palette of k colors.
func New(rows [][]int, k int) (*Indexed, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	if k <= 0 {
		return nil, ErrEmptyPalette
	}

	w, h := len(rows[0]), len(rows)
	img := &Indexed{width: w, height: h, pix: make([]int, w*h), colors: k}
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), w, ErrRagged)
		}
		for x, v := range row {
			if v < 0 || v >= k {
				return nil, fmt.Errorf("cell (%d,%d) = %d with %d colors: %w", x, y, v, k, ErrColorRange)
			}
			img.pix[y*w+x] = v
		}
	}
	return img, nil
}

// DecodeMatrix parses a row-major JSON 2-D array of color indices.
func DecodeMatrix(data []byte, k int) (*Indexed, error) {
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse matrix: %w", err)
	}
	return New(rows, k)
}

// Width returns the image width in cells.
func (m *Indexed) Width() int { return m.width }

// Height returns the image height in cells.
func (m *Indexed) Height() int { return m.height }

// Colors returns the size of the palette the image was validated against.
func (m *Indexed) Colors() int { return m.colors }

// Bounds returns the image rectangle anchored at the origin.
func (m *Indexed) Bounds() geometry.RectInt {
	return geometry.NewRectInt(0, 0, m.width, m.height)
}

// In reports whether (x, y) is a valid cell.
func (m *Indexed) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// At returns the color index at (x, y). The caller must check In first.
func (m *Indexed) At(x, y int) int {
	return m.pix[y*m.width+x]
}

// Rows returns a copy of the image in its document form.
func (m *Indexed) Rows() [][]int {
	rows := make([][]int, m.height)
	for y := range rows {
		rows[y] = append([]int(nil), m.pix[y*m.width:(y+1)*m.width]...)
	}
	return rows
}

// Histogram returns the number of cells of each color.
func (m *Indexed) Histogram() []int {
	counts := make([]int, m.colors)
	for _, v := range m.pix {
		counts[v]++
	}
	return counts
}
