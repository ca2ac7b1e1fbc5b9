package render

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"paint-by-number/internal/progress"
	"paint-by-number/pkg/colorutil"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelMinScale is the smallest cell size, in pixels, that fits a label.
const labelMinScale = 12

// DrawGrid blends one-pixel separators into dst every spacing cells of a
// w×h cell raster scaled by scale. The far edges are always drawn.
func DrawGrid(dst *image.RGBA, w, h, spacing int, scale float64, c color.RGBA) {
	if spacing <= 0 {
		return
	}
	b := dst.Bounds()

	for _, x := range lineOffsets(w, spacing, scale, b.Dx()) {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			blendAt(dst, b.Min.X+x, y, c)
		}
	}
	for _, y := range lineOffsets(h, spacing, scale, b.Dy()) {
		for x := b.Min.X; x < b.Max.X; x++ {
			blendAt(dst, x, b.Min.Y+y, c)
		}
	}
}

// lineOffsets returns the pixel offsets of separators at cell multiples of
// spacing in [0, n], clamped to the last pixel.
func lineOffsets(n, spacing int, scale float64, px int) []int {
	var out []int
	last := -1
	add := func(cell int) {
		off := min(int(math.Round(float64(cell)*scale)), px-1)
		if off != last {
			out = append(out, off)
			last = off
		}
	}
	for cell := 0; cell < n; cell += spacing {
		add(cell)
	}
	add(n)
	return out
}

func blendAt(dst *image.RGBA, x, y int, c color.RGBA) {
	dst.SetRGBA(x, y, colorutil.Blend(dst.RGBAAt(x, y), c))
}

// drawLabels prints each cell's color number centered in the cell.
func drawLabels(dst *image.RGBA, g Grid, scale float64) {
	face := basicfont.Face7x13
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	painted := image.NewUniform(colorutil.Black)
	unpainted := image.NewUniform(colorutil.LabelDim)
	d := &font.Drawer{Dst: dst, Face: face}

	w, h := g.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			label := strconv.Itoa(g.ColorAt(x, y))
			x0 := int(math.Round(float64(x) * scale))
			y0 := int(math.Round(float64(y) * scale))
			cell := int(math.Round(float64(x+1)*scale)) - x0

			d.Src = unpainted
			if g.CellAt(x, y).IsPainted() {
				d.Src = painted
			}
			adv := d.MeasureString(label).Ceil()
			d.Dot = fixed.P(x0+(cell-adv)/2, y0+(cell+ascent-descent)/2)
			d.DrawString(label)
		}
	}
}

var _ Grid = (*progress.Tracker)(nil)
var _ Grid = (*progress.SectionProgress)(nil)
