// Package render turns a palette-indexed image and its paint state into a
// displayable RGBA raster.
package render

import (
	"image"
	"image/color"
	"math"

	pbnimage "paint-by-number/internal/image"
	"paint-by-number/internal/progress"
	"paint-by-number/pkg/colorutil"
	"paint-by-number/pkg/geometry"

	"golang.org/x/image/draw"
)

// Display defaults.
const (
	DefaultMaxWidth  = 1000
	DefaultMaxHeight = 800

	// Images smaller than this in both dimensions are upscaled to at least
	// MinUpscale so single cells stay visible.
	SmallImageLimit = 400
	MinUpscale      = 1.5

	// SectionCellSize is the on-screen size of one cell in the section editor.
	SectionCellSize = 20
)

// Grid is a palette-indexed raster with paint state, addressed in its own
// coordinates. The global tracker and section copies both satisfy it.
type Grid interface {
	Size() (w, h int)
	ColorAt(x, y int) int
	CellAt(x, y int) progress.Cell
}

// Highlight selects a color whose unpainted cells are tinted.
type Highlight struct {
	Color   int
	Enabled bool
}

// NoHighlight disables tinting.
var NoHighlight = Highlight{}

// HighlightColor tints the unpainted cells of color c.
func HighlightColor(c int) Highlight {
	return Highlight{Color: c, Enabled: true}
}

// Options controls scaling and decorations.
type Options struct {
	// MaxWidth and MaxHeight bound the output when Scale is zero.
	MaxWidth  int
	MaxHeight int

	// Scale forces a scale factor instead of fitting.
	Scale float64

	// GridSpacing draws separators every GridSpacing cells. Zero disables them.
	GridSpacing int

	// CellBorders outlines every cell and CellLabels prints each cell's color
	// number. Both need a scale of at least labelMinScale.
	CellBorders bool
	CellLabels  bool

	// Background is the unpainted color; zero means colorutil.Unpainted.
	Background color.RGBA
}

// OverviewOptions renders the whole image fitted to the default display area
// with separators every sectionSize cells.
func OverviewOptions(sectionSize int) Options {
	return Options{
		MaxWidth:    DefaultMaxWidth,
		MaxHeight:   DefaultMaxHeight,
		GridSpacing: sectionSize,
	}
}

// SectionOptions renders one section at a fixed cell size with borders and
// color numbers on a white background.
func SectionOptions() Options {
	return Options{
		Scale:       SectionCellSize,
		CellBorders: true,
		CellLabels:  true,
		Background:  colorutil.White,
	}
}

func (o Options) background() color.RGBA {
	if o.Background == (color.RGBA{}) {
		return colorutil.Unpainted
	}
	return o.Background
}

// CellColor returns the display color of one cell.
func CellColor(g Grid, pal pbnimage.Palette, hl Highlight, bg color.RGBA, x, y int) color.RGBA {
	if col, ok := g.CellAt(x, y).Color(); ok {
		if c, ok := pal.Color(col); ok {
			return c
		}
		return bg
	}
	if hl.Enabled && g.ColorAt(x, y) == hl.Color {
		return colorutil.Highlight
	}
	return bg
}

// Raster renders g at one pixel per cell.
func Raster(g Grid, pal pbnimage.Palette, hl Highlight) *image.RGBA {
	return raster(g, pal, hl, colorutil.Unpainted)
}

func raster(g Grid, pal pbnimage.Palette, hl Highlight, bg color.RGBA) *image.RGBA {
	w, h := g.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, CellColor(g, pal, hl, bg, x, y))
		}
	}
	return img
}

// Update repaints the given cells of a one-pixel-per-cell raster produced by
// Raster, so a caller can redraw only what a command changed.
func Update(dst *image.RGBA, g Grid, pal pbnimage.Palette, hl Highlight, cells []geometry.PointInt) {
	b := dst.Bounds()
	for _, p := range cells {
		if !(image.Point{X: p.X, Y: p.Y}).In(b) {
			continue
		}
		dst.SetRGBA(p.X, p.Y, CellColor(g, pal, hl, colorutil.Unpainted, p.X, p.Y))
	}
}

// Fit returns the uniform scale that fits a w×h raster into maxW×maxH
// without enlarging it, except that small images get at least MinUpscale.
func Fit(w, h, maxW, maxH int) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}

	scale := math.Min(1, math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h)))
	if w < SmallImageLimit && h < SmallImageLimit {
		scale = math.Max(scale, MinUpscale)
	}
	return scale
}

// ScaledSize returns the output dimensions for a scale factor.
func ScaledSize(w, h int, scale float64) (int, int) {
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}

// Scale resamples src by scale with nearest-neighbor sampling.
func Scale(src *image.RGBA, scale float64) *image.RGBA {
	w, h := ScaledSize(src.Bounds().Dx(), src.Bounds().Dy(), scale)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Render produces the display raster for g.
func Render(g Grid, pal pbnimage.Palette, hl Highlight, opts Options) *image.RGBA {
	w, h := g.Size()
	scale := opts.Scale
	if scale <= 0 {
		scale = Fit(w, h, opts.MaxWidth, opts.MaxHeight)
	}

	out := Scale(raster(g, pal, hl, opts.background()), scale)
	if opts.CellBorders && scale >= labelMinScale {
		DrawGrid(out, w, h, 1, scale, colorutil.CellLine)
	}
	if opts.CellLabels && scale >= labelMinScale {
		drawLabels(out, g, scale)
	}
	if opts.GridSpacing > 0 {
		DrawGrid(out, w, h, opts.GridSpacing, scale, colorutil.GridLine)
	}
	return out
}
