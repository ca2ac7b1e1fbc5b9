// Package colorutil provides shared color utilities for the paint-by-number application.
package colorutil

import (
	"fmt"
	"image/color"
)

// Fixed display colors. Unpainted and Highlight are chosen to stay
// distinguishable from typical palette entries and from each other.
var (
	Black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Unpainted = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	Highlight = color.RGBA{R: 255, G: 200, B: 200, A: 255}
	GridLine  = color.RGBA{R: 0, G: 0, B: 0, A: 153}
	CellLine  = color.RGBA{R: 204, G: 204, B: 204, A: 255}
	LabelDim  = color.RGBA{R: 102, G: 102, B: 102, A: 255}
)

// lightThreshold is the luminance above which a background counts as light.
const lightThreshold = 150

// RGB builds an opaque color from 0-255 components.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Luminance returns the perceived brightness (0-255) of c using Rec. 601 weights.
func Luminance(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// ContrastText returns black for light backgrounds and white for dark ones.
func ContrastText(bg color.RGBA) color.RGBA {
	if Luminance(bg) > lightThreshold {
		return Black
	}
	return White
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Blend composites src over dst using src's alpha. Both are treated as
// non-premultiplied for the purposes of line drawing on opaque rasters.
func Blend(dst, src color.RGBA) color.RGBA {
	a := uint32(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: 255,
	}
}
