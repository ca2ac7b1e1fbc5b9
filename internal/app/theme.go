package app

import (
	"image/color"

	"paint-by-number/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PaintTheme provides a custom theme for the application.
type PaintTheme struct{}

var _ fyne.Theme = (*PaintTheme)(nil)

// Color returns the palette override for name, or the default color.
func (t *PaintTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0xD8, G: 0x43, B: 0x15, A: 0xFF} // Terracotta
	case theme.ColorNameSelection:
		return colorutil.Highlight
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

// Font returns the default font.
func (t *PaintTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns the default icon.
func (t *PaintTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size tightens padding and widens scroll bars.
func (t *PaintTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3 // Tighter swatch rows
	case theme.SizeNameScrollBar:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
