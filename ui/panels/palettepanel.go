// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"image/color"
	"strconv"

	"paint-by-number/internal/app"
	"paint-by-number/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	minBrush     = 0
	maxBrush     = 10
	defaultBrush = 1
)

// PalettePanel lists the palette colors with their remaining cell counts
// and holds the brush size.
type PalettePanel struct {
	session   *app.Session
	container fyne.CanvasObject

	list       *widget.List
	brushLabel *widget.Label
	brush      int
	selected   int

	onSelect func(color int)
	onBrush  func(radius int)
}

// NewPalettePanel creates a palette panel for session.
func NewPalettePanel(session *app.Session) *PalettePanel {
	pp := &PalettePanel{
		session:  session,
		brush:    defaultBrush,
		selected: -1,
	}

	pp.list = widget.NewList(
		func() int {
			return session.Palette().Len()
		},
		func() fyne.CanvasObject {
			swatch := fynecanvas.NewRectangle(color.Black)
			swatch.SetMinSize(fyne.NewSize(32, 24))
			number := fynecanvas.NewText("0", color.White)
			number.Alignment = fyne.TextAlignCenter
			return container.NewHBox(
				container.NewStack(swatch, number),
				widget.NewLabel("remaining"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			pp.updateRow(int(id), obj.(*fyne.Container))
		},
	)
	pp.list.OnSelected = func(id widget.ListItemID) {
		pp.selected = int(id)
		if pp.onSelect != nil {
			pp.onSelect(pp.selected)
		}
	}
	pp.list.OnUnselected = func(id widget.ListItemID) {
		if pp.selected == int(id) {
			pp.selected = -1
		}
	}

	pp.brushLabel = widget.NewLabel(brushText(pp.brush))
	brushSlider := widget.NewSlider(minBrush, maxBrush)
	brushSlider.Value = float64(pp.brush)
	brushSlider.OnChanged = func(v float64) {
		pp.brush = int(v)
		pp.brushLabel.SetText(brushText(pp.brush))
		if pp.onBrush != nil {
			pp.onBrush(pp.brush)
		}
	}

	pp.container = container.NewBorder(
		container.NewVBox(pp.brushLabel, brushSlider, widget.NewSeparator()),
		nil, nil, nil,
		pp.list,
	)

	session.On(app.EventCellsPainted, func(interface{}) { pp.list.Refresh() })
	session.On(app.EventProgressReset, func(interface{}) { pp.list.Refresh() })
	return pp
}

func brushText(r int) string {
	return fmt.Sprintf("Brush radius: %d", r)
}

func (pp *PalettePanel) updateRow(i int, row *fyne.Container) {
	c, ok := pp.session.Palette().Color(i)
	if !ok {
		return
	}
	stack := row.Objects[0].(*fyne.Container)
	swatch := stack.Objects[0].(*fynecanvas.Rectangle)
	number := stack.Objects[1].(*fynecanvas.Text)
	label := row.Objects[1].(*widget.Label)

	swatch.FillColor = c
	swatch.Refresh()
	number.Text = strconv.Itoa(i)
	number.Color = colorutil.ContrastText(c)
	number.Refresh()
	label.SetText(remainingText(pp.session.Tracker().Counters().Remaining(i)))
}

func remainingText(n int) string {
	if n == 0 {
		return "done"
	}
	return fmt.Sprintf("%d remaining", n)
}

// Container returns the panel for embedding in layouts.
func (pp *PalettePanel) Container() fyne.CanvasObject {
	return pp.container
}

// Selected returns the selected color, or -1.
func (pp *PalettePanel) Selected() int {
	return pp.selected
}

// Select selects a color programmatically.
func (pp *PalettePanel) Select(color int) {
	pp.list.Select(widget.ListItemID(color))
}

// Brush returns the brush radius.
func (pp *PalettePanel) Brush() int {
	return pp.brush
}

// OnSelect sets a callback for color selection.
func (pp *PalettePanel) OnSelect(callback func(color int)) {
	pp.onSelect = callback
}

// OnBrushChange sets a callback for brush radius changes.
func (pp *PalettePanel) OnBrushChange(callback func(radius int)) {
	pp.onBrush = callback
}
