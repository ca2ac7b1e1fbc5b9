// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"

	"paint-by-number/internal/app"
	"paint-by-number/internal/progress"
	"paint-by-number/internal/render"
	"paint-by-number/internal/version"
	"paint-by-number/ui/canvas"
	"paint-by-number/ui/panels"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// View is one of the three ways of looking at the image.
type View int

const (
	ViewFree View = iota
	ViewOverview
	ViewSection
)

const (
	labelFree     = "Free paint"
	labelSections = "Sections"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	log     logrus.FieldLogger

	canvas      *canvas.PaintCanvas
	palette     *panels.PalettePanel
	statusBar   *widget.Label
	progressBar *widget.ProgressBar
	viewRadio   *widget.RadioGroup
	sectionBar  *fyne.Container

	view    View
	section *progress.SectionProgress

	// raster is the unscaled free paint image, updated cell by cell.
	raster *image.RGBA
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session, log logrus.FieldLogger) *MainWindow {
	win := fyneApp.NewWindow("Paint by Number " + version.String())

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		log:     log,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	if id, ok := session.SelectedSection(); ok {
		mw.enterSection(id)
	} else {
		mw.showFree()
	}
	mw.updateProgress()
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewPaintCanvas()
	mw.canvas.OnTap(mw.onCanvasTap)
	mw.canvas.OnDrag(mw.onCanvasDrag)

	mw.palette = panels.NewPalettePanel(mw.session)
	mw.palette.OnSelect(func(int) { mw.redraw() })

	mw.statusBar = widget.NewLabel("Ready")
	mw.progressBar = widget.NewProgressBar()

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(
		mw.palette.Container(),
		canvasArea,
	)
	split.SetOffset(0.2)

	content := container.NewBorder(
		nil,
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.progressBar, mw.statusBar)),
		nil,
		nil,
		split,
	)

	mw.SetContent(content)
	mw.SetCloseIntercept(mw.Close)
	mw.Resize(fyne.NewSize(1280, 900))
}

// createToolbar creates the view switch, zoom and section controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.viewRadio = widget.NewRadioGroup([]string{labelFree, labelSections}, func(choice string) {
		switch choice {
		case labelFree:
			if mw.view != ViewFree {
				mw.leaveSection()
				mw.showFree()
			}
		case labelSections:
			if mw.view == ViewFree {
				mw.showOverview()
			}
		}
	})
	mw.viewRadio.Horizontal = true
	mw.viewRadio.Required = true

	backBtn := widget.NewButton("Back to sections", func() {
		mw.leaveSection()
		mw.showOverview()
	})
	resetBtn := widget.NewButton("Reset section", mw.onResetSection)
	mw.sectionBar = container.NewHBox(backBtn, resetBtn)
	mw.sectionBar.Hide()

	return container.NewHBox(
		mw.viewRadio,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewSeparator(),
		mw.sectionBar,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Save Progress", mw.onSave),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset All Progress...", mw.onResetAll),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Free Paint", func() { mw.viewRadio.SetSelected(labelFree) }),
		fyne.NewMenuItem("Sections", func() { mw.viewRadio.SetSelected(labelSections) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventCellsPainted, func(data interface{}) {
		eff, ok := data.(app.Effect)
		if !ok {
			return
		}
		if mw.view == ViewFree && mw.raster != nil && !eff.Full {
			render.Update(mw.raster, mw.session.Tracker(), mw.session.Palette(), mw.highlight(), eff.Changed)
			mw.canvas.Refresh()
		}
		mw.updateProgress()
	})

	mw.session.On(app.EventProgressReset, func(interface{}) {
		mw.redraw()
		mw.updateProgress()
		mw.updateStatus("All progress reset")
	})

	mw.session.On(app.EventWarning, func(data interface{}) {
		if w, ok := data.(app.Warning); ok {
			mw.updateStatus("Progress may not be saved: " + w.Error())
		}
	})
}

func (mw *MainWindow) highlight() render.Highlight {
	if c := mw.palette.Selected(); c >= 0 {
		return render.HighlightColor(c)
	}
	return render.NoHighlight
}

// redraw re-renders the current view.
func (mw *MainWindow) redraw() {
	switch mw.view {
	case ViewFree:
		mw.showFree()
	case ViewOverview:
		mw.showOverview()
	case ViewSection:
		mw.showSection()
	}
}

func (mw *MainWindow) showFree() {
	mw.view = ViewFree
	mw.sectionBar.Hide()
	mw.viewRadio.SetSelected(labelFree)

	mw.raster = render.Raster(mw.session.Tracker(), mw.session.Palette(), mw.highlight())
	mw.canvas.SetImage(mw.raster, mw.session.OverviewScale())
	mw.updateStatus("Free paint: click or drag to paint the selected color")
}

func (mw *MainWindow) showOverview() {
	mw.view = ViewOverview
	mw.sectionBar.Hide()
	mw.raster = nil
	mw.viewRadio.SetSelected(labelSections)

	mw.canvas.SetImage(mw.session.RenderOverview(mw.highlight()), 1)
	mw.updateStatus("Sections: click a section to open it")
}

func (mw *MainWindow) showSection() {
	if mw.section == nil {
		mw.showOverview()
		return
	}
	img, err := mw.session.RenderSection(mw.section.ID, mw.highlight())
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.canvas.SetImage(img, 1)
}

func (mw *MainWindow) enterSection(id progress.SectionID) {
	local, err := mw.session.EnterSection(id)
	if err != nil {
		mw.log.WithError(err).Warn("Cannot open section")
		mw.showOverview()
		return
	}
	mw.section = local
	mw.view = ViewSection
	mw.raster = nil
	mw.viewRadio.SetSelected(labelSections)
	mw.sectionBar.Show()
	mw.showSection()
	mw.updateStatus(fmt.Sprintf("Section %d,%d: click to fill a region of the selected color", id.X, id.Y))
}

func (mw *MainWindow) leaveSection() {
	if mw.section == nil {
		return
	}
	mw.session.LeaveSection(mw.section.ID, mw.section)
	mw.section = nil
}

func (mw *MainWindow) onCanvasTap(x, y float64) {
	switch mw.view {
	case ViewOverview:
		if id, ok := mw.session.SectionAt(x, y); ok {
			mw.enterSection(id)
		}
	case ViewSection:
		c, ok := mw.selectedColor()
		if !ok {
			return
		}
		lx, ly := int(x)/render.SectionCellSize, int(y)/render.SectionCellSize
		if mw.session.FillInSection(mw.section, lx, ly, c).Applied {
			mw.showSection()
		}
	default:
		mw.brushAt(x, y)
	}
}

func (mw *MainWindow) onCanvasDrag(x, y float64) {
	if mw.view == ViewFree {
		mw.brushAt(x, y)
	}
}

func (mw *MainWindow) brushAt(x, y float64) {
	c, ok := mw.selectedColor()
	if !ok {
		return
	}
	mw.session.BrushAt(int(x), int(y), mw.palette.Brush(), c)
}

func (mw *MainWindow) selectedColor() (int, bool) {
	c := mw.palette.Selected()
	if c < 0 {
		mw.updateStatus("Select a color first")
		return 0, false
	}
	return c, true
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateProgress() {
	rep := mw.session.Progress()
	mw.progressBar.SetValue(rep.Overall)
	if rep.Complete() {
		mw.updateStatus("Finished! Every cell is painted.")
	}
}

// Menu action handlers

func (mw *MainWindow) onSave() {
	if err := mw.session.Save(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.updateStatus("Progress saved")
}

func (mw *MainWindow) onResetSection() {
	if mw.section == nil {
		return
	}
	dialog.ShowConfirm("Reset Section",
		"Clear this section's own progress? Paint already merged into the picture stays.",
		func(ok bool) {
			if !ok {
				return
			}
			mw.session.ResetSection(mw.section)
			mw.showSection()
		}, mw.Window)
}

func (mw *MainWindow) onResetAll() {
	dialog.ShowConfirm("Reset All Progress",
		"Erase all painted cells in every view? This cannot be undone.",
		func(ok bool) {
			if ok {
				mw.session.ResetAll()
			}
		}, mw.Window)
}

// Close merges an open section before closing the window.
func (mw *MainWindow) Close() {
	mw.leaveSection()
	if err := mw.session.Save(); err != nil {
		mw.log.WithError(err).Warn("Final save failed")
	}
	mw.Window.Close()
}

func (mw *MainWindow) onAbout() {
	w, h := mw.session.Tracker().Size()
	dialog.ShowInformation("About Paint by Number",
		fmt.Sprintf("Paint by Number v%s\n\n"+
			"Image: %dx%d cells, %d colors\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, w, h, mw.session.Palette().Len(), version.BuildTime, version.GitCommit),
		mw.Window)
}
