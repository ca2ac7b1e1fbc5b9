// Package main provides the entry point for the Paint by Number application.
package main

import (
	"context"
	"os"

	"paint-by-number/internal/app"
	pbnimage "paint-by-number/internal/image"
	"paint-by-number/internal/project"
	"paint-by-number/internal/store"
	"paint-by-number/internal/version"
	"paint-by-number/ui/mainwindow"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const appID = "io.github.paintbynumber"

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		cfg = app.DefaultConfig()
		cfg.NewLogger().WithError(err).Warn("Invalid configuration, using defaults")
	}
	log := cfg.NewLogger()
	log.WithField("version", version.String()).Info("Starting Paint by Number")

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.PaintTheme{})

	// A project file, or a matrix and palette, may be given on the command line.
	useFile := os.Getenv("PBN_STORE") != ""
	switch {
	case len(os.Args) == 2 && project.IsProject(os.Args[1]):
		proj, err := project.Load(os.Args[1])
		if err != nil {
			log.WithError(err).Error("Failed to load project")
			showFatal(a, err)
			return
		}
		cfg.ApplyProject(proj, os.Args[1])
		useFile = true
	case len(os.Args) > 2:
		cfg.MatrixPath, cfg.PalettePath = os.Args[1], os.Args[2]
	}

	src, err := pbnimage.LoadSource(context.Background(), cfg.MatrixPath, cfg.PalettePath)
	if err != nil {
		log.WithError(err).Error("Failed to load image")
		showFatal(a, err)
		return
	}

	// Progress lives in the app preferences unless a file is configured.
	var st store.Store = store.NewPrefs(a.Preferences())
	if useFile {
		fs, err := store.OpenFile(cfg.StorePath)
		if err != nil {
			log.WithError(err).Error("Failed to open progress store")
			showFatal(a, err)
			return
		}
		st = fs
	}

	session, err := app.LoadSourceSession(src, st, app.WithConfig(cfg), app.WithLogger(log))
	if err != nil {
		log.WithError(err).Error("Failed to start session")
		showFatal(a, err)
		return
	}

	win := mainwindow.New(a, session, log)
	win.ShowAndRun()
}

// showFatal shows an error in an otherwise empty window and quits when it
// is dismissed.
func showFatal(a fyne.App, err error) {
	w := a.NewWindow("Paint by Number")
	w.SetContent(widget.NewLabel("Paint by Number could not start."))
	w.Resize(fyne.NewSize(480, 200))
	d := dialog.NewError(err, w)
	d.SetOnClosed(a.Quit)
	d.Show()
	w.ShowAndRun()
}
