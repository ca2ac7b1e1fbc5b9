// Command pbnrender loads a paint-by-number image with its stored progress,
// optionally applies paint commands, and writes a rendering.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"paint-by-number/internal/app"
	pbnimage "paint-by-number/internal/image"
	"paint-by-number/internal/project"
	"paint-by-number/internal/render"
	"paint-by-number/internal/store"
	"paint-by-number/internal/version"
)

func main() {
	envFile := flag.String("env", "", "Env file to load instead of ./.env")
	projectPath := flag.String("project", "", "Project file (.pbnproj) naming the image and progress file")
	matrixPath := flag.String("matrix", "", "Color index matrix (path or URL)")
	palettePath := flag.String("palette", "", "Palette (path or URL)")
	storePath := flag.String("store", "", "Progress file; 'none' keeps progress in memory")
	mode := flag.String("mode", "full", "Render mode: full, overview or section")
	section := flag.String("section", "0,0", "Section for -mode section, as sx,sy")
	highlight := flag.Int("highlight", -1, "Color index to highlight")
	fill := flag.String("fill", "", "Flood fill before rendering, as x,y,color")
	paint := flag.String("paint", "", "Paint one cell before rendering, as x,y,color")
	reset := flag.Bool("reset", false, "Erase all stored progress first")
	out := flag.String("out", "", "Output image (.png or .tiff)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pbnrender %s\n", version.String())
		return
	}

	var (
		cfg app.Config
		err error
	)
	if *envFile != "" {
		cfg, err = app.LoadConfig(*envFile)
	} else {
		cfg, err = app.LoadConfig()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := cfg.NewLogger()

	if *projectPath != "" {
		proj, err := project.Load(*projectPath)
		if err != nil {
			log.WithError(err).Error("Failed to load project")
			os.Exit(1)
		}
		cfg.ApplyProject(proj, *projectPath)
		fmt.Printf("Project: %s\n", proj.Name)
	}
	if *matrixPath != "" {
		cfg.MatrixPath = *matrixPath
	}
	if *palettePath != "" {
		cfg.PalettePath = *palettePath
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, err := pbnimage.LoadSource(ctx, cfg.MatrixPath, cfg.PalettePath)
	if err != nil {
		log.WithError(err).Error("Failed to load image")
		os.Exit(1)
	}

	var st store.Store = store.NewMemory()
	if cfg.StorePath != "none" {
		fs, err := store.OpenFile(cfg.StorePath)
		if err != nil {
			log.WithError(err).Error("Failed to open progress store")
			os.Exit(1)
		}
		st = fs
	}

	session, err := app.LoadSourceSession(src, st, app.WithConfig(cfg), app.WithLogger(log))
	if err != nil {
		log.WithError(err).Error("Failed to start session")
		os.Exit(1)
	}

	if *reset {
		session.ResetAll()
	}
	if *paint != "" {
		x, y, c, err := parseTriple(*paint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -paint: %v\n", err)
			os.Exit(1)
		}
		eff := session.PaintAt(x, y, c)
		fmt.Printf("Paint (%d,%d) color %d: applied=%v\n", x, y, c, eff.Applied)
	}
	if *fill != "" {
		x, y, c, err := parseTriple(*fill)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -fill: %v\n", err)
			os.Exit(1)
		}
		eff := session.FillAt(x, y, c)
		fmt.Printf("Fill (%d,%d) color %d: %d cells\n", x, y, c, len(eff.Changed))
	}

	printReport(session)

	if *out == "" {
		return
	}

	hl := render.NoHighlight
	if *highlight >= 0 {
		hl = render.HighlightColor(*highlight)
	}

	rendered, err := renderMode(session, *mode, *section, hl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	if err := render.Encode(f, rendered, render.FormatFromPath(*out)); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}

	b := rendered.Bounds()
	fmt.Printf("\nWrote %s (%dx%d, %s)\n", *out, b.Dx(), b.Dy(), *mode)
}
