package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"paint-by-number/internal/app"
	"paint-by-number/internal/progress"
	"paint-by-number/internal/render"
)

// parseInts splits a comma separated list of n integers.
func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseTriple(s string) (x, y, c int, err error) {
	v, err := parseInts(s, 3)
	if err != nil {
		return 0, 0, 0, err
	}
	return v[0], v[1], v[2], nil
}

func parseSection(s string) (progress.SectionID, error) {
	v, err := parseInts(s, 2)
	if err != nil {
		return progress.SectionID{}, err
	}
	return progress.SectionID{X: v[0], Y: v[1]}, nil
}

func renderMode(s *app.Session, mode, section string, hl render.Highlight) (*image.RGBA, error) {
	switch mode {
	case "full":
		return s.RenderFull(hl), nil
	case "overview":
		return s.RenderOverview(hl), nil
	case "section":
		id, err := parseSection(section)
		if err != nil {
			return nil, err
		}
		return s.RenderSection(id, hl)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func printReport(s *app.Session) {
	w, h := s.Tracker().Size()
	cols, rows := s.Geometry().Grid()
	rep := s.Progress()

	fmt.Printf("Image: %dx%d cells, %d colors, %dx%d sections\n", w, h, s.Palette().Len(), cols, rows)
	fmt.Printf("\n%-6s %-8s %10s %10s %10s %8s\n", "Color", "RGB", "Painted", "Total", "Remaining", "Done")
	fmt.Println(strings.Repeat("-", 57))

	counters := s.Tracker().Counters()
	for i, c := range s.Palette() {
		fmt.Printf("%-6d %02x%02x%02x   %10d %10d %10d %7.1f%%\n",
			i, c.R, c.G, c.B, counters.Painted(i), counters.Total(i), rep.Remaining[i], rep.Ratio[i]*100)
	}
	fmt.Printf("\nOverall: %d/%d cells (%.1f%%)\n", rep.Painted, rep.Total, rep.Overall*100)
}
