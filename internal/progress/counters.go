package progress

import (
	"math"

	pbnimage "paint-by-number/internal/image"

	"gonum.org/v1/gonum/floats"
)

// Counters holds per-color totals and painted counts.
//
// Totals are a property of the image and are computed from it on first use.
// Painted counts are maintained incrementally by every successful paint.
type Counters struct {
	base    *pbnimage.Indexed
	total   []int
	painted []int
}

func newCounters(base *pbnimage.Indexed) *Counters {
	return &Counters{
		base:    base,
		painted: make([]int, base.Colors()),
	}
}

// Len returns the number of colors.
func (c *Counters) Len() int {
	return len(c.painted)
}

// Totals returns a copy of the per-color cell totals.
func (c *Counters) Totals() []int {
	c.ensureTotals()
	return append([]int(nil), c.total...)
}

// PaintedCounts returns a copy of the per-color painted counts.
func (c *Counters) PaintedCounts() []int {
	return append([]int(nil), c.painted...)
}

// Total returns the number of cells of the given color.
func (c *Counters) Total(color int) int {
	c.ensureTotals()
	if color < 0 || color >= len(c.total) {
		return 0
	}
	return c.total[color]
}

// Painted returns the number of cells painted with the given color.
func (c *Counters) Painted(color int) int {
	if color < 0 || color >= len(c.painted) {
		return 0
	}
	return c.painted[color]
}

// Remaining returns the number of unpainted cells of the given color.
func (c *Counters) Remaining(color int) int {
	return c.Total(color) - c.Painted(color)
}

func (c *Counters) ensureTotals() {
	if c.total == nil {
		c.total = c.base.Histogram()
	}
}

func (c *Counters) inc(color int) {
	c.painted[color]++
}

func (c *Counters) resetPainted() {
	clear(c.painted)
}

// Report summarizes completion per color and overall.
type Report struct {
	// Ratio is the painted fraction per color. Colors with no cells count as complete.
	Ratio     []float64
	Remaining []int
	Painted   int
	Total     int
	Overall   float64
}

// Report computes the current completion summary.
func (c *Counters) Report() Report {
	c.ensureTotals()

	total := toFloats(c.total)
	painted := toFloats(c.painted)
	ratio := floats.DivTo(make([]float64, len(total)), painted, total)
	remaining := make([]int, len(total))
	for i := range ratio {
		if c.total[i] == 0 || math.IsNaN(ratio[i]) {
			ratio[i] = 1
		}
		remaining[i] = c.total[i] - c.painted[i]
	}

	r := Report{
		Ratio:     ratio,
		Remaining: remaining,
		Painted:   int(floats.Sum(painted)),
		Total:     int(floats.Sum(total)),
	}
	if r.Total > 0 {
		r.Overall = float64(r.Painted) / float64(r.Total)
	}
	return r
}

// Complete reports whether every cell has been painted.
func (r Report) Complete() bool {
	return r.Total > 0 && r.Painted == r.Total
}

func toFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, n := range v {
		out[i] = float64(n)
	}
	return out
}
