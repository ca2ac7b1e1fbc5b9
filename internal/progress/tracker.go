package progress

import (
	"fmt"

	pbnimage "paint-by-number/internal/image"
	"paint-by-number/pkg/geometry"
)

// Tracker owns the global paint state for one image: the overlay and its
// counters. Every mutation goes through it so the counters always agree
// with the overlay. A Tracker is not safe for concurrent use.
type Tracker struct {
	base     *pbnimage.Indexed
	overlay  *Overlay
	counters *Counters
	geom     Geometry
}

// NewTracker creates an all-unpainted tracker for base.
func NewTracker(base *pbnimage.Indexed, sectionSize int) *Tracker {
	return &Tracker{
		base:     base,
		overlay:  NewOverlay(base.Width(), base.Height()),
		counters: newCounters(base),
		geom:     NewGeometry(sectionSize, base.Width(), base.Height()),
	}
}

// Base returns the image being painted.
func (t *Tracker) Base() *pbnimage.Indexed { return t.base }

// Overlay returns the global overlay. Callers must not modify it.
func (t *Tracker) Overlay() *Overlay { return t.overlay }

// Counters returns the per-color counters.
func (t *Tracker) Counters() *Counters { return t.counters }

// Geometry returns the section geometry.
func (t *Tracker) Geometry() Geometry { return t.geom }

// Size returns the image width and height.
func (t *Tracker) Size() (w, h int) {
	return t.base.Width(), t.base.Height()
}

// ColorAt returns the base color at (x, y).
func (t *Tracker) ColorAt(x, y int) int {
	return t.base.At(x, y)
}

// CellAt returns the paint state at (x, y).
func (t *Tracker) CellAt(x, y int) Cell {
	return t.overlay.At(x, y)
}

func (t *Tracker) mark(x, y int, c Cell) {
	prev := t.overlay.At(x, y)
	t.overlay.set(x, y, c)
	if col, ok := c.Color(); ok && !prev.IsPainted() {
		t.counters.inc(col)
	}
}

// Paint paints (x, y) with color if the base color matches and the cell is
// unpainted. It reports whether anything changed.
func (t *Tracker) Paint(x, y, color int) bool {
	return paintCell(t, x, y, color)
}

// Fill flood-fills the unpainted region of color connected to (x, y).
func (t *Tracker) Fill(x, y, color int) []geometry.PointInt {
	return floodFill(t, x, y, color)
}

// Brush paints matching cells within radius of (x, y).
func (t *Tracker) Brush(x, y, radius, color int) []geometry.PointInt {
	return brush(t, x, y, radius, color)
}

// Project copies the global overlay slice of a section into a new local copy.
func (t *Tracker) Project(id SectionID) (*SectionProgress, error) {
	if !t.geom.Valid(id) {
		return nil, fmt.Errorf("section %s: %w", id, ErrSectionRange)
	}
	bounds := t.geom.Bounds(id)
	s := newSectionProgress(t.base, id, bounds)
	for ly := 0; ly < bounds.Height; ly++ {
		for lx := 0; lx < bounds.Width; lx++ {
			s.mark(lx, ly, t.overlay.At(bounds.X+lx, bounds.Y+ly))
		}
	}
	return s, nil
}

// Merge writes a section's painted cells into the global overlay. Unpainted
// local cells never erase global paint, and an already painted global cell
// keeps its color. It returns the newly painted global cells.
func (t *Tracker) Merge(s *SectionProgress) []geometry.PointInt {
	if s == nil || !t.geom.Valid(s.ID) {
		return nil
	}
	bounds := t.geom.Bounds(s.ID)
	w, h := s.Size()
	w, h = min(w, bounds.Width), min(h, bounds.Height)

	var changed []geometry.PointInt
	for ly := 0; ly < h; ly++ {
		for lx := 0; lx < w; lx++ {
			col, ok := s.CellAt(lx, ly).Color()
			if !ok {
				continue
			}
			x, y := bounds.X+lx, bounds.Y+ly
			if paintCell(t, x, y, col) {
				changed = append(changed, geometry.Pt(x, y))
			}
		}
	}
	return changed
}

// Reset clears the overlay and painted counters. Totals are kept.
func (t *Tracker) Reset() {
	t.overlay.Clear()
	t.counters.resetPainted()
}

// RestoreReport describes how much stored state Restore could trust.
type RestoreReport struct {
	RebuiltPainted  bool
	RecomputedTotal bool
}

// Restore installs a decoded overlay and any stored counters. Painted counts
// are accepted only if they match the overlay; otherwise they are rebuilt
// from it. Totals are accepted only if they cover every cell of the image.
func (t *Tracker) Restore(o *Overlay, painted, total []int) (RestoreReport, error) {
	var rep RestoreReport
	if o.Width() != t.base.Width() || o.Height() != t.base.Height() {
		return rep, fmt.Errorf("overlay is %dx%d, image is %dx%d",
			o.Width(), o.Height(), t.base.Width(), t.base.Height())
	}

	k := t.base.Colors()
	observed := o.Counts(k)
	if !equalCounts(painted, observed) {
		painted = observed
		rep.RebuiltPainted = true
	}

	if !validTotals(total, k, t.base.Width()*t.base.Height()) {
		total = nil
		rep.RecomputedTotal = true
	}

	t.overlay = o.Clone()
	t.counters.painted = append([]int(nil), painted...)
	t.counters.total = append([]int(nil), total...)
	return rep, nil
}

func equalCounts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func validTotals(total []int, k, cells int) bool {
	if len(total) != k {
		return false
	}
	sum := 0
	for _, n := range total {
		if n < 0 {
			return false
		}
		sum += n
	}
	return sum == cells
}
