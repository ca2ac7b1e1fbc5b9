package progress

import "paint-by-number/pkg/geometry"

// paintTarget is a grid of base colors with mutable paint state. Both the
// global tracker and a section's local copy implement it.
type paintTarget interface {
	Size() (w, h int)
	ColorAt(x, y int) int
	CellAt(x, y int) Cell
	mark(x, y int, c Cell)
}

var neighbors4 = [4]geometry.PointInt{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

func inside(t paintTarget, x, y int) bool {
	w, h := t.Size()
	return x >= 0 && y >= 0 && x < w && y < h
}

// paintable reports whether (x, y) may be painted with color.
func paintable(t paintTarget, x, y, color int) bool {
	return inside(t, x, y) && t.ColorAt(x, y) == color && !t.CellAt(x, y).IsPainted()
}

func paintCell(t paintTarget, x, y, color int) bool {
	if !paintable(t, x, y, color) {
		return false
	}
	t.mark(x, y, Painted(color))
	return true
}

// floodFill paints the 4-connected region of unpainted cells of color
// reachable from (x0, y0). Painted cells are barriers. Cells are marked
// as they are pushed, so the paint state doubles as the visited set and
// the stack never holds more than the region.
func floodFill(t paintTarget, x0, y0, color int) []geometry.PointInt {
	if !paintable(t, x0, y0, color) {
		return nil
	}

	fill := Painted(color)
	t.mark(x0, y0, fill)
	changed := []geometry.PointInt{{X: x0, Y: y0}}
	stack := []geometry.PointInt{{X: x0, Y: y0}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range neighbors4 {
			n := p.Add(d)
			if !paintable(t, n.X, n.Y, color) {
				continue
			}
			t.mark(n.X, n.Y, fill)
			changed = append(changed, n)
			stack = append(stack, n)
		}
	}
	return changed
}

// brush paints every matching unpainted cell inside the disc of the given
// radius centered on (cx, cy).
func brush(t paintTarget, cx, cy, radius, color int) []geometry.PointInt {
	if radius < 0 {
		return nil
	}

	var changed []geometry.PointInt
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			x, y := cx+dx, cy+dy
			if paintCell(t, x, y, color) {
				changed = append(changed, geometry.Pt(x, y))
			}
		}
	}
	return changed
}
