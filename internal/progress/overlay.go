package progress

// Overlay is a dense grid of cell paint states over the image domain.
// Its dimensions are fixed at creation.
type Overlay struct {
	width  int
	height int
	cells  []Cell
}

// NewOverlay creates an all-unpainted overlay.
func NewOverlay(width, height int) *Overlay {
	return &Overlay{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

// Width returns the overlay width in cells.
func (o *Overlay) Width() int { return o.width }

// Height returns the overlay height in cells.
func (o *Overlay) Height() int { return o.height }

// In reports whether (x, y) is inside the overlay.
func (o *Overlay) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < o.width && y < o.height
}

// At returns the cell at (x, y), or Unpainted outside the overlay.
func (o *Overlay) At(x, y int) Cell {
	if !o.In(x, y) {
		return Unpainted
	}
	return o.cells[y*o.width+x]
}

func (o *Overlay) set(x, y int, c Cell) {
	o.cells[y*o.width+x] = c
}

// Clear marks every cell unpainted.
func (o *Overlay) Clear() {
	clear(o.cells)
}

// Clone returns an independent copy.
func (o *Overlay) Clone() *Overlay {
	return &Overlay{
		width:  o.width,
		height: o.height,
		cells:  append([]Cell(nil), o.cells...),
	}
}

// Counts returns, for each of k colors, the number of cells painted with it.
func (o *Overlay) Counts(k int) []int {
	return countCells(o.cells, k)
}

// Encoded returns the overlay in its stored form: rows of 0 or color+1.
func (o *Overlay) Encoded() [][]int {
	return encodeCells(o.cells, o.width, o.height)
}

func countCells(cells []Cell, k int) []int {
	counts := make([]int, k)
	for _, c := range cells {
		if col, ok := c.Color(); ok && col < k {
			counts[col]++
		}
	}
	return counts
}

func encodeCells(cells []Cell, w, h int) [][]int {
	rows := make([][]int, h)
	for y := range rows {
		row := make([]int, w)
		for x := range row {
			row[x] = cells[y*w+x].Encode()
		}
		rows[y] = row
	}
	return rows
}
