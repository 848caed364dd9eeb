package engine

import (
	"image"
	"slices"
)

// column is one column of the cell grid.
// The last column of a grid is always unbounded: it extends to infinity to
// the right and its width field is unused. Every other column is bounded.
type column struct {
	width     int
	unbounded bool
}

// cellGrid partitions the working rectangle of one candidate sheet into
// cells. A cell is the intersection of a row and a column, so the rows and
// columns index tables alone guarantee the cells never overlap and leave no
// gaps. Cells are only ever split, never merged.
type cellGrid struct {
	rows     []int    // row heights, top to bottom; they always sum to the sheet height
	cols     []column // left to right; cols[len(cols)-1] is unbounded
	occupied [][]bool // occupied[row][col]
}

// newCellGrid returns a grid holding a single free cell of unbounded width.
func newCellGrid(height int) *cellGrid {
	return &cellGrid{
		rows:     []int{height},
		cols:     []column{{unbounded: true}},
		occupied: [][]bool{{false}},
	}
}

// span is the block of cells a frame would occupy, plus how much of the
// last row and column it actually needs.
type span struct {
	row, col       int // top-left cell
	endRow, endCol int // bottom-right cell, inclusive
	keepH          int // height of endRow covered by the frame
	keepW          int // width of endCol covered by the frame
}

// fit checks whether a w x h frame can have its top-left corner at the cell
// (row, col). It returns the covered span, or false when the cell is
// occupied, the rows below run out before h is covered, or another frame
// already claims part of the span.
func (g *cellGrid) fit(row, col, w, h int) (span, bool) {
	if g.occupied[row][col] {
		return span{}, false
	}
	s := span{row: row, col: col, endRow: row, endCol: col}

	covered := g.rows[row]
	for covered < h {
		s.endRow++
		if s.endRow >= len(g.rows) {
			return span{}, false
		}
		covered += g.rows[s.endRow]
	}
	s.keepH = g.rows[s.endRow] - (covered - h)

	covered = 0
	for {
		c := g.cols[s.endCol]
		if c.unbounded {
			s.keepW = w - covered
			break
		}
		covered += c.width
		if covered >= w {
			s.keepW = c.width - (covered - w)
			break
		}
		s.endCol++
	}

	for r := s.row; r <= s.endRow; r++ {
		for c := s.col; c <= s.endCol; c++ {
			if g.occupied[r][c] {
				return span{}, false
			}
		}
	}
	return s, true
}

// splitRow cuts row r so that it keeps height keep; the leftover becomes a
// new row directly below with the same occupancy.
func (g *cellGrid) splitRow(r, keep int) {
	leftover := g.rows[r] - keep
	g.rows[r] = keep
	g.rows = slices.Insert(g.rows, r+1, leftover)
	g.occupied = slices.Insert(g.occupied, r+1, slices.Clone(g.occupied[r]))
}

// splitCol cuts column c so that it keeps width keep. Splitting the
// unbounded column turns it into a bounded column and appends a fresh
// unbounded one; otherwise the positive leftover becomes a new column
// directly to the right. The new column copies the occupancy of c.
func (g *cellGrid) splitCol(c, keep int) {
	var next column
	if g.cols[c].unbounded {
		next = column{unbounded: true}
	} else {
		next = column{width: g.cols[c].width - keep}
	}
	g.cols[c] = column{width: keep}
	g.cols = slices.Insert(g.cols, c+1, next)
	for r := range g.occupied {
		g.occupied[r] = slices.Insert(g.occupied[r], c+1, g.occupied[r][c])
	}
}

// claim subdivides the grid along the span's bottom and right edges and
// marks every cell inside the span occupied.
func (g *cellGrid) claim(s span) {
	if s.keepH < g.rows[s.endRow] {
		g.splitRow(s.endRow, s.keepH)
	}
	if g.cols[s.endCol].unbounded || s.keepW < g.cols[s.endCol].width {
		g.splitCol(s.endCol, s.keepW)
	}
	for r := s.row; r <= s.endRow; r++ {
		for c := s.col; c <= s.endCol; c++ {
			g.occupied[r][c] = true
		}
	}
}

// origin returns the sheet coordinates of the top-left corner of cell (row, col).
func (g *cellGrid) origin(row, col int) image.Point {
	var p image.Point
	for r := 0; r < row; r++ {
		p.Y += g.rows[r]
	}
	for c := 0; c < col; c++ {
		p.X += g.cols[c].width
	}
	return p
}

// insert places a w x h frame in the upper-leftmost cell that accepts it,
// scanning columns left to right and, within a column, rows top to bottom.
func (g *cellGrid) insert(w, h int) (image.Point, bool) {
	rows, cols := len(g.rows), len(g.cols)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			s, ok := g.fit(row, col, w, h)
			if !ok {
				continue
			}
			g.claim(s)
			return g.origin(row, col), true
		}
	}
	return image.Point{}, false
}

// height returns the total height of the grid.
func (g *cellGrid) height() int {
	total := 0
	for _, h := range g.rows {
		total += h
	}
	return total
}
