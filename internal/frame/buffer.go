// Package frame holds the full-screen cell buffer the dashboard renders into
// and the differ that turns two buffers into a terminal patch.
package frame

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Rect is an area of the buffer in cells.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Inner returns r shrunk by one cell on every side.
func (r Rect) Inner() Rect {
	in := Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
	if in.W < 0 {
		in.W = 0
	}
	if in.H < 0 {
		in.H = 0
	}
	return in
}

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Buffer is a W×H grid of cells stored row-major.
type Buffer struct {
	w, h  int
	cells []Cell
}

// New returns a buffer of blank cells.
func New(w, h int) *Buffer {
	w, h = max(w, 0), max(h, 0)
	b := &Buffer{w: w, h: h, cells: make([]Cell, w*h)}
	for i := range b.cells {
		b.cells[i] = Empty
	}
	return b
}

func (b *Buffer) Width() int  { return b.w }
func (b *Buffer) Height() int { return b.h }

// Area returns the full buffer rectangle.
func (b *Buffer) Area() Rect { return Rect{W: b.w, H: b.h} }

func (b *Buffer) in(x, y int) bool { return x >= 0 && y >= 0 && x < b.w && y < b.h }

// Cell returns the cell at x,y or Empty when out of range.
func (b *Buffer) Cell(x, y int) Cell {
	if !b.in(x, y) {
		return Empty
	}
	return b.cells[y*b.w+x]
}

// SetCell writes c at x,y. Any wide glyph partially covered by the write is
// blanked so the buffer never holds a dangling half.
func (b *Buffer) SetCell(x, y int, c Cell) {
	if !b.in(x, y) {
		return
	}
	i := y*b.w + x
	old := b.cells[i]
	if old.continuation() {
		for hx := x - 1; hx >= 0; hx-- {
			head := b.cells[y*b.w+hx]
			b.cells[y*b.w+hx] = Styled(" ", head.Style())
			if !head.continuation() {
				break
			}
		}
	}
	for tx := x + 1; tx < b.w && b.cells[y*b.w+tx].continuation(); tx++ {
		b.cells[y*b.w+tx] = Styled(" ", b.cells[y*b.w+tx].Style())
	}
	b.cells[i] = c
}

// Fill paints every cell of r with c.
func (b *Buffer) Fill(r Rect, c Cell) {
	r = r.Intersect(b.Area())
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			b.SetCell(x, y, c)
		}
	}
}

// SetString draws s starting at x,y using st, writing at most maxWidth
// columns. Control characters are skipped; a glyph that would cross the limit
// is not drawn. It returns the number of columns written.
func (b *Buffer) SetString(x, y int, s string, st Style, maxWidth int) int {
	if y < 0 || y >= b.h {
		return 0
	}
	limit := min(x+maxWidth, b.w)
	col := x
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if width == 0 || strings.ContainsFunc(cluster, isControl) {
			continue
		}
		if col+width > limit {
			break
		}
		if col >= 0 {
			for i := 0; i < width; i++ {
				b.SetCell(col+i, y, Styled(" ", st))
			}
			row := b.cells[y*b.w:]
			row[col] = Styled(cluster, st)
			for i := 1; i < width; i++ {
				row[col+i] = Cell{Fg: st.Fg, Bg: st.Bg, Mods: st.Mods}
			}
		}
		col += width
	}
	return col - x
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{w: b.w, h: b.h, cells: make([]Cell, len(b.cells))}
	copy(c.cells, b.cells)
	return c
}

// Equal reports whether b and o have the same size and cells.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.w != o.w || b.h != o.h {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// PlainLines returns the symbols of each row without styling.
func (b *Buffer) PlainLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		for _, c := range b.cells[y*b.w : (y+1)*b.w] {
			sb.WriteString(c.Symbol)
		}
		out[y] = sb.String()
	}
	return out
}
