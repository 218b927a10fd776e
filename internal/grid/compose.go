// Package grid lays the widget registry out as rows of fixed-size cells and
// draws it into a frame buffer.
package grid

import (
	"sort"

	"r2dash/internal/frame"
)

// TodoName is the registry-independent slot showing the todo list. It sorts
// after ordinary names.
const TodoName = "~todo"

// Slot is one cell of a row. Blank slots pad a short row.
type Slot struct {
	Name  string
	Rect  frame.Rect
	Blank bool
}

type Row struct {
	Y      int
	Height int
	Slots  []Slot
}

// Layout is the result of Compose. Rows below the viewport are kept; the
// renderer clips them.
type Layout struct {
	Rows []Row
}

// Lengths returns the number of named slots in each row.
func (l Layout) Lengths() []int {
	out := make([]int, len(l.Rows))
	for i, r := range l.Rows {
		for _, s := range r.Slots {
			if !s.Blank {
				out[i]++
			}
		}
	}
	return out
}

// Names returns the named slots in layout order.
func (l Layout) Names() []string {
	var out []string
	for _, r := range l.Rows {
		for _, s := range r.Slots {
			if !s.Blank {
				out = append(out, s.Name)
			}
		}
	}
	return out
}

// Compose packs names into rows. A name joins the current row while
// viewW/(len+1) still fits a full cell width; otherwise the row closes. Slots
// are min(viewW/len, cellW) wide and rows shorter than the viewport's
// capacity are padded with blank slots of the same width.
func Compose(names []string, viewW, viewH, cellW, cellH int) Layout {
	cellW, cellH = max(cellW, 1), max(cellH, 1)
	viewW = max(viewW, 0)
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var groups [][]string
	var cur []string
	for _, n := range sorted {
		if len(cur) == 0 || viewW/(len(cur)+1) >= cellW {
			cur = append(cur, n)
			continue
		}
		groups = append(groups, cur)
		cur = []string{n}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}

	capacity := max(1, viewW/cellW)
	var l Layout
	for i, g := range groups {
		width := min(viewW/len(g), cellW)
		row := Row{Y: i * cellH, Height: cellH}
		for j := 0; j < max(len(g), capacity); j++ {
			s := Slot{Rect: frame.Rect{X: j * width, Y: row.Y, W: width, H: cellH}}
			if j < len(g) {
				s.Name = g[j]
			} else {
				s.Blank = true
			}
			row.Slots = append(row.Slots, s)
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}
