package grid

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"r2dash/internal/command"
	"r2dash/internal/frame"
	"r2dash/internal/store"
)

// Source is the read side of the widget store.
type Source interface {
	Widget(name string) (store.Widget, bool)
	Todos() []store.TodoItem
}

var (
	borderStyle = frame.Style{Fg: frame.Indexed(8)}
	titleStyle  = frame.Style{Fg: frame.Indexed(14), Mods: frame.Bold}
	doneStyle   = frame.Style{Fg: frame.Indexed(8), Mods: frame.CrossedOut}
	lateStyle   = frame.Style{Fg: frame.Indexed(9)}
	border      = lipgloss.RoundedBorder()
	eighths     = []string{"", "▁", "▂", "▃", "▄", "▅", "▆", "▇"}
)

// Renderer draws a layout. It keeps per-image scaling state between frames
// and is used from the main loop only.
type Renderer struct {
	images imageCache
}

func NewRenderer() *Renderer { return &Renderer{} }

// Render draws every slot of l that intersects buf.
func (r *Renderer) Render(buf *frame.Buffer, l Layout, src Source, now time.Time) {
	live := map[string]bool{}
	for _, row := range l.Rows {
		for _, slot := range row.Slots {
			// partially visible slots draw unclipped; the buffer drops the rest
			if slot.Rect.Intersect(buf.Area()).Empty() {
				continue
			}
			area := slot.Rect
			title := slot.Name
			if slot.Name == TodoName {
				title = "todo"
			}
			drawBox(buf, area, title)
			if slot.Blank {
				continue
			}
			inner := area.Inner()
			if inner.Empty() {
				continue
			}
			if slot.Name == TodoName {
				drawTodos(buf, inner, src.Todos(), now)
				continue
			}
			w, ok := src.Widget(slot.Name)
			if !ok {
				continue
			}
			switch w := w.(type) {
			case store.Text:
				drawText(buf, inner, w.Text, frame.Style{}, w.Align)
			case store.ColorText:
				buf.Fill(inner, frame.Styled(" ", frame.Style{Bg: w.Style.Bg}))
				drawText(buf, inner, w.Text, w.Style, w.Align)
			case store.BigText:
				drawBig(buf, inner, w.Text, w.Fg)
			case store.Chart:
				drawChart(buf, inner, w)
			case store.Image:
				live[slot.Name] = true
				drawImage(buf, inner, r.images.get(slot.Name, w, inner.W, inner.H))
			case store.Blank:
			}
		}
	}
	r.images.prune(live)
}

func drawBox(buf *frame.Buffer, r frame.Rect, title string) {
	if r.W < 2 || r.H < 2 {
		return
	}
	x1, y1 := r.X+r.W-1, r.Y+r.H-1
	set := func(x, y int, s string) { buf.SetCell(x, y, frame.Styled(s, borderStyle)) }
	for x := r.X + 1; x < x1; x++ {
		set(x, r.Y, border.Top)
		set(x, y1, border.Bottom)
	}
	for y := r.Y + 1; y < y1; y++ {
		set(r.X, y, border.Left)
		set(x1, y, border.Right)
	}
	set(r.X, r.Y, border.TopLeft)
	set(x1, r.Y, border.TopRight)
	set(r.X, y1, border.BottomLeft)
	set(x1, y1, border.BottomRight)

	room := r.W - 4
	if title == "" || room <= 0 {
		return
	}
	t := runewidth.Truncate(" "+title+" ", room, "…")
	buf.SetString(r.X+2, r.Y, t, titleStyle, room)
}

func position(a command.Align) lipgloss.Position {
	switch a {
	case command.AlignCenter:
		return lipgloss.Center
	case command.AlignRight:
		return lipgloss.Right
	}
	return lipgloss.Left
}

// wrapLines strips escape sequences and wraps s to width columns.
func wrapLines(s string, width int) []string {
	s = xansi.Strip(strings.ReplaceAll(s, "\t", "    "))
	return strings.Split(xansi.Wrap(s, width, ""), "\n")
}

func drawText(buf *frame.Buffer, r frame.Rect, s string, st frame.Style, a command.Align) {
	for i, line := range wrapLines(s, r.W) {
		if i >= r.H {
			break
		}
		line = strings.TrimRight(line, " ")
		placed := line
		if a != command.AlignLeft {
			placed = xansi.Strip(lipgloss.PlaceHorizontal(r.W, position(a), line))
		}
		buf.SetString(r.X, r.Y+i, placed, st, r.W)
	}
}

func drawBig(buf *frame.Buffer, r frame.Rect, s string, fg frame.Color) {
	rows := bigLines(strings.TrimSpace(s))
	top := r.Y + max(0, (r.H-glyphH)/2)
	st := frame.Style{Fg: fg}
	if r.H < glyphH || xansi.StringWidth(rows[0]) > r.W {
		// fall back to plain text when the block font does not fit
		drawText(buf, r, s, st, command.AlignCenter)
		return
	}
	left := r.X + (r.W-xansi.StringWidth(rows[0]))/2
	for i, line := range rows {
		for j, ch := range line {
			if ch == '#' {
				buf.SetCell(left+j, top+i, frame.Styled("█", st))
			}
		}
	}
}

func drawChart(buf *frame.Buffer, r frame.Rect, c store.Chart) {
	data := c.Data
	if len(data) > r.W {
		data = data[len(data)-r.W:]
	}
	top := c.Max
	if top <= 0 {
		for _, v := range data {
			top = math.Max(top, v)
		}
	}
	if top <= 0 {
		return
	}
	st := frame.Style{Fg: c.Fg}
	for i, v := range data {
		if math.IsNaN(v) || v <= 0 {
			continue
		}
		units := int(math.Round(math.Min(v/top, 1) * float64(r.H*8)))
		x := r.X + i
		for y := r.Y + r.H - 1; units > 0 && y >= r.Y; y-- {
			sym := "█"
			if units < 8 {
				sym = eighths[units]
			}
			buf.SetCell(x, y, frame.Styled(sym, st))
			units -= 8
		}
	}
}

func drawTodos(buf *frame.Buffer, r frame.Rect, items []store.TodoItem, now time.Time) {
	for i, it := range items {
		if i >= r.H {
			break
		}
		box, st := "[ ] ", frame.Style{}
		switch {
		case it.Done:
			box, st = "[x] ", doneStyle
		case it.Deadline > 0 && it.Deadline < now.UnixMilli():
			st = lateStyle
		}
		line := box + it.Text
		if it.Author != "" {
			line += fmt.Sprintf(" (%s)", it.Author)
		}
		if it.Deadline > 0 {
			line += " " + time.UnixMilli(it.Deadline).Format("01-02 15:04")
		}
		buf.SetString(r.X, r.Y+i, runewidth.Truncate(line, r.W, "…"), st, r.W)
	}
}
