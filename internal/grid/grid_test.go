package grid

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2dash/internal/command"
	"r2dash/internal/frame"
	"r2dash/internal/store"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%02d", i)
	}
	return out
}

func TestComposePacksFiveAcross(t *testing.T) {
	in := names(12)
	rand.New(rand.NewSource(1)).Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })

	l := Compose(in, 100, 40, 20, 8)
	assert.Equal(t, []int{5, 5, 2}, l.Lengths())
	assert.Equal(t, names(12), l.Names())

	last := l.Rows[2]
	require.Len(t, last.Slots, 5)
	for i, s := range last.Slots {
		assert.Equal(t, i >= 2, s.Blank, "slot %d", i)
		assert.Equal(t, frame.Rect{X: i * 20, Y: 16, W: 20, H: 8}, s.Rect)
	}
}

func TestComposeDoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	Compose(in, 10, 10, 5, 5)
	assert.Equal(t, []string{"b", "a"}, in)
}

func TestComposeCellWiderThanViewport(t *testing.T) {
	l := Compose([]string{"a", "b", "c"}, 10, 10, 50, 4)
	assert.Equal(t, []int{1, 1, 1}, l.Lengths())
	for i, r := range l.Rows {
		require.Len(t, r.Slots, 1)
		assert.Equal(t, frame.Rect{Y: i * 4, W: 10, H: 4}, r.Slots[0].Rect)
	}
}

func TestComposeClampsCellSize(t *testing.T) {
	l := Compose([]string{"a", "b"}, 3, 3, 0, -1)
	assert.Equal(t, []int{2}, l.Lengths())
	assert.Equal(t, 1, l.Rows[0].Height)
	assert.Len(t, l.Rows[0].Slots, 3)
}

func TestComposeSlotsNeverStretch(t *testing.T) {
	l := Compose([]string{"a", "b", "c"}, 95, 10, 30, 5)
	require.Equal(t, []int{3}, l.Lengths())
	for _, s := range l.Rows[0].Slots {
		assert.Equal(t, 30, s.Rect.W)
	}
}

func TestComposeEmpty(t *testing.T) {
	assert.Empty(t, Compose(nil, 80, 24, 20, 5).Rows)
}

type fakeSource struct {
	widgets map[string]store.Widget
	todos   []store.TodoItem
}

func (f fakeSource) Widget(n string) (store.Widget, bool) {
	w, ok := f.widgets[n]
	return w, ok
}

func (f fakeSource) Todos() []store.TodoItem { return f.todos }

func TestRenderTextWidget(t *testing.T) {
	src := fakeSource{widgets: map[string]store.Widget{"a": store.Text{Text: "hello"}}}
	buf := frame.New(20, 5)
	NewRenderer().Render(buf, Compose([]string{"a"}, 20, 5, 20, 5), src, time.Now())

	lines := buf.PlainLines()
	assert.Equal(t, "╭─ a ──────────────╮", lines[0])
	assert.Equal(t, "│hello             │", lines[1])
	assert.Equal(t, "╰──────────────────╯", lines[4])
}

func TestRenderAlignAndWrap(t *testing.T) {
	src := fakeSource{widgets: map[string]store.Widget{
		"a": store.ColorText{Text: "one two three", Align: command.AlignRight, Style: frame.Style{Fg: frame.Indexed(2)}},
	}}
	buf := frame.New(10, 5)
	NewRenderer().Render(buf, Compose([]string{"a"}, 10, 5, 10, 5), src, time.Now())

	lines := buf.PlainLines()
	assert.Equal(t, "│ one two│", lines[1])
	assert.Equal(t, "│   three│", lines[2])
	assert.Equal(t, frame.Indexed(2), buf.Cell(8, 2).Fg)
}

func TestRenderBlankPadding(t *testing.T) {
	buf := frame.New(20, 3)
	NewRenderer().Render(buf, Compose([]string{"a"}, 20, 3, 10, 3), fakeSource{}, time.Now())
	lines := buf.PlainLines()
	assert.Equal(t, "╭─ a ────╮╭────────╮", lines[0])
	assert.Equal(t, "│        ││        │", lines[1])
}

func TestRenderBigText(t *testing.T) {
	src := fakeSource{widgets: map[string]store.Widget{"b": store.BigText{Text: "1", Fg: frame.Indexed(3)}}}
	buf := frame.New(9, 7)
	NewRenderer().Render(buf, Compose([]string{"b"}, 9, 7, 9, 7), src, time.Now())

	lines := buf.PlainLines()
	assert.Equal(t, "│   █   │", lines[1])
	assert.Equal(t, "│  ██   │", lines[2])
	assert.Equal(t, "│  ███  │", lines[5])
	assert.Equal(t, frame.Indexed(3), buf.Cell(4, 1).Fg)
}

func TestRenderChartEighths(t *testing.T) {
	src := fakeSource{widgets: map[string]store.Widget{"c": store.Chart{Data: []float64{1, 4, 8}, Max: 8}}}
	buf := frame.New(5, 4)
	NewRenderer().Render(buf, Compose([]string{"c"}, 5, 4, 5, 4), src, time.Now())

	assert.Equal(t, "▂", buf.Cell(1, 2).Symbol)
	assert.Equal(t, " ", buf.Cell(1, 1).Symbol)
	assert.Equal(t, "█", buf.Cell(2, 2).Symbol)
	assert.Equal(t, " ", buf.Cell(2, 1).Symbol)
	assert.Equal(t, "█", buf.Cell(3, 1).Symbol)
}

func TestRenderImageHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	src := fakeSource{widgets: map[string]store.Widget{"p": store.Image{Image: img, Version: 1}}}

	r := NewRenderer()
	buf := frame.New(3, 3)
	r.Render(buf, Compose([]string{"p"}, 3, 3, 3, 3), src, time.Now())

	c := buf.Cell(1, 1)
	assert.Equal(t, "▀", c.Symbol)
	assert.Equal(t, frame.RGB(255, 0, 0), c.Fg)
	assert.Equal(t, frame.RGB(0, 0, 255), c.Bg)
	assert.Len(t, r.images.entries, 1)

	r.Render(frame.New(3, 3), Layout{}, src, time.Now())
	assert.Empty(t, r.images.entries)
}

func TestRenderTodos(t *testing.T) {
	now := time.UnixMilli(10_000)
	src := fakeSource{todos: []store.TodoItem{
		{Text: "late", Deadline: 5_000},
		{Text: "open"},
		{Text: "done", Done: true},
	}}
	buf := frame.New(30, 5)
	NewRenderer().Render(buf, Compose([]string{TodoName}, 30, 5, 30, 5), src, now)

	lines := buf.PlainLines()
	assert.True(t, strings.HasPrefix(lines[0], "╭─ todo "))
	assert.True(t, strings.HasPrefix(lines[1], "│[ ] late "))
	assert.True(t, strings.HasPrefix(lines[2], "│[ ] open "))
	assert.True(t, strings.HasPrefix(lines[3], "│[x] done "))
	assert.Equal(t, lateStyle.Fg, buf.Cell(1, 1).Fg)
	assert.Equal(t, doneStyle.Mods, buf.Cell(1, 3).Mods)
}

func TestRenderClipsRowsBelowViewport(t *testing.T) {
	buf := frame.New(10, 4)
	l := Compose([]string{"a", "b"}, 10, 4, 10, 3)
	require.Len(t, l.Rows, 2)
	NewRenderer().Render(buf, l, fakeSource{}, time.Now())
	assert.Equal(t, "╭─ b ────╮", buf.PlainLines()[3])
}
