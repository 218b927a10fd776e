package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ErrSizeMismatch is returned by DiffChecked for buffers of different sizes.
var ErrSizeMismatch = errors.New("frame: buffer size mismatch")

// Diff returns the escape sequence that turns a terminal showing prev into one
// showing next. Only changed cells are written; cursor moves are skipped when
// the write continues the previous one on the same row. A non-empty patch
// always ends with a full attribute reset, so patches can be concatenated.
// Identical buffers yield an empty patch. When the sizes differ, prev is
// treated as a blank buffer of next's size.
func Diff(prev, next *Buffer) []byte {
	if prev == nil || prev.w != next.w || prev.h != next.h {
		prev = New(next.w, next.h)
	}
	var sb strings.Builder
	var p pen
	lastX, lastY := -2, -1
	for y := 0; y < next.h; y++ {
		for x := 0; x < next.w; x++ {
			i := y*next.w + x
			c := next.cells[i]
			if c == prev.cells[i] || c.continuation() {
				continue
			}
			if y != lastY || x != lastX+1 {
				moveTo(&sb, x, y)
			}
			p.draw(&sb, c)
			lastX, lastY = x, y
		}
	}
	if sb.Len() == 0 {
		return nil
	}
	sb.WriteString(resetAll)
	return []byte(sb.String())
}

// DiffChecked is Diff for callers that require equal dimensions.
func DiffChecked(prev, next *Buffer) ([]byte, error) {
	if prev.w != next.w || prev.h != next.h {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, prev.w, prev.h, next.w, next.h)
	}
	return Diff(prev, next), nil
}

// FullDump returns the patch drawing b onto a blank terminal.
func FullDump(b *Buffer) []byte { return Diff(New(b.w, b.h), b) }

// Lines serializes each row with inline SGR sequences, for renderers that
// paint line by line. Every row starts from default attributes.
func (b *Buffer) Lines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		var p pen
		for _, c := range b.cells[y*b.w : (y+1)*b.w] {
			if c.continuation() {
				continue
			}
			p.draw(&sb, c)
		}
		if p != (pen{}) {
			sb.WriteString(ansi.NewStyle(ansi.ResetAttr).String())
		}
		out[y] = sb.String()
	}
	return out
}

// String joins Lines with newlines.
func (b *Buffer) String() string { return strings.Join(b.Lines(), "\n") }
