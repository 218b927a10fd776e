package frame

import (
	"fmt"
	"strings"
)

// Modifier is a set of text attributes.
type Modifier uint16

const (
	Bold Modifier = 1 << iota
	Dim
	Italic
	Underlined
	SlowBlink
	RapidBlink
	Reversed
	Hidden
	CrossedOut
)

var modifierNames = map[string]Modifier{
	"bold":        Bold,
	"dim":         Dim,
	"italic":      Italic,
	"underline":   Underlined,
	"underlined":  Underlined,
	"blink":       SlowBlink,
	"slow_blink":  SlowBlink,
	"rapid_blink": RapidBlink,
	"reverse":     Reversed,
	"reversed":    Reversed,
	"hidden":      Hidden,
	"crossed_out": CrossedOut,
	"strike":      CrossedOut,
}

// ParseModifiers folds attribute names into a Modifier set.
func ParseModifiers(names []string) (Modifier, error) {
	var m Modifier
	for _, n := range names {
		bit, ok := modifierNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown style %q", n)
		}
		m |= bit
	}
	return m, nil
}

// Style is the visual part of a cell.
type Style struct {
	Fg   Color
	Bg   Color
	Mods Modifier
}

// Cell is one terminal cell. Symbol holds one grapheme cluster; an empty
// Symbol marks the trailing half of a wide glyph drawn in the cell to its left.
type Cell struct {
	Symbol string
	Fg     Color
	Bg     Color
	Mods   Modifier
}

// Empty is a blank cell in the default style.
var Empty = Cell{Symbol: " "}

// Styled returns a cell drawing symbol with st.
func Styled(symbol string, st Style) Cell {
	return Cell{Symbol: symbol, Fg: st.Fg, Bg: st.Bg, Mods: st.Mods}
}

// Style returns the visual attributes of c.
func (c Cell) Style() Style { return Style{Fg: c.Fg, Bg: c.Bg, Mods: c.Mods} }

func (c Cell) continuation() bool { return c.Symbol == "" }
