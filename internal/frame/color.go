package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorKind selects how a Color is encoded on the wire.
type ColorKind uint8

const (
	// ColorReset is the terminal's default color.
	ColorReset ColorKind = iota
	// ColorIndexed is one of the 256 palette entries.
	ColorIndexed
	// ColorRGB is a 24-bit true color.
	ColorRGB
)

// Color is a comparable terminal color. The zero value is the default color.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// Reset is the default terminal color.
var Reset = Color{}

// Indexed returns the palette color n.
func Indexed(n uint8) Color { return Color{Kind: ColorIndexed, Index: n} }

// RGB returns a true color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

var namedColors = map[string]uint8{
	"black":        0,
	"red":          1,
	"green":        2,
	"yellow":       3,
	"blue":         4,
	"magenta":      5,
	"cyan":         6,
	"gray":         7,
	"grey":         7,
	"darkgray":     8,
	"darkgrey":     8,
	"lightred":     9,
	"lightgreen":   10,
	"lightyellow":  11,
	"lightblue":    12,
	"lightmagenta": 13,
	"lightcyan":    14,
	"white":        15,
}

// ParseColor accepts a color name ("red", "lightblue"), a palette index
// ("208") or a hex triplet ("#ff8800", "#f80"). Empty, "reset" and "default"
// yield Reset.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "reset", "default":
		return Reset, nil
	}
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
	if n, ok := namedColors[key]; ok {
		return Indexed(n), nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Reset, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return RGB(r, g, b), nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return Reset, fmt.Errorf("palette index %d out of range", n)
		}
		return Indexed(uint8(n)), nil
	}
	return Reset, fmt.Errorf("unknown color %q", s)
}

// ansi converts c for the x/ansi style builder. Reset maps to nil, which the
// builder writes as the default color.
func (c Color) ansi() ansi.Color {
	switch c.Kind {
	case ColorIndexed:
		return ansi.IndexedColor(c.Index)
	case ColorRGB:
		return ansi.RGBColor{R: c.R, G: c.G, B: c.B}
	default:
		return nil
	}
}
