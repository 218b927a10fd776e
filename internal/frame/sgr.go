package frame

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// pen tracks the attributes last written to the stream. Terminal attribute
// state is cumulative, so every transition is computed against the pen rather
// than against the cell previously occupying the position.
type pen struct {
	fg, bg Color
	mods   Modifier
}

func moveTo(sb *strings.Builder, x, y int) {
	sb.WriteString(ansi.CursorPosition(x+1, y+1))
}

// sgr writes each attribute as its own sequence.
func sgr(sb *strings.Builder, attrs ...ansi.Attr) {
	for _, a := range attrs {
		sb.WriteString(ansi.NewStyle(a).String())
	}
}

// modifiers emits the transitions from p.mods to to.
func (p *pen) modifiers(sb *strings.Builder, to Modifier) {
	from := p.mods
	removed := from &^ to
	if removed&Reversed != 0 {
		sgr(sb, ansi.NoReverseAttr)
	}
	// 22 clears bold and dim together; whichever is still wanted is re-added below.
	if removed&(Bold|Dim) != 0 {
		sgr(sb, ansi.NormalIntensityAttr)
		from &^= Bold | Dim
	}
	if removed&Italic != 0 {
		sgr(sb, ansi.NoItalicAttr)
	}
	if removed&Underlined != 0 {
		sgr(sb, ansi.NoUnderlineAttr)
	}
	if removed&CrossedOut != 0 {
		sgr(sb, ansi.NoStrikethroughAttr)
	}
	if removed&(SlowBlink|RapidBlink) != 0 {
		sgr(sb, ansi.NoBlinkAttr)
		from &^= SlowBlink | RapidBlink
	}
	if removed&Hidden != 0 {
		sgr(sb, ansi.NoConcealAttr)
	}

	added := to &^ from
	for _, on := range []struct {
		mod  Modifier
		attr ansi.Attr
	}{
		{Reversed, ansi.ReverseAttr},
		{Bold, ansi.BoldAttr},
		{Dim, ansi.FaintAttr},
		{Italic, ansi.ItalicAttr},
		{Underlined, ansi.UnderlineAttr},
		{SlowBlink, ansi.SlowBlinkAttr},
		{RapidBlink, ansi.RapidBlinkAttr},
		{Hidden, ansi.ConcealAttr},
		{CrossedOut, ansi.StrikethroughAttr},
	} {
		if added&on.mod != 0 {
			sgr(sb, on.attr)
		}
	}
	p.mods = to
}

// colors emits one combined SGR when either color changed.
func (p *pen) colors(sb *strings.Builder, fg, bg Color) {
	if fg == p.fg && bg == p.bg {
		return
	}
	sb.WriteString(ansi.Style{}.ForegroundColor(fg.ansi()).BackgroundColor(bg.ansi()).String())
	p.fg, p.bg = fg, bg
}

func (p *pen) draw(sb *strings.Builder, c Cell) {
	p.modifiers(sb, c.Mods)
	p.colors(sb, c.Fg, c.Bg)
	sb.WriteString(c.Symbol)
}

// resetAll restores default colors, underline color and attributes.
var resetAll = ansi.NewStyle(ansi.DefaultForegroundColorAttr).String() +
	ansi.NewStyle(ansi.DefaultBackgroundColorAttr).String() +
	ansi.NewStyle(ansi.DefaultUnderlineColorAttr).String() +
	ansi.NewStyle(ansi.ResetAttr).String()
