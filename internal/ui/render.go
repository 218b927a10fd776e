package ui

import (
    "strings"

    "github.com/charmbracelet/lipgloss"
    xansi "github.com/charmbracelet/x/ansi"
)

// chip is one colored segment of the status bar.
type chip struct {
    text string
    bg   lipgloss.Color
}

// renderStatusBar draws a single-line segmented status bar. key is the
// highlighted leading chip; right-hand chips are kept before left-hand ones
// when the width runs out.
func renderStatusBar(width int, key string, left, right []chip) string {
    w := width
    if w <= 0 {
        w = 100
    }
    base := StatusBarBase()
    keyStyle := ChipKeyStyle().Inherit(base).MarginRight(1)

    render := func(cs []chip) []string {
        out := make([]string, 0, len(cs))
        for _, c := range cs {
            out = append(out, ChipStyle(c.bg).Render(c.text))
        }
        return out
    }
    leftItems := append([]string{keyStyle.Render(key)}, render(left)...)
    rightItems := render(right)

    join := func(parts []string) (string, int) {
        s := strings.Join(parts, "")
        return s, xansi.StringWidth(s)
    }
    leftStr, lw := join(leftItems)
    rightStr, rw := join(rightItems)

    for lw+rw > w && len(leftItems) > 1 {
        leftItems = leftItems[:len(leftItems)-1]
        leftStr, lw = join(leftItems)
    }
    for lw+rw > w && len(rightItems) > 0 {
        rightItems = rightItems[:len(rightItems)-1]
        rightStr, rw = join(rightItems)
    }
    if lw > w {
        leftStr = xansi.Truncate(leftStr, w, "…")
        lw = xansi.StringWidth(leftStr)
    }

    center := lipgloss.NewStyle().Inherit(base).Width(max(0, w-lw-rw)).Render("")
    return base.Width(w).MaxWidth(w).Render(leftStr + center + rightStr)
}
