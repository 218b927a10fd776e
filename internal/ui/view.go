package ui

import (
	"fmt"
	"strings"
	"time"

	"r2dash/internal/script"
	appver "r2dash/internal/version"
)

func (m model) View() string {
	if m.quitting {
		return ""
	}
	b := &strings.Builder{}
	if m.frame != nil {
		b.WriteString(m.frame.String())
		b.WriteString("\n")
	} else if h := m.height - m.footerHeight(); h > 0 {
		b.WriteString(strings.Repeat("\n", h))
	}
	if m.help.ShowAll {
		b.WriteString(m.help.View(keys))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatusBarLine())
	return b.String()
}

// renderStatusBarLine shows load progress, script health and the clock.
func (m model) renderStatusBarLine() string {
	lead := "r2dash"
	if m.loading {
		lead = m.spin.View() + " loading"
	}

	mods := m.deps.Host.Modules()
	var failed []string
	for _, mi := range mods {
		if mi.Status == script.Failed {
			failed = append(failed, mi.Name)
		}
	}
	left := []chip{{text: fmt.Sprintf("%s %d", IconScripts(), len(mods)), bg: Vitesse.Blue}}
	if len(failed) > 0 {
		left = append(left, chip{text: IconFailed() + " " + strings.Join(failed, " "), bg: Vitesse.Red})
	}
	if n := openTodos(m); n > 0 {
		left = append(left, chip{text: fmt.Sprintf("%s %d", IconTodo(), n), bg: Vitesse.Yellow})
	}

	var right []chip
	if m.notice != "" && time.Now().Before(m.noticeUntil) {
		right = append(right, chip{text: m.notice, bg: Vitesse.Magenta})
	}
	if !m.help.ShowAll {
		right = append(right, chip{text: "? help", bg: Vitesse.Cyan})
	}
	right = append(right,
		chip{text: strings.TrimSpace(IconClock() + " " + m.now.Format("15:04:05")), bg: Vitesse.Primary},
		chip{text: IconVersion() + " " + appver.AppVersion, bg: Vitesse.Blue},
	)
	return renderStatusBar(m.width, lead, left, right)
}

func openTodos(m model) int {
	n := 0
	for _, t := range m.deps.Store.Todos() {
		if !t.Done {
			n++
		}
	}
	return n
}
