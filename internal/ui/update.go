package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"r2dash/internal/command"
	"r2dash/internal/store"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.rebuild()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		m.now = time.Time(msg)
		// updates report back through the bus; the loop does not wait
		m.deps.Host.Tick(m.ctx, m.now)
		m.rebuild()
		return m, tickCmd(m.deps.Tick)
	case commandsMsg:
		var cmd tea.Cmd
		m, cmd = m.apply(msg)
		if m.quitting {
			return m, cmd
		}
		return m, tea.Batch(cmd, drainCmd(m.ctx, m.deps.Bus))
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Error("script reload failed", "err", msg.err)
			m.setNotice("reload failed")
		}
		for _, f := range m.deps.Host.Failed() {
			m.log.Warn("script failed", "module", f.Name, "err", f.Err)
		}
		m.rebuild()
		m.deps.Hub.Resync()
		if m.reloadPending {
			m.reloadPending = false
			return m, m.startReload()
		}
		return m, nil
	case watchMsg:
		m.log.Info("scripts changed on disk, reloading")
		var cmd tea.Cmd
		m, cmd = m.apply([]command.Envelope{{Origin: "watch", Command: command.Reload{}}})
		return m, tea.Batch(cmd, watchCmd(m.deps.Watch))
	case savedMsg:
		if msg.err != nil {
			m.log.Error("save state failed", "path", msg.path, "err", msg.err)
			m.setNotice("save failed")
		} else {
			m.log.Info("state saved", "path", msg.path)
			m.setNotice("saved")
		}
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Reload):
		return m.apply([]command.Envelope{{Origin: "key", Command: command.Reload{}}})
	case key.Matches(msg, keys.Save):
		return m, saveCmd(m.deps.StatePath, m.deps.Store.State())
	case key.Matches(msg, keys.Wider):
		m.resizeCells(2, 0)
	case key.Matches(msg, keys.Narrow):
		m.resizeCells(-2, 0)
	case key.Matches(msg, keys.Taller):
		m.resizeCells(0, 1)
	case key.Matches(msg, keys.Shorter):
		m.resizeCells(0, -1)
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.rebuild()
	}
	return m, nil
}

func (m *model) resizeCells(dw, dh int) {
	g := m.deps.Store.Geometry()
	g.CellWidth += dw
	g.CellHeight += dh
	m.deps.Store.SetGeometry(g)
	g = m.deps.Store.Geometry()
	m.setNotice(fmt.Sprintf("cell %dx%d", g.CellWidth, g.CellHeight))
	m.rebuild()
}

// apply hands drained commands to the store and acts on the effects.
func (m model) apply(es []command.Envelope) (model, tea.Cmd) {
	if len(es) == 0 {
		return m, nil
	}
	eff := m.deps.Store.ApplyAll(es)
	if eff.Has(store.EffectExit) {
		return m.quit()
	}
	var cmd tea.Cmd
	if eff.Has(store.EffectReload) {
		if m.loading {
			m.reloadPending = true
		} else {
			cmd = m.startReload()
		}
	}
	if eff.Has(store.EffectChanged) {
		m.rebuild()
	}
	return m, cmd
}

func (m *model) startReload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spin.Tick, loadCmd(m.ctx, m.deps.Host))
}

// quit saves state and stops the program. In-flight script calls are
// abandoned.
func (m model) quit() (model, tea.Cmd) {
	m.quitting = true
	if err := store.SaveState(m.deps.StatePath, m.deps.Store.State()); err != nil {
		m.log.Error("save state failed", "path", m.deps.StatePath, "err", err)
	}
	return m, tea.Quit
}
