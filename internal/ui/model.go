package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	clog "github.com/charmbracelet/log"

	"r2dash/internal/command"
	"r2dash/internal/frame"
	"r2dash/internal/grid"
	"r2dash/internal/mirror"
	"r2dash/internal/script"
	"r2dash/internal/store"
	"r2dash/internal/system"
)

const (
	DefaultTick = time.Second
	// drainWait bounds how long the drain command blocks on an idle bus.
	drainWait = 100 * time.Millisecond
	// noticeFor is how long a status notice stays up.
	noticeFor = 4 * time.Second
)

// Deps are the collaborators the main loop drives.
type Deps struct {
	Host  *script.Host
	Bus   *command.Bus
	Store *store.Store
	Hub   *mirror.Hub
	// Shots receives the latest frame for screenshot commands; optional.
	Shots     *Screenshots
	StatePath string
	Tick      time.Duration
	// Watch fires when scripts change on disk; nil disables hot reload.
	Watch <-chan struct{}
	Log   *clog.Logger
}

// Model for the dashboard
type model struct {
	ctx      context.Context
	deps     Deps
	log      *clog.Logger
	renderer *grid.Renderer

	width  int
	height int
	frame  *frame.Buffer
	now    time.Time

	loading bool
	// reloadPending queues one reload requested while another is running.
	reloadPending bool
	spin          spinner.Model
	help          help.Model
	quitting      bool

	notice      string
	noticeUntil time.Time
}

// New returns the dashboard model. ctx bounds every script call the loop
// starts.
func New(ctx context.Context, deps Deps) tea.Model {
	return newModel(ctx, deps)
}

func newModel(ctx context.Context, deps Deps) model {
	if deps.Tick <= 0 {
		deps.Tick = DefaultTick
	}
	lg := deps.Log
	if lg == nil {
		lg = system.Logger
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	h := help.New()
	h.Styles = helpStyles()
	return model{
		ctx:      ctx,
		deps:     deps,
		log:      lg,
		renderer: grid.NewRenderer(),
		now:      time.Now(),
		loading:  true,
		spin:     sp,
		help:     h,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		loadCmd(m.ctx, m.deps.Host),
		drainCmd(m.ctx, m.deps.Bus),
		tickCmd(m.deps.Tick),
		watchCmd(m.deps.Watch),
	)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// drainCmd waits for queued commands. It yields no message once ctx is done,
// which ends the drain loop.
func drainCmd(ctx context.Context, bus *command.Bus) tea.Cmd {
	return func() tea.Msg {
		es := bus.Drain(ctx, drainWait)
		if ctx.Err() != nil {
			return nil
		}
		return commandsMsg(es)
	}
}

func loadCmd(ctx context.Context, host *script.Host) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: host.Reload(ctx)}
	}
}

func watchCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return watchMsg{}
	}
}

func saveCmd(path string, st store.State) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{path: path, err: store.SaveState(path, st)}
	}
}

// footerHeight is the number of rows below the grid.
func (m model) footerHeight() int {
	if m.help.ShowAll {
		return 1 + lipgloss.Height(m.help.View(keys))
	}
	return 1
}

// rebuild composes and renders the grid for the current viewport, then
// publishes the frame to mirror clients.
func (m *model) rebuild() {
	w, h := m.width, m.height-m.footerHeight()
	if w <= 0 || h <= 0 {
		return
	}
	st := m.deps.Store
	names := st.Names()
	if len(st.Todos()) > 0 {
		names = append(names, grid.TodoName)
	}
	g := st.Geometry()
	l := grid.Compose(names, w, h, g.CellWidth, g.CellHeight)
	buf := frame.New(w, h)
	m.renderer.Render(buf, l, st, m.now)
	m.frame = buf

	m.deps.Hub.Publish(buf)
	m.deps.Hub.SetIndex(widgetIndex(st))
	m.deps.Host.SetViewport(w, h)
	if m.deps.Shots != nil {
		m.deps.Shots.set(buf)
	}
}

func widgetIndex(st *store.Store) []mirror.WidgetInfo {
	names := st.Names()
	out := make([]mirror.WidgetInfo, 0, len(names))
	for _, n := range names {
		w, _ := st.Widget(n)
		out = append(out, mirror.WidgetInfo{Name: n, Kind: w.Kind()})
	}
	return out
}

func (m *model) setNotice(s string) {
	m.notice = s
	m.noticeUntil = time.Now().Add(noticeFor)
}
