package script

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	clog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"r2dash/internal/command"
	"r2dash/internal/system"
)

const DefaultBackgroundPrefix = "bg_"

// Options tune a Host. Zero values pick defaults.
type Options struct {
	// BackgroundPrefix marks scripts that drive themselves.
	BackgroundPrefix string
	// MaxParallel bounds concurrent update calls per tick; 0 is unbounded.
	MaxParallel int
	Fetch       func(ctx context.Context, method, url string) (string, error)
	// Print receives sys.print output; nil routes it to the script logger.
	Print  func(name, msg string)
	Logger *clog.Logger
}

// ModuleInfo is a snapshot of one module's state.
type ModuleInfo struct {
	Name   string
	Kind   Kind
	Status Status
	Err    error
}

type module struct {
	name   string
	kind   Kind
	status Status
	err    error
	mod    Module
	busy   atomic.Bool
}

// Host owns the module set. LoadAll, Reload and Tick may be called from any
// goroutine.
type Host struct {
	rt     Runtime
	bus    *command.Bus
	loader Loader
	opts   Options
	log    *clog.Logger

	// loadMu serializes LoadAll so background bodies start at most once and
	// the last finished load is the last started one.
	loadMu sync.Mutex

	mu        sync.Mutex
	modules   map[string]*module
	bgStarted map[string]*module
	tick      uint64
	width     int
	height    int
}

func NewHost(rt Runtime, bus *command.Bus, loader Loader, opts Options) *Host {
	if opts.BackgroundPrefix == "" {
		opts.BackgroundPrefix = DefaultBackgroundPrefix
	}
	if opts.Fetch == nil {
		opts.Fetch = HTTPFetch
	}
	lg := opts.Logger
	if lg == nil {
		lg = system.Logger
	}
	return &Host{
		rt:        rt,
		bus:       bus,
		loader:    loader,
		opts:      opts,
		log:       lg,
		modules:   map[string]*module{},
		bgStarted: map[string]*module{},
	}
}

// KindOf classifies a script by name.
func (h *Host) KindOf(name string) Kind {
	if strings.HasPrefix(name, h.opts.BackgroundPrefix) {
		return Background
	}
	return Foreground
}

func (h *Host) capabilities(name string, kind Kind) Capabilities {
	printFn := func(msg string) { system.ScriptLogger(name).Info(msg) }
	if h.opts.Print != nil {
		printFn = func(msg string) { h.opts.Print(name, msg) }
	}
	return Capabilities{
		Name:  name,
		Send:  h.bus.Sender(name, kind == Background),
		Fetch: h.opts.Fetch,
		Print: printFn,
		Reject: func(err error) {
			h.log.Warn("dropped malformed command", "module", name, "err", err)
		},
	}
}

// safe runs fn and converts a panic into an error.
func safe(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// load compiles and initializes one source.
func (h *Host) load(ctx context.Context, src Source) *module {
	m := &module{name: src.Name, kind: h.KindOf(src.Name), status: Loading}
	fail := func(err error) *module {
		m.status, m.err = Failed, err
		h.log.Error("script failed to load", "module", m.name, "err", err)
		return m
	}

	err := safe(func() error {
		var err error
		m.mod, err = h.rt.Compile(src, h.capabilities(src.Name, m.kind))
		return err
	})
	if err != nil {
		return fail(err)
	}

	if m.kind == Background {
		m.status = Ready
		go h.runBackground(m)
		return m
	}

	err = safe(func() error {
		if err := m.mod.Run(ctx); err != nil {
			return err
		}
		for _, entry := range []string{"init", "update"} {
			if !m.mod.Has(entry) {
				return fmt.Errorf("%w: %s", ErrNoEntrypoint, entry)
			}
		}
		_, err := m.mod.Call(ctx, "init", m.name)
		return err
	})
	if err != nil {
		return fail(err)
	}
	m.status = Ready
	h.log.Debug("script loaded", "module", m.name)
	return m
}

// runBackground evaluates a background body once. It is never cancelled.
func (h *Host) runBackground(m *module) {
	err := safe(func() error { return m.mod.Run(context.Background()) })
	if err != nil {
		h.log.Error("background script stopped", "module", m.name, "err", err)
		return
	}
	h.log.Info("background script finished", "module", m.name)
}

// LoadAll replaces the module set with sources. A failing source is recorded
// and loading continues. Background scripts already started by an earlier
// load keep running and are not started again.
func (h *Host) LoadAll(ctx context.Context, sources []Source) {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	next := make(map[string]*module, len(sources))
	for _, src := range sources {
		if h.KindOf(src.Name) == Background {
			h.mu.Lock()
			prev, started := h.bgStarted[src.Name]
			h.mu.Unlock()
			if started {
				next[src.Name] = prev
				continue
			}
		}
		m := h.load(ctx, src)
		if m.kind == Background && m.status == Ready {
			h.mu.Lock()
			h.bgStarted[m.name] = m
			h.mu.Unlock()
		}
		next[src.Name] = m
	}
	h.mu.Lock()
	h.modules = next
	h.mu.Unlock()
}

// Reload discards every module and loads freshly discovered sources.
func (h *Host) Reload(ctx context.Context) error {
	sources, err := h.loader.Load()
	if err != nil {
		return fmt.Errorf("discover scripts: %w", err)
	}
	h.LoadAll(ctx, sources)
	return nil
}

// SetViewport records the size passed to update calls.
func (h *Host) SetViewport(width, height int) {
	h.mu.Lock()
	h.width, h.height = width, height
	h.mu.Unlock()
}

// Tick calls update on every ready foreground module. Calls run concurrently
// and failures are logged without affecting the module's status. A module
// whose previous update has not returned is skipped. The returned channel
// closes once every call started by this tick has returned.
func (h *Host) Tick(ctx context.Context, now time.Time) <-chan struct{} {
	h.mu.Lock()
	h.tick++
	tick, width, height := h.tick, h.width, h.height
	var due []*module
	for _, m := range h.modules {
		if m.kind == Foreground && m.status == Ready {
			due = append(due, m)
		}
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		if h.opts.MaxParallel > 0 {
			g.SetLimit(h.opts.MaxParallel)
		}
		for _, m := range due {
			if !m.busy.CompareAndSwap(false, true) {
				h.log.Debug("update still running, skipping tick", "module", m.name)
				continue
			}
			g.Go(func() error {
				defer m.busy.Store(false)
				// scripts may mutate ctx, so each call gets its own
				tc := map[string]any{
					"now":    now.UnixMilli(),
					"tick":   tick,
					"width":  width,
					"height": height,
				}
				h.update(ctx, m, tc)
				return nil
			})
		}
		_ = g.Wait()
	}()
	return done
}

func (h *Host) update(ctx context.Context, m *module, tc map[string]any) {
	var res any
	err := safe(func() error {
		var err error
		res, err = m.mod.Call(ctx, "update", tc)
		return err
	})
	h.mu.Lock()
	m.err = err
	h.mu.Unlock()
	if err != nil {
		h.log.Warn("update failed", "module", m.name, "err", err)
		return
	}
	cmds, err := command.FromValue(res)
	if err != nil {
		h.log.Warn("dropped malformed command", "module", m.name, "err", err)
	}
	send := h.bus.Sender(m.name, false)
	for _, c := range cmds {
		send(c)
	}
}

// Modules returns every known module ordered by name.
func (h *Host) Modules() []ModuleInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ModuleInfo, 0, len(h.modules))
	for _, m := range h.modules {
		out = append(out, ModuleInfo{Name: m.name, Kind: m.kind, Status: m.status, Err: m.err})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Failed returns the modules that failed to load.
func (h *Host) Failed() []ModuleInfo {
	var out []ModuleInfo
	for _, m := range h.Modules() {
		if m.Status == Failed {
			out = append(out, m)
		}
	}
	return out
}

// Check compiles and initializes sources without keeping them. Background
// bodies are compiled but not run.
func Check(ctx context.Context, rt Runtime, sources []Source, prefix string) []ModuleInfo {
	h := NewHost(rt, command.NewBus(), StaticLoader(sources), Options{
		BackgroundPrefix: prefix,
		Print:            func(string, string) {},
		Logger:           clog.New(io.Discard),
	})
	out := make([]ModuleInfo, 0, len(sources))
	for _, src := range sources {
		info := ModuleInfo{Name: src.Name, Kind: h.KindOf(src.Name), Status: Ready}
		var err error
		if info.Kind == Background {
			err = safe(func() error {
				_, err := rt.Compile(src, h.capabilities(src.Name, Background))
				return err
			})
		} else {
			err = h.load(ctx, src).err
		}
		if err != nil {
			info.Status, info.Err = Failed, err
		}
		out = append(out, info)
	}
	return out
}
