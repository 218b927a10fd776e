package store

import (
	"sort"
	"strings"

	"r2dash/internal/command"
)

// Effect reports what applying commands requires of the caller.
type Effect uint8

const (
	// EffectChanged means visible state changed and the frame is stale.
	EffectChanged Effect = 1 << iota
	// EffectReload asks the caller to reload the script host.
	EffectReload
	// EffectExit asks the caller to stop the main loop.
	EffectExit
)

func (e Effect) Has(f Effect) bool { return e&f != 0 }

// SideChannel receives commands that leave the widget state untouched.
type SideChannel interface {
	Screenshot(path string)
}

// Store is the single-writer dashboard state. It is not safe for concurrent
// use; the main loop owns it.
type Store struct {
	widgets    map[string]Widget
	background map[string]bool
	todos      []TodoItem
	geom       Geometry
	exiting    bool
	imageSeq   uint64
	side       SideChannel
}

// New returns a store seeded with persisted state. side may be nil.
func New(st State, side SideChannel) *Store {
	todos := append([]TodoItem(nil), st.Todos...)
	SortTodos(todos)
	return &Store{
		widgets:    map[string]Widget{},
		background: map[string]bool{},
		todos:      todos,
		geom:       st.Geometry.Clamp(),
		side:       side,
	}
}

func (s *Store) put(e command.Envelope, name string, w Widget) {
	s.widgets[name] = w
	if e.Background {
		s.background[name] = true
	} else {
		delete(s.background, name)
	}
}

// Apply consumes one envelope.
func (s *Store) Apply(e command.Envelope) Effect {
	switch c := e.Command.(type) {
	case command.SetText:
		s.put(e, c.Name, Text{Text: c.Text, Align: c.Align})
	case command.SetColorText:
		s.put(e, c.Name, ColorText{Text: c.Text, Style: c.Style, Align: c.Align})
	case command.SetBigText:
		s.put(e, c.Name, BigText{Text: c.Text, Fg: c.Fg})
	case command.SetChart:
		s.put(e, c.Name, Chart{Data: c.Data, Fg: c.Fg, Max: c.Max})
	case command.SetImage:
		s.imageSeq++
		s.put(e, c.Name, Image{Image: c.Image, Version: s.imageSeq})
	case command.Clear:
		if _, ok := s.widgets[c.Name]; !ok {
			return 0
		}
		delete(s.widgets, c.Name)
		delete(s.background, c.Name)
	case command.TodoAdd:
		s.todos = append(s.todos, TodoItem{
			Text:     strings.TrimSpace(c.Text),
			Author:   c.Author,
			Deadline: c.Deadline,
		})
		SortTodos(s.todos)
	case command.TodoComplete:
		i := todoIndex(s.todos, c.Text)
		if i < 0 {
			return 0
		}
		s.todos[i].Done = true
		SortTodos(s.todos)
	case command.TodoDelete:
		i := todoIndex(s.todos, c.Text)
		if i < 0 {
			return 0
		}
		s.todos = append(s.todos[:i], s.todos[i+1:]...)
	case command.Reload:
		for name := range s.widgets {
			if !s.background[name] {
				delete(s.widgets, name)
			}
		}
		return EffectChanged | EffectReload
	case command.Exit:
		s.exiting = true
		return EffectExit
	case command.Screenshot:
		if s.side != nil {
			s.side.Screenshot(c.Path)
		}
		return 0
	default:
		return 0
	}
	return EffectChanged
}

// ApplyAll applies envelopes in order and folds their effects.
func (s *Store) ApplyAll(es []command.Envelope) Effect {
	var eff Effect
	for _, e := range es {
		eff |= s.Apply(e)
	}
	return eff
}

// Names returns the registry keys in lexical order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.widgets))
	for k := range s.widgets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Widget returns the state registered under name.
func (s *Store) Widget(name string) (Widget, bool) {
	w, ok := s.widgets[name]
	return w, ok
}

// Todos returns a copy of the ordered todo list.
func (s *Store) Todos() []TodoItem {
	return append([]TodoItem(nil), s.todos...)
}

func (s *Store) Geometry() Geometry { return s.geom }

// SetGeometry stores g after clamping it.
func (s *Store) SetGeometry(g Geometry) { s.geom = g.Clamp() }

// Exiting reports whether an Exit command has been applied.
func (s *Store) Exiting() bool { return s.exiting }

// State returns the persisted subset.
func (s *Store) State() State {
	return State{Geometry: s.geom, Todos: s.Todos()}
}
