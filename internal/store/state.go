package store

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
)

const (
    DefaultCellWidth  = 30
    DefaultCellHeight = 8
    MinCellWidth      = 4
    MinCellHeight     = 3
)

// Geometry is the fixed size of one grid cell.
type Geometry struct {
    CellWidth  int `json:"cell_width"`
    CellHeight int `json:"cell_height"`
}

// DefaultGeometry returns the startup cell size.
func DefaultGeometry() Geometry {
    return Geometry{CellWidth: DefaultCellWidth, CellHeight: DefaultCellHeight}
}

// Clamp raises both sides to their minimum.
func (g Geometry) Clamp() Geometry {
    g.CellWidth = max(g.CellWidth, MinCellWidth)
    g.CellHeight = max(g.CellHeight, MinCellHeight)
    return g
}

// State is the persisted part of the store.
type State struct {
    Geometry Geometry   `json:"geometry"`
    Todos    []TodoItem `json:"todos"`
}

// DefaultState returns default geometry and an empty todo list.
func DefaultState() State {
    return State{Geometry: DefaultGeometry(), Todos: []TodoItem{}}
}

// LoadState reads the state document at path.
// Missing file yields defaults without error. A malformed file yields
// defaults and the decode error, which callers log and otherwise ignore.
func LoadState(path string) (State, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        if os.IsNotExist(err) {
            return DefaultState(), nil
        }
        return DefaultState(), err
    }
    st := DefaultState()
    if err := json.Unmarshal(b, &st); err != nil {
        return DefaultState(), fmt.Errorf("parse %s: %w", path, err)
    }
    // zero geometry means the key was absent
    if st.Geometry == (Geometry{}) {
        st.Geometry = DefaultGeometry()
    }
    st.Geometry = st.Geometry.Clamp()
    if st.Todos == nil {
        st.Todos = []TodoItem{}
    }
    SortTodos(st.Todos)
    return st, nil
}

// SaveState writes st to path as indented JSON, creating parent dirs.
func SaveState(path string, st State) error {
    if strings.TrimSpace(path) == "" {
        return errors.New("empty path")
    }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return err
    }
    if st.Todos == nil {
        st.Todos = []TodoItem{}
    }
    b, err := json.MarshalIndent(st, "", "  ")
    if err != nil {
        return err
    }
    tmp := path + ".tmp"
    if err := os.WriteFile(tmp, b, 0o644); err != nil {
        return err
    }
    return os.Rename(tmp, path)
}
