package script

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader discovers script sources.
type Loader interface {
	Load() ([]Source, error)
}

// DirLoader reads every file with extension Ext from Dir, ordered by name.
// The source name is the file stem. A missing Dir is created.
type DirLoader struct {
	Dir string
	Ext string
}

func (l DirLoader) ext() string {
	if l.Ext == "" {
		return ".js"
	}
	return l.Ext
}

func (l DirLoader) Load() ([]Source, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var out []Source
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), l.ext()) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(l.Dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Source{Name: strings.TrimSuffix(e.Name(), l.ext()), Code: string(b)})
	}
	return out, nil
}

// StaticLoader serves a fixed list of sources.
type StaticLoader []Source

func (s StaticLoader) Load() ([]Source, error) {
	return append([]Source(nil), s...), nil
}
