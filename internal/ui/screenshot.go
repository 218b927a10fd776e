package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"

	"r2dash/internal/frame"
	"r2dash/internal/system"
)

// Screenshots writes the last rendered frame to a file on request. It is
// called from the main loop only.
type Screenshots struct {
	// Dir holds screenshots requested without a path.
	Dir string
	Log *clog.Logger

	last *frame.Buffer
}

func (s *Screenshots) set(buf *frame.Buffer) { s.last = buf }

func (s *Screenshots) logger() *clog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return system.Logger
}

// Screenshot dumps the styled lines of the last frame to path under Dir, or
// to screenshot-<unix>.ans when path is empty. Paths that are absolute or
// leave Dir are refused.
func (s *Screenshots) Screenshot(path string) {
	if s.last == nil {
		s.logger().Warn("screenshot skipped, nothing rendered yet")
		return
	}
	if path == "" {
		path = fmt.Sprintf("screenshot-%d.ans", time.Now().Unix())
	}
	if !filepath.IsLocal(path) {
		s.logger().Warn("screenshot refused, path outside screenshot dir", "path", path)
		return
	}
	path = filepath.Join(s.Dir, path)
	if err := os.WriteFile(path, []byte(s.last.String()+"\n"), 0o644); err != nil {
		s.logger().Error("screenshot failed", "path", path, "err", err)
		return
	}
	s.logger().Info("screenshot saved", "path", path)
}
