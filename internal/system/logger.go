package system

import (
    "os"
    "path/filepath"

    clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger.
// It prints to stderr with timestamps until SetLogFile redirects it.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
    ReportTimestamp: true,
})

// SetLogFile appends all further log output to path. The dashboard owns the
// terminal while it runs, so nothing may be written to stderr.
func SetLogFile(path string) (*os.File, error) {
    if dir := filepath.Dir(path); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return nil, err
        }
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
    if err != nil {
        return nil, err
    }
    Logger.SetOutput(f)
    return f, nil
}

// ScriptLogger is the sink for sys.print output of one script.
func ScriptLogger(name string) *clog.Logger {
    return Logger.WithPrefix(name)
}
