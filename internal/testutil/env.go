package testutil

import (
    "os"
    "path/filepath"
    "testing"
)

// WithEnv sets env var to val for the rest of the test. An empty val unsets
// it. The previous value is restored on cleanup.
func WithEnv(t *testing.T, key, val string) {
    t.Helper()
    old, had := os.LookupEnv(key)
    if val == "" {
        _ = os.Unsetenv(key)
    } else {
        _ = os.Setenv(key, val)
    }
    t.Cleanup(func() {
        if had {
            _ = os.Setenv(key, old)
        } else {
            _ = os.Unsetenv(key)
        }
    })
}

// TempConfigHome points the user config and home directories at a fresh
// temporary directory and returns it.
func TempConfigHome(t *testing.T) string {
    t.Helper()
    dir := t.TempDir()
    WithEnv(t, "XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
    WithEnv(t, "HOME", dir)
    WithEnv(t, "AppData", filepath.Join(dir, "AppData"))
    return dir
}
