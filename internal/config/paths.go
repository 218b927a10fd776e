package config

import (
    "errors"
    "os"
    "path/filepath"
    "strings"
)

const appName = "r2dash"

// Dir returns the r2dash config directory under the user config base.
// On Linux, this typically resolves to $XDG_CONFIG_HOME/r2dash; on macOS
// to ~/Library/Application Support/r2dash; and on Windows to %AppData%/r2dash.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
    base, err := os.UserConfigDir()
    if err != nil || strings.TrimSpace(base) == "" {
        if home, herr := os.UserHomeDir(); herr == nil {
            base = home
        } else {
            return "", errors.New("cannot determine config directory")
        }
    }
    return filepath.Join(base, appName), nil
}

// StatePath returns <Dir>/state.json, where geometry and todos persist.
func StatePath() (string, error) {
    dir, err := Dir()
    if err != nil {
        return "", err
    }
    return filepath.Join(dir, "state.json"), nil
}

// SettingsPath returns <Dir>/config.yaml.
func SettingsPath() (string, error) {
    dir, err := Dir()
    if err != nil {
        return "", err
    }
    return filepath.Join(dir, "config.yaml"), nil
}
