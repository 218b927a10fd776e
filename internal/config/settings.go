package config

import (
    "fmt"
    "os"
    "strings"
    "time"

    "gopkg.in/yaml.v3"
)

// Settings are the run options. The file is optional; command-line flags
// override whatever it sets.
//
//  addr: 127.0.0.1:8788
//  scripts: ./scripts
//  tick: 1s
//  watch: true
type Settings struct {
    Addr             string        `yaml:"addr"`
    Scripts          string        `yaml:"scripts"`
    State            string        `yaml:"state"`
    LogFile          string        `yaml:"log"`
    Tick             time.Duration `yaml:"tick"`
    Watch            bool          `yaml:"watch"`
    BackgroundPrefix string        `yaml:"background_prefix"`
    MaxParallel      int           `yaml:"max_parallel"`
    MirrorQueue      int           `yaml:"mirror_queue"`
}

// Defaults returns the built-in settings. State stays empty and resolves to
// StatePath at startup.
func Defaults() Settings {
    return Settings{
        Addr:             "127.0.0.1:8788",
        Scripts:          "scripts",
        LogFile:          "run.log",
        Tick:             time.Second,
        BackgroundPrefix: "bg_",
        MirrorQueue:      64,
    }
}

// Load reads settings from path. A missing file yields Defaults and no error.
// Fields left empty in the file keep their defaults.
func Load(path string) (Settings, error) {
    def := Defaults()
    b, err := os.ReadFile(path)
    if err != nil {
        if os.IsNotExist(err) {
            return def, nil
        }
        return def, err
    }
    var s Settings
    if err := yaml.Unmarshal(b, &s); err != nil {
        return def, fmt.Errorf("parse %s: %w", path, err)
    }
    return s.normalize(), nil
}

// LoadDefault reads config.yaml from the config directory.
func LoadDefault() (Settings, error) {
    p, err := SettingsPath()
    if err != nil {
        return Defaults(), err
    }
    return Load(p)
}

func (s Settings) normalize() Settings {
    def := Defaults()
    s.Addr = strings.TrimSpace(s.Addr)
    if s.Addr == "" {
        s.Addr = def.Addr
    }
    if strings.TrimSpace(s.Scripts) == "" {
        s.Scripts = def.Scripts
    }
    if strings.TrimSpace(s.LogFile) == "" {
        s.LogFile = def.LogFile
    }
    if s.Tick <= 0 {
        s.Tick = def.Tick
    }
    if strings.TrimSpace(s.BackgroundPrefix) == "" {
        s.BackgroundPrefix = def.BackgroundPrefix
    }
    if s.MaxParallel < 0 {
        s.MaxParallel = 0
    }
    if s.MirrorQueue < 2 {
        s.MirrorQueue = def.MirrorQueue
    }
    return s
}
