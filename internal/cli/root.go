package cli

import (
    "fmt"
    "os"
    "time"

    "github.com/spf13/cobra"

    "r2dash/internal/app"
    "r2dash/internal/config"
)

// flagSettings receives flag values; only flags the user set override the
// settings file.
var (
    flagSettings = config.Defaults()
    flagConfig   string
)

var rootCmd = &cobra.Command{
    Use:   "r2dash",
    Short: "r2dash – script-driven terminal dashboard",
    Long: "r2dash runs the scripts in a directory on a fixed tick and lays out the widgets\n" +
        "they publish as a grid. The same screen is mirrored to browsers over WebSocket.",
    RunE: func(cmd *cobra.Command, args []string) error {
        s, err := resolveSettings(cmd)
        if err != nil {
            return err
        }
        return app.Start(cmd.Context(), s)
    },
    SilenceUsage:  true,
    SilenceErrors: true,
}

func init() {
    d := config.Defaults()
    pf := rootCmd.PersistentFlags()
    pf.StringVar(&flagConfig, "config", "", "settings file (default <config dir>/config.yaml)")
    pf.StringVar(&flagSettings.Scripts, "scripts", d.Scripts, "scripts directory")
    pf.StringVar(&flagSettings.BackgroundPrefix, "background-prefix", d.BackgroundPrefix, "name prefix of background scripts")

    f := rootCmd.Flags()
    f.StringVar(&flagSettings.Addr, "addr", d.Addr, "mirror listen address")
    f.StringVar(&flagSettings.State, "state", "", "state file (default <config dir>/state.json)")
    f.StringVar(&flagSettings.LogFile, "log", d.LogFile, "log file")
    f.DurationVar(&flagSettings.Tick, "tick", d.Tick, "script update interval")
    f.BoolVar(&flagSettings.Watch, "watch", d.Watch, "reload scripts when files change")
    f.IntVar(&flagSettings.MaxParallel, "max-parallel", d.MaxParallel, "concurrent updates per tick (0 = unbounded)")
    f.IntVar(&flagSettings.MirrorQueue, "mirror-queue", d.MirrorQueue, "messages buffered per mirror client")
}

// resolveSettings loads the settings file and applies the flags that were
// set explicitly.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
    var (
        s   config.Settings
        err error
    )
    if flagConfig != "" {
        s, err = config.Load(flagConfig)
    } else {
        s, err = config.LoadDefault()
    }
    if err != nil {
        return s, err
    }
    set := func(name string, apply func()) {
        if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
            apply()
        }
    }
    set("addr", func() { s.Addr = flagSettings.Addr })
    set("scripts", func() { s.Scripts = flagSettings.Scripts })
    set("state", func() { s.State = flagSettings.State })
    set("log", func() { s.LogFile = flagSettings.LogFile })
    set("tick", func() { s.Tick = flagSettings.Tick })
    set("watch", func() { s.Watch = flagSettings.Watch })
    set("background-prefix", func() { s.BackgroundPrefix = flagSettings.BackgroundPrefix })
    set("max-parallel", func() { s.MaxParallel = flagSettings.MaxParallel })
    set("mirror-queue", func() { s.MirrorQueue = flagSettings.MirrorQueue })
    if s.Tick < 10*time.Millisecond {
        return s, fmt.Errorf("tick %s is too short", s.Tick)
    }
    return s, nil
}

// Execute runs the CLI.
func Execute() {
    if err := rootCmd.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}
