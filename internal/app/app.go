package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"r2dash/internal/command"
	"r2dash/internal/config"
	"r2dash/internal/mirror"
	"r2dash/internal/script"
	"r2dash/internal/store"
	"r2dash/internal/system"
	"r2dash/internal/ui"
)

// Start runs the dashboard until the user quits or a script sends Exit.
// Failing to bind the mirror endpoint is fatal; an unreadable state file is
// not.
func Start(ctx context.Context, s config.Settings) error {
	log := system.Logger
	if s.LogFile != "" {
		f, err := system.SetLogFile(s.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() {
			log.SetOutput(os.Stderr)
			_ = f.Close()
		}()
	}

	ln, err := mirror.Listen(s.Addr)
	if err != nil {
		return err
	}

	statePath := s.State
	if statePath == "" {
		if statePath, err = config.StatePath(); err != nil {
			_ = ln.Close()
			return err
		}
	}
	st, err := store.LoadState(statePath)
	if err != nil {
		log.Warn("state file unreadable, using defaults", "path", statePath, "err", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := command.NewBus()
	loader := script.DirLoader{Dir: s.Scripts}
	host := script.NewHost(script.NewGoja(), bus, loader, script.Options{
		BackgroundPrefix: s.BackgroundPrefix,
		MaxParallel:      s.MaxParallel,
	})

	hub := mirror.NewHub(s.MirrorQueue)
	srv := &mirror.Server{Hub: hub, Log: log}
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			log.Error("mirror server stopped", "err", err)
		}
	}()

	var watch <-chan struct{}
	if s.Watch {
		if watch, err = script.Watch(ctx, s.Scripts, "", script.DefaultDebounce); err != nil {
			log.Warn("script watching disabled", "dir", s.Scripts, "err", err)
			watch = nil
		}
	}

	shots := &ui.Screenshots{Dir: ".", Log: log}
	m := ui.New(ctx, ui.Deps{
		Host:      host,
		Bus:       bus,
		Store:     store.New(st, shots),
		Hub:       hub,
		Shots:     shots,
		StatePath: statePath,
		Tick:      s.Tick,
		Watch:     watch,
		Log:       log,
	})
	log.Info("dashboard starting", "addr", ln.Addr().String(), "scripts", s.Scripts, "state", statePath)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	log.Info("dashboard stopped")
	return nil
}
