// Package script loads user scripts, runs them on a schedule and turns what
// they send into commands on the bus.
package script

import (
	"context"
	"errors"

	"r2dash/internal/command"
)

// ErrNoEntrypoint is returned when a module lacks a required function.
var ErrNoEntrypoint = errors.New("entrypoint not defined")

// Source is the text of one script.
type Source struct {
	Name string
	Code string
}

// Kind separates ticked scripts from self-driven ones.
type Kind int

const (
	Foreground Kind = iota
	Background
)

func (k Kind) String() string {
	if k == Background {
		return "background"
	}
	return "foreground"
}

type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "loading"
}

// Capabilities is what a compiled module may call back into.
type Capabilities struct {
	Name  string
	Send  func(command.Command)
	Fetch func(ctx context.Context, method, url string) (string, error)
	Print func(msg string)
	// Reject receives payloads passed to send that do not decode.
	Reject func(err error)
}

// Runtime compiles sources into modules.
type Runtime interface {
	Compile(src Source, caps Capabilities) (Module, error)
}

// Module is one compiled script. Calls into a module are serialized;
// different modules may run concurrently.
type Module interface {
	// Run evaluates the top-level body.
	Run(ctx context.Context) error
	// Has reports whether the named function is defined.
	Has(entry string) bool
	// Call invokes a named function and returns its exported result.
	Call(ctx context.Context, entry string, args ...any) (any, error)
}
