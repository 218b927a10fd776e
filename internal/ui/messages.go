package ui

import (
	"time"

	"r2dash/internal/command"
)

// Bubble Tea messages

// periodic script tick
type tickMsg time.Time

// commands drained from the bus; empty when the wait timed out
type commandsMsg []command.Envelope

// script discovery and init finished
type loadedMsg struct{ err error }

// a script file changed on disk
type watchMsg struct{}

// state file written
type savedMsg struct {
	path string
	err  error
}
