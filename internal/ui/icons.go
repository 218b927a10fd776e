package ui

import "os"

// nfEnabled reports whether Nerd Font icons should be rendered.
// Default to enabled; NERDFONT=0 falls back to plain text.
func nfEnabled() bool {
	return os.Getenv("NERDFONT") != "0"
}

func nf(icon, fallback string) string {
	if nfEnabled() {
		return icon
	}
	return fallback
}

// Status bar icons
func IconScripts() string { return nf("", "js") }
func IconFailed() string  { return nf("", "!") }
func IconClock() string   { return nf("", "") }
func IconVersion() string { return nf("", "v") }
func IconTodo() string    { return nf("", "todo") }
