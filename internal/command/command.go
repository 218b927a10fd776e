// Package command defines the messages scripts send to the dashboard and the
// bus that carries them to the main loop.
package command

import (
	"image"

	"r2dash/internal/frame"
)

// Command is one instruction for the widget store. The set of variants is
// closed; consumers switch over the concrete types.
type Command interface {
	isCommand()
	// Kind returns the wire name of the variant.
	Kind() string
}

// Align is the horizontal alignment of text widgets.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

type SetText struct {
	Name  string
	Text  string
	Align Align
}

type SetColorText struct {
	Name  string
	Text  string
	Style frame.Style
	Align Align
}

type SetBigText struct {
	Name string
	Text string
	Fg   frame.Color
}

// SetChart shows Data as vertical bars. Max of zero scales to the largest
// sample.
type SetChart struct {
	Name string
	Data []float64
	Fg   frame.Color
	Max  float64
}

type SetImage struct {
	Name  string
	Image image.Image
}

type Clear struct{ Name string }

// TodoAdd appends an item. Deadline is in epoch milliseconds, zero for none.
type TodoAdd struct {
	Text     string
	Author   string
	Deadline int64
}

type TodoComplete struct{ Text string }

type TodoDelete struct{ Text string }

type Reload struct{}

type Exit struct{}

// Screenshot asks for the current frame to be written out. An empty Path
// picks a timestamped file name.
type Screenshot struct{ Path string }

func (SetText) isCommand()      {}
func (SetColorText) isCommand() {}
func (SetBigText) isCommand()   {}
func (SetChart) isCommand()     {}
func (SetImage) isCommand()     {}
func (Clear) isCommand()        {}
func (TodoAdd) isCommand()      {}
func (TodoComplete) isCommand() {}
func (TodoDelete) isCommand()   {}
func (Reload) isCommand()       {}
func (Exit) isCommand()         {}
func (Screenshot) isCommand()   {}

func (SetText) Kind() string      { return "SetText" }
func (SetColorText) Kind() string { return "SetColorText" }
func (SetBigText) Kind() string   { return "SetBigText" }
func (SetChart) Kind() string     { return "SetChart" }
func (SetImage) Kind() string     { return "SetImage" }
func (Clear) Kind() string        { return "Clear" }
func (TodoAdd) Kind() string      { return "TodoAdd" }
func (TodoComplete) Kind() string { return "TodoComplete" }
func (TodoDelete) Kind() string   { return "TodoDelete" }
func (Reload) Kind() string       { return "Reload" }
func (Exit) Kind() string         { return "Exit" }
func (Screenshot) Kind() string   { return "Screenshot" }

// Kinds lists every wire type name in declaration order.
var Kinds = []string{
	"SetText", "SetColorText", "SetBigText", "SetChart", "SetImage", "Clear",
	"TodoAdd", "TodoComplete", "TodoDelete", "Reload", "Exit", "Screenshot",
}

// Target returns the widget name a command addresses, or "" for commands
// that do not address a widget.
func Target(c Command) string {
	switch c := c.(type) {
	case SetText:
		return c.Name
	case SetColorText:
		return c.Name
	case SetBigText:
		return c.Name
	case SetChart:
		return c.Name
	case SetImage:
		return c.Name
	case Clear:
		return c.Name
	}
	return ""
}

// Envelope is a command in transit together with the module that sent it.
type Envelope struct {
	Origin     string
	Background bool
	Command    Command
}
