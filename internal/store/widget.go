// Package store holds dashboard state: the widget registry, the todo list
// and the cell geometry. It is written by the main loop only.
package store

import (
	"image"

	"r2dash/internal/command"
	"r2dash/internal/frame"
)

// Widget is the state of one named dashboard cell. The set of variants is
// closed.
type Widget interface {
	isWidget()
	Kind() string
}

type Text struct {
	Text  string
	Align command.Align
}

type ColorText struct {
	Text  string
	Style frame.Style
	Align command.Align
}

type BigText struct {
	Text string
	Fg   frame.Color
}

type Chart struct {
	Data []float64
	Fg   frame.Color
	Max  float64
}

// Image carries a decoded picture. Version changes on every update so
// renderers can drop cached scalings.
type Image struct {
	Image   image.Image
	Version uint64
}

// Blank is an empty bordered cell.
type Blank struct{}

func (Text) isWidget()      {}
func (ColorText) isWidget() {}
func (BigText) isWidget()   {}
func (Chart) isWidget()     {}
func (Image) isWidget()     {}
func (Blank) isWidget()     {}

func (Text) Kind() string      { return "text" }
func (ColorText) Kind() string { return "color_text" }
func (BigText) Kind() string   { return "big_text" }
func (Chart) Kind() string     { return "chart" }
func (Image) Kind() string     { return "image" }
func (Blank) Kind() string     { return "blank" }
