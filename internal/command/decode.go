package command

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"r2dash/internal/frame"
)

// ErrMalformed marks a command payload that cannot be decoded.
var ErrMalformed = errors.New("malformed command")

// Wire is the JSON shape of a command as scripts send it.
type Wire struct {
	Type     string    `json:"type" jsonschema:"required,enum=SetText,enum=SetColorText,enum=SetBigText,enum=SetChart,enum=SetImage,enum=Clear,enum=TodoAdd,enum=TodoComplete,enum=TodoDelete,enum=Reload,enum=Exit,enum=Screenshot"`
	Name     string    `json:"name,omitempty" jsonschema:"description=Target widget name"`
	Text     string    `json:"text,omitempty"`
	Align    string    `json:"align,omitempty" jsonschema:"enum=left,enum=center,enum=right"`
	Fg       string    `json:"fg,omitempty" jsonschema:"description=Color name or #rrggbb or 0-255"`
	Bg       string    `json:"bg,omitempty"`
	Style    []string  `json:"style,omitempty" jsonschema:"description=Modifiers such as bold or underline"`
	Data     []float64 `json:"data,omitempty"`
	Max      float64   `json:"max,omitempty"`
	Path     string    `json:"path,omitempty" jsonschema:"description=Image file or screenshot destination"`
	Base64   string    `json:"base64,omitempty" jsonschema:"description=Encoded PNG or JPEG or GIF image"`
	Author   string    `json:"author,omitempty"`
	Deadline int64     `json:"deadline,omitempty" jsonschema:"description=Epoch milliseconds"`
}

// Schema describes Wire as JSON Schema.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(&Wire{})
	s.Title = "r2dash command"
	return s
}

// Decode parses one JSON command object.
func Decode(b []byte) (Command, error) {
	var w Wire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return w.Command()
}

// FromValue converts a value exported from a script (a map, or a list of
// maps) into commands. Entries that fail to decode are skipped and their
// errors joined.
func FromValue(v any) ([]Command, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := v.([]any); ok {
		var out []Command
		var errs []error
		for i, item := range list {
			cmds, err := FromValue(item)
			if err != nil {
				errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			}
			out = append(out, cmds...)
		}
		return out, errors.Join(errs...)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	c, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return []Command{c}, nil
}

func parseAlign(s string) (Align, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("%w: unknown align %q", ErrMalformed, s)
}

func (w Wire) needName() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: %s requires name", ErrMalformed, w.Type)
	}
	return nil
}

func (w Wire) color(s string) (frame.Color, error) {
	c, err := frame.ParseColor(s)
	if err != nil {
		return c, fmt.Errorf("%w: %s: %v", ErrMalformed, w.Type, err)
	}
	return c, nil
}

// Command validates w and converts it to its variant.
func (w Wire) Command() (Command, error) {
	switch w.Type {
	case "SetText":
		if err := w.needName(); err != nil {
			return nil, err
		}
		a, err := parseAlign(w.Align)
		if err != nil {
			return nil, err
		}
		return SetText{Name: w.Name, Text: w.Text, Align: a}, nil
	case "SetColorText":
		if err := w.needName(); err != nil {
			return nil, err
		}
		a, err := parseAlign(w.Align)
		if err != nil {
			return nil, err
		}
		fg, err := w.color(w.Fg)
		if err != nil {
			return nil, err
		}
		bg, err := w.color(w.Bg)
		if err != nil {
			return nil, err
		}
		mods, err := frame.ParseModifiers(w.Style)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return SetColorText{Name: w.Name, Text: w.Text, Align: a, Style: frame.Style{Fg: fg, Bg: bg, Mods: mods}}, nil
	case "SetBigText":
		if err := w.needName(); err != nil {
			return nil, err
		}
		fg, err := w.color(w.Fg)
		if err != nil {
			return nil, err
		}
		return SetBigText{Name: w.Name, Text: w.Text, Fg: fg}, nil
	case "SetChart":
		if err := w.needName(); err != nil {
			return nil, err
		}
		fg, err := w.color(w.Fg)
		if err != nil {
			return nil, err
		}
		if w.Max < 0 {
			return nil, fmt.Errorf("%w: SetChart max must not be negative", ErrMalformed)
		}
		return SetChart{Name: w.Name, Data: append([]float64(nil), w.Data...), Fg: fg, Max: w.Max}, nil
	case "SetImage":
		if err := w.needName(); err != nil {
			return nil, err
		}
		img, err := w.image()
		if err != nil {
			return nil, err
		}
		return SetImage{Name: w.Name, Image: img}, nil
	case "Clear":
		if err := w.needName(); err != nil {
			return nil, err
		}
		return Clear{Name: w.Name}, nil
	case "TodoAdd":
		if strings.TrimSpace(w.Text) == "" {
			return nil, fmt.Errorf("%w: TodoAdd requires text", ErrMalformed)
		}
		return TodoAdd{Text: w.Text, Author: w.Author, Deadline: w.Deadline}, nil
	case "TodoComplete":
		if strings.TrimSpace(w.Text) == "" {
			return nil, fmt.Errorf("%w: TodoComplete requires text", ErrMalformed)
		}
		return TodoComplete{Text: w.Text}, nil
	case "TodoDelete":
		if strings.TrimSpace(w.Text) == "" {
			return nil, fmt.Errorf("%w: TodoDelete requires text", ErrMalformed)
		}
		return TodoDelete{Text: w.Text}, nil
	case "Reload":
		return Reload{}, nil
	case "Exit":
		return Exit{}, nil
	case "Screenshot":
		return Screenshot{Path: w.Path}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, w.Type)
}

const (
	// MaxImageBytes caps encoded image payloads.
	MaxImageBytes = 8 << 20
	// MaxImageSide caps each decoded image dimension.
	MaxImageSide = 4096
)

func (w Wire) image() (image.Image, error) {
	var data []byte
	switch {
	case w.Base64 != "":
		if len(w.Base64) > base64.StdEncoding.EncodedLen(MaxImageBytes) {
			return nil, fmt.Errorf("%w: SetImage base64 exceeds %d bytes", ErrMalformed, MaxImageBytes)
		}
		b, err := base64.StdEncoding.DecodeString(w.Base64)
		if err != nil {
			return nil, fmt.Errorf("%w: SetImage base64: %v", ErrMalformed, err)
		}
		data = b
	case w.Path != "":
		b, err := readImageFile(w.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: SetImage: %v", ErrMalformed, err)
		}
		data = b
	default:
		return nil, fmt.Errorf("%w: SetImage requires path or base64", ErrMalformed)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: SetImage decode: %v", ErrMalformed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxImageSide || cfg.Height > MaxImageSide {
		return nil, fmt.Errorf("%w: SetImage %dx%d exceeds %dx%d", ErrMalformed, cfg.Width, cfg.Height, MaxImageSide, MaxImageSide)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: SetImage decode: %v", ErrMalformed, err)
	}
	return img, nil
}

// readImageFile reads a path relative to the working directory. Absolute
// paths and paths leaving it are refused.
func readImageFile(path string) ([]byte, error) {
	if !filepath.IsLocal(path) {
		return nil, fmt.Errorf("path %q is not local", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxImageBytes)
	}
	return data, nil
}
