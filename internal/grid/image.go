package grid

import (
	"image"

	"r2dash/internal/frame"
	"r2dash/internal/store"
)

type scaled struct {
	version uint64
	w, h    int
	px      []frame.Color // w × 2h pixels, row-major
}

// imageCache keeps the last scaling of each image widget for its draw area.
type imageCache struct {
	entries map[string]scaled
}

func (c *imageCache) get(name string, img store.Image, w, h int) scaled {
	if c.entries == nil {
		c.entries = map[string]scaled{}
	}
	if e, ok := c.entries[name]; ok && e.version == img.Version && e.w == w && e.h == h {
		return e
	}
	e := scaled{version: img.Version, w: w, h: h, px: scale(img.Image, w, 2*h)}
	c.entries[name] = e
	return e
}

// prune drops entries for names no longer on screen.
func (c *imageCache) prune(live map[string]bool) {
	for k := range c.entries {
		if !live[k] {
			delete(c.entries, k)
		}
	}
}

// scale samples src to w×h with nearest-neighbour lookup.
func scale(src image.Image, w, h int) []frame.Color {
	px := make([]frame.Color, w*h)
	if src == nil || w <= 0 || h <= 0 {
		return px
	}
	b := src.Bounds()
	if b.Empty() {
		return px
	}
	for y := 0; y < h; y++ {
		sy := b.Min.Y + y*b.Dy()/h
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*b.Dx()/w
			r, g, bl, a := src.At(sx, sy).RGBA()
			if a == 0 {
				px[y*w+x] = frame.Reset
				continue
			}
			px[y*w+x] = frame.RGB(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	return px
}

// drawImage paints half-block pixels: the upper half takes the foreground,
// the lower half the background.
func drawImage(buf *frame.Buffer, area frame.Rect, s scaled) {
	for y := 0; y < area.H && y < s.h; y++ {
		for x := 0; x < area.W && x < s.w; x++ {
			top := s.px[(2*y)*s.w+x]
			bot := s.px[(2*y+1)*s.w+x]
			buf.SetCell(area.X+x, area.Y+y, frame.Cell{Symbol: "▀", Fg: top, Bg: bot})
		}
	}
}
