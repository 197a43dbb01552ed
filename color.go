package rowan

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied;
// premultiplication happens when the collection pass composes world colors.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ParseColor parses a CSS-style color string. Supported forms:
// "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)", and "rgba(r, g, b, a)"
// with byte channels and a fractional alpha.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFuncColor(s[5:len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFuncColor(s[4:len(s)-1], false)
	}
	return Color{}, fmt.Errorf("rowan: unrecognized color %q", s)
}

func parseHexColor(hex string) (Color, error) {
	var r, g, b, a uint64
	var err error
	a = 255
	switch len(hex) {
	case 3:
		var v uint64
		if v, err = strconv.ParseUint(hex, 16, 16); err == nil {
			r = (v >> 8) * 0x11
			g = ((v >> 4) & 0xF) * 0x11
			b = (v & 0xF) * 0x11
		}
	case 6, 8:
		var v uint64
		if v, err = strconv.ParseUint(hex, 16, 40); err == nil {
			if len(hex) == 8 {
				a = v & 0xFF
				v >>= 8
			}
			r = v >> 16
			g = (v >> 8) & 0xFF
			b = v & 0xFF
		}
	default:
		err = fmt.Errorf("bad length %d", len(hex))
	}
	if err != nil {
		return Color{}, fmt.Errorf("rowan: invalid hex color %q", "#"+hex)
	}
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, float64(a) / 255}, nil
}

func parseFuncColor(args string, hasAlpha bool) (Color, error) {
	parts := strings.Split(args, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("rowan: expected %d color components, got %d", want, len(parts))
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("rowan: invalid color channel %q", parts[i])
		}
		ch[i] = v / 255
	}
	a := 1.0
	if hasAlpha {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return Color{}, fmt.Errorf("rowan: invalid alpha %q", parts[3])
		}
		a = v
	}
	return Color{ch[0], ch[1], ch[2], a}, nil
}

// ChangeAlpha returns a copy of c with the alpha channel replaced.
// The RGB channels are unchanged.
func (c Color) ChangeAlpha(a float64) Color {
	c.A = a
	return c
}

// PackABGR packs the color into a uint32 in ABGR byte order
// (alpha in the high byte, red in the low byte). Channels are not
// premultiplied.
func (c Color) PackABGR() uint32 {
	r := uint32(clamp01(c.R)*255 + 0.5)
	g := uint32(clamp01(c.G)*255 + 0.5)
	b := uint32(clamp01(c.B)*255 + 0.5)
	a := uint32(clamp01(c.A)*255 + 0.5)
	return a<<24 | b<<16 | g<<8 | r
}

// packWorldColor packs a tint with the world alpha premultiplied into the RGB
// channels, in ABGR order. This is the value replicated across quad corners.
func packWorldColor(tint Color, worldAlpha float64) uint32 {
	wa := clamp01(worldAlpha)
	r := uint32(clamp01(tint.R)*wa*255 + 0.5)
	g := uint32(clamp01(tint.G)*wa*255 + 0.5)
	b := uint32(clamp01(tint.B)*wa*255 + 0.5)
	a := uint32(wa*255 + 0.5)
	return a<<24 | b<<16 | g<<8 | r
}

// toRGBA converts to a standard library color with premultiplied channels.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R)*clamp01(c.A)*255 + 0.5),
		G: uint8(clamp01(c.G)*clamp01(c.A)*255 + 0.5),
		B: uint8(clamp01(c.B)*clamp01(c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
