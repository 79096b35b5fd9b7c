package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lvillar/offerdeck/model"
)

// tintAlpha is the opacity of the accent in tinted backgrounds.
const tintAlpha = 0x15

// Fixed neutrals shared by every theme.
var (
	colorWhite     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorInk       = color.RGBA{0x11, 0x18, 0x27, 0xff}
	colorMuted     = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	colorFaint     = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorRule      = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorPanel     = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorShadow    = color.RGBA{0x00, 0x00, 0x00, 0x30}
	colorDesk      = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	colorHighlight = color.RGBA{0xfe, 0xf3, 0xc7, 0xff}
)

// Theme holds the colors derived from a document's theme color.
type Theme struct {
	Accent color.RGBA
	Tint   color.RGBA // accent at low opacity over white
}

// ParseTheme derives a Theme from a "#rrggbb" or "#rgb" color.
func ParseTheme(hex string) (Theme, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return Theme{}, err
	}
	return Theme{Accent: c, Tint: blend(c, colorWhite, tintAlpha)}, nil
}

// ThemeFor returns the theme of doc, falling back to the default accent
// when its theme color does not parse.
func ThemeFor(doc model.Document) Theme {
	t, err := ParseTheme(doc.ThemeColor)
	if err != nil {
		t, _ = ParseTheme(model.DefaultThemeColor)
	}
	return t
}

// ParseHex parses a CSS hex color.
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("render: invalid color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: invalid color %q", hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// blend composites fg at alpha a over an opaque bg.
func blend(fg, bg color.RGBA, a uint8) color.RGBA {
	mix := func(f, b uint8) uint8 {
		return uint8((uint32(f)*uint32(a) + uint32(b)*(255-uint32(a)) + 127) / 255)
	}
	return color.RGBA{R: mix(fg.R, bg.R), G: mix(fg.G, bg.G), B: mix(fg.B, bg.B), A: 0xff}
}
