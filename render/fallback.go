package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// bar is a horizontal stroke laid over a base glyph. Positions are fractions
// of the base glyph's ink box: y from the top, x from the left edge.
type bar struct {
	y, x0, x1 float64
}

// composite describes a glyph the embedded fonts lack as a letter they do
// have plus strokes.
type composite struct {
	base rune
	bars []bar
}

// composites covers currency signs used in proposals that the Go fonts do
// not carry.
var composites = map[rune]composite{
	'₽': {base: 'P', bars: []bar{{y: 0.72, x0: -0.28, x1: 0.62}}},
}

// fallbackFace draws runes missing from Face as composites. Everything else
// passes through.
type fallbackFace struct {
	font.Face
	src *opentype.Font
	buf sfnt.Buffer
}

func newFallbackFace(face font.Face, src *opentype.Font) *fallbackFace {
	return &fallbackFace{Face: face, src: src}
}

// has reports whether the source font maps r to a real glyph.
func (f *fallbackFace) has(r rune) bool {
	idx, err := f.src.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

func (f *fallbackFace) composite(r rune) (composite, bool) {
	c, ok := composites[r]
	if !ok || f.has(r) {
		return composite{}, false
	}
	return c, true
}

func (f *fallbackFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	if c, ok := f.composite(r); ok {
		return f.Face.GlyphAdvance(c.base)
	}
	return f.Face.GlyphAdvance(r)
}

func (f *fallbackFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	c, ok := f.composite(r)
	if !ok {
		return f.Face.GlyphBounds(r)
	}
	b, adv, ok := f.Face.GlyphBounds(c.base)
	left, w := b.Min.X, b.Max.X-b.Min.X
	for _, s := range c.bars {
		if x := left + fixed.Int26_6(float64(w)*s.x0); x < b.Min.X {
			b.Min.X = x
		}
	}
	return b, adv, ok
}

func (f *fallbackFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	c, ok := f.composite(r)
	if !ok {
		return f.Face.Glyph(dot, r)
	}
	dr, mask, maskp, adv, ok := f.Face.Glyph(dot, c.base)
	if !ok || dr.Empty() {
		return dr, mask, maskp, adv, ok
	}

	w, h := float64(dr.Dx()), float64(dr.Dy())
	thick := max(1, int(math.Round(h*0.09)))
	out := dr
	for _, s := range c.bars {
		if x := dr.Min.X + int(math.Floor(w*s.x0)); x < out.Min.X {
			out.Min.X = x
		}
	}

	// The base mask is a scratch buffer of Face, so it is copied out.
	dst := image.NewAlpha(out)
	draw.Draw(dst, dr, mask, maskp, draw.Src)
	for _, s := range c.bars {
		y := dr.Min.Y + int(math.Round(h*s.y)) - thick/2
		stroke := image.Rect(
			dr.Min.X+int(math.Floor(w*s.x0)), y,
			dr.Min.X+int(math.Ceil(w*s.x1)), y+thick,
		).Intersect(out)
		draw.Draw(dst, stroke, image.Opaque, image.Point{}, draw.Src)
	}
	return out, dst, out.Min, adv, true
}
