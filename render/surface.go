package render

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Nominal page geometry. One CSS pixel is 1/96 inch, so the A4 page is
// 794x1123 pixels at scale 1.
const (
	PageWidth    = 794
	PageHeight   = 1123
	PagePadding  = 40
	ContentWidth = PageWidth - 2*PagePadding

	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Surface is a fixed-size page bitmap. All drawing coordinates are CSS
// pixels; the surface multiplies them by its scale.
//
// Drawing errors are sticky: the first one is kept and later calls become
// no-ops, in the manner of a PDF writer's error state.
type Surface struct {
	img   *image.RGBA
	scale float64
	faces *faceCache
	err   error

	// Overflow is set when content was clipped at the bottom edge.
	Overflow bool
}

func newSurface(scale float64, bg color.Color) (*Surface, error) {
	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}
	w := int(math.Round(PageWidth * scale))
	h := int(math.Round(PageHeight * scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Surface{img: img, scale: scale, faces: faces}, nil
}

// Image returns the backing bitmap.
func (s *Surface) Image() *image.RGBA { return s.img }

// Scale returns the device pixels per CSS pixel.
func (s *Surface) Scale() float64 { return s.scale }

// Err returns the first drawing error.
func (s *Surface) Err() error { return s.err }

func (s *Surface) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Surface) release() {
	if s.faces != nil {
		s.faces.close()
		s.faces = nil
	}
}

// rect converts a CSS box to the covering device rectangle.
func (s *Surface) rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(x*s.scale)), int(math.Floor(y*s.scale)),
		int(math.Ceil((x+w)*s.scale)), int(math.Ceil((y+h)*s.scale)),
	)
}

// FillRect paints an axis-aligned rectangle.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if s.err != nil {
		return
	}
	draw.Draw(s.img, s.rect(x, y, w, h), image.NewUniform(c), image.Point{}, draw.Over)
}

// Corners holds per-corner radii in CSS pixels.
type Corners struct {
	TL, TR, BR, BL float64
}

// Round returns equal radii on all four corners.
func Round(r float64) Corners { return Corners{r, r, r, r} }

// FillRoundRect paints a rectangle with rounded corners.
func (s *Surface) FillRoundRect(x, y, w, h float64, r Corners, c color.Color) {
	s.fill(x, y, w, h, c, func(z *vector.Rasterizer, ox, oy float32) {
		roundRect(z, ox, oy, s.dev(w), s.dev(h), s.corners(r), false)
	})
}

// StrokeRoundRect outlines a rounded rectangle with a line of width lw drawn
// inside the box.
func (s *Surface) StrokeRoundRect(x, y, w, h, r, lw float64, c color.Color) {
	s.fill(x, y, w, h, c, func(z *vector.Rasterizer, ox, oy float32) {
		d := s.dev(lw)
		roundRect(z, ox, oy, s.dev(w), s.dev(h), s.corners(Round(r)), false)
		inner := s.corners(Round(math.Max(r-lw, 0)))
		roundRect(z, ox+d, oy+d, s.dev(w)-2*d, s.dev(h)-2*d, inner, true)
	})
}

// FillCircle paints a disc centred on (cx, cy).
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	s.FillRoundRect(cx-r, cy-r, 2*r, 2*r, Round(r), c)
}

// HLine draws a horizontal rule one CSS pixel thick.
func (s *Surface) HLine(x, y, w float64, c color.Color) {
	s.FillRect(x, y, w, 1, c)
}

func (s *Surface) dev(v float64) float32 { return float32(v * s.scale) }

func (s *Surface) corners(c Corners) [4]float32 {
	return [4]float32{s.dev(c.TL), s.dev(c.TR), s.dev(c.BR), s.dev(c.BL)}
}

// fill rasterizes a path into a coverage mask sized to the box and
// composites c through it.
func (s *Surface) fill(x, y, w, h float64, c color.Color, path func(z *vector.Rasterizer, ox, oy float32)) {
	if s.err != nil {
		return
	}
	r := s.rect(x, y, w, h)
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	path(z, float32(x*s.scale)-float32(r.Min.X), float32(y*s.scale)-float32(r.Min.Y))
	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(s.img, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// roundRect adds a closed rounded rectangle to z. Radii are ordered
// top-left, top-right, bottom-right, bottom-left. reverse flips the winding
// so the path cuts a hole into an enclosing one.
func roundRect(z *vector.Rasterizer, x, y, w, h float32, radii [4]float32, reverse bool) {
	if w <= 0 || h <= 0 {
		return
	}
	for i, r := range radii {
		radii[i] = min(r, w/2, h/2)
	}
	tl, tr, br, bl := radii[0], radii[1], radii[2], radii[3]
	k := float32(1 - kappa)

	if !reverse {
		z.MoveTo(x+tl, y)
		z.LineTo(x+w-tr, y)
		z.CubeTo(x+w-tr*k, y, x+w, y+tr*k, x+w, y+tr)
		z.LineTo(x+w, y+h-br)
		z.CubeTo(x+w, y+h-br*k, x+w-br*k, y+h, x+w-br, y+h)
		z.LineTo(x+bl, y+h)
		z.CubeTo(x+bl*k, y+h, x, y+h-bl*k, x, y+h-bl)
		z.LineTo(x, y+tl)
		z.CubeTo(x, y+tl*k, x+tl*k, y, x+tl, y)
		z.ClosePath()
		return
	}
	z.MoveTo(x+tl, y)
	z.CubeTo(x+tl*k, y, x, y+tl*k, x, y+tl)
	z.LineTo(x, y+h-bl)
	z.CubeTo(x, y+h-bl*k, x+bl*k, y+h, x+bl, y+h)
	z.LineTo(x+w-br, y+h)
	z.CubeTo(x+w-br*k, y+h, x+w, y+h-br*k, x+w, y+h-br)
	z.LineTo(x+w, y+tr)
	z.CubeTo(x+w, y+tr*k, x+w-tr*k, y, x+w-tr, y)
	z.ClosePath()
}

// DrawCover scales img to fill the box, cropping the overflowing axis, and
// clips it to rounded corners of radius r.
func (s *Surface) DrawCover(img image.Image, x, y, w, h, r float64) {
	if s.err != nil || img == nil {
		return
	}
	dr := s.rect(x, y, w, h)
	if dr.Empty() {
		return
	}
	sb := img.Bounds()
	sr := sb
	if sb.Dx() > 0 && sb.Dy() > 0 {
		target := float64(dr.Dx()) / float64(dr.Dy())
		if src := float64(sb.Dx()) / float64(sb.Dy()); src > target {
			cw := int(math.Round(float64(sb.Dy()) * target))
			off := (sb.Dx() - cw) / 2
			sr = image.Rect(sb.Min.X+off, sb.Min.Y, sb.Min.X+off+cw, sb.Max.Y)
		} else {
			ch := int(math.Round(float64(sb.Dx()) / target))
			off := (sb.Dy() - ch) / 2
			sr = image.Rect(sb.Min.X, sb.Min.Y+off, sb.Max.X, sb.Min.Y+off+ch)
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, sr, draw.Src, nil)
	if r <= 0 {
		draw.Draw(s.img, dr, scaled, image.Point{}, draw.Over)
		return
	}

	z := vector.NewRasterizer(dr.Dx(), dr.Dy())
	roundRect(z, 0, 0, float32(dr.Dx()), float32(dr.Dy()), s.corners(Round(r)), false)
	masked := image.NewRGBA(scaled.Bounds())
	z.Draw(masked, masked.Bounds(), scaled, image.Point{})
	draw.Draw(s.img, dr, masked, image.Point{}, draw.Over)
}

// DrawContain scales img to fit inside the box, keeping its aspect ratio.
// Crisp uses nearest-neighbour sampling, which keeps barcode modules sharp.
func (s *Surface) DrawContain(img image.Image, x, y, w, h float64, crisp bool) {
	if s.err != nil || img == nil {
		return
	}
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	f := math.Min(w/float64(sb.Dx()), h/float64(sb.Dy()))
	dw, dh := float64(sb.Dx())*f, float64(sb.Dy())*f
	dr := s.rect(x+(w-dw)/2, y+(h-dh)/2, dw, dh)

	var scaler draw.Scaler = draw.CatmullRom
	if crisp {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(s.img, dr, img, sb, draw.Over, nil)
}

func (s *Surface) face(st TextStyle) font.Face {
	f, err := s.faces.face(st.Weight, st.Size*s.scale)
	if err != nil {
		s.setErr(err)
		return basicfont.Face7x13
	}
	return f
}

func (s *Surface) lines(w float64, text string, st TextStyle) (font.Face, []string) {
	face := s.face(st)
	if strings.TrimSpace(text) == "" {
		return face, nil
	}
	lines := Wrap(face, text, fixed.Int26_6(w*s.scale*64))
	if st.MaxLines > 0 && len(lines) > st.MaxLines {
		lines = lines[:st.MaxLines]
		lines[len(lines)-1] = strings.TrimRight(lines[len(lines)-1], " .,") + "…"
	}
	return face, lines
}

// MeasureText returns the height the text box would take.
func (s *Surface) MeasureText(w float64, text string, st TextStyle) float64 {
	if s.err != nil {
		return 0
	}
	_, lines := s.lines(w, text, st)
	return float64(len(lines)) * st.lineHeight()
}

// Text draws a fixed-width, auto-height text box and returns its height.
func (s *Surface) Text(x, y, w float64, text string, st TextStyle) float64 {
	if s.err != nil {
		return 0
	}
	face, lines := s.lines(w, text, st)
	lh := st.lineHeight() * s.scale
	m := face.Metrics()
	glyph := float64(m.Ascent+m.Descent) / 64
	src := image.NewUniform(st.Color)

	for i, line := range lines {
		top := y*s.scale + float64(i)*lh
		baseline := top + (lh-glyph)/2 + float64(m.Ascent)/64
		dx := x * s.scale
		switch adv := float64(measure(face, line)) / 64; st.Align {
		case AlignCenter:
			dx += (w*s.scale - adv) / 2
		case AlignRight:
			dx += w*s.scale - adv
		}
		d := font.Drawer{
			Dst:  s.img,
			Src:  src,
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(dx * 64), Y: fixed.Int26_6(baseline * 64)},
		}
		d.DrawString(line)
	}
	return float64(len(lines)) * st.lineHeight()
}
