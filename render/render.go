// Package render paints page descriptors onto fixed-size bitmaps.
//
// A Renderer is the render target of the export pipeline: given a
// layout.PageDescriptor and a Theme it produces a Surface of exactly
// PageWidth x PageHeight CSS pixels times the requested scale. Scale 1 is
// used for on-screen previews and scale 2 for export supersampling. Text is
// set in the embedded Go font family and wrapped at Unicode line-break
// opportunities; images are decoded through an ImageLoader.
//
// Preview-only decoration (zoom, shadow frame, page captions) is applied by
// Preview and never by Rasterize.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/model"
)

// DefaultZoom is the scale of the editor preview.
const DefaultZoom = 0.6

// Options control a single rasterization.
type Options struct {
	Scale       float64     // device pixels per CSS pixel, 1 when zero
	Background  color.Color // page fill, white when nil
	ContactCode string      // CodeQR, CodePDF417 or CodeNone
}

// Normalize fills defaults for unset fields.
func (o Options) Normalize() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.ContactCode == "" {
		o.ContactCode = CodeQR
	}
	return o
}

// Renderer rasterizes pages. It is safe for concurrent use; every call works
// on its own surface.
type Renderer struct {
	loader ImageLoader
	logger *slog.Logger
}

// New returns a Renderer. A nil loader fetches remote images with the
// default timeout; a nil logger uses slog.Default().
func New(loader ImageLoader, logger *slog.Logger) *Renderer {
	if loader == nil {
		loader = NewLoader(true, DefaultFetchTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{loader: loader, logger: logger}
}

// Rasterize paints page onto a new surface.
func (r *Renderer) Rasterize(ctx context.Context, page layout.PageDescriptor, theme Theme, opts Options) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.Normalize()

	s, err := newSurface(opts.Scale, opts.Background)
	if err != nil {
		return nil, err
	}
	defer s.release()

	p := &painter{
		ctx:    ctx,
		s:      s,
		theme:  theme,
		opts:   opts,
		loader: r.loader,
		logger: r.logger.With("page", page.Number, "kind", page.Kind),
		images: make(map[model.ImageRef]image.Image),
	}
	if err := p.page(page); err != nil {
		return nil, fmt.Errorf("render: page %d: %w", page.Number, err)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("render: page %d: %w", page.Number, err)
	}
	if s.Overflow {
		p.logger.Debug("page content clipped at the bottom edge")
	}
	return s, nil
}

// PreviewOptions control the editor preview.
type PreviewOptions struct {
	Zoom        float64 // DefaultZoom when zero
	Frame       bool    // desk margin, drop shadow and page caption
	ContactCode string
}

// Frame geometry in CSS pixels at zoom 1.
const (
	frameMargin  = 32
	frameCaption = 28
	frameShadow  = 6
)

// Preview rasterizes page at the preview zoom and optionally places it on a
// framed desk with its caption.
func (r *Renderer) Preview(ctx context.Context, page layout.PageDescriptor, theme Theme, po PreviewOptions) (image.Image, error) {
	zoom := po.Zoom
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	s, err := r.Rasterize(ctx, page, theme, Options{Scale: zoom, ContactCode: po.ContactCode})
	if err != nil {
		return nil, err
	}
	if !po.Frame {
		return s.Image(), nil
	}

	pageImg := s.Image()
	margin := int(math.Round(frameMargin * zoom))
	caption := 0
	if page.Caption != "" {
		caption = int(math.Round(frameCaption * zoom))
	}
	pb := pageImg.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, pb.Dx()+2*margin, pb.Dy()+2*margin+caption))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorDesk), image.Point{}, draw.Src)

	at := image.Pt(margin, margin+caption)
	shadow := int(math.Round(frameShadow * zoom))
	draw.Draw(canvas, pb.Add(at).Add(image.Pt(shadow, shadow)), image.NewUniform(colorShadow), image.Point{}, draw.Over)
	draw.Draw(canvas, pb.Add(at), pageImg, pb.Min, draw.Src)

	if caption > 0 {
		if err := drawCaption(canvas, page.Caption, margin, margin+caption*2/3, 12*zoom); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func drawCaption(dst draw.Image, text string, x, baseline int, size float64) error {
	faces, err := newFaceCache()
	if err != nil {
		return err
	}
	defer faces.close()
	face, err := faces.face(Bold, size)
	if err != nil {
		return err
	}
	d := font.Drawer{Dst: dst, Src: image.NewUniform(colorMuted), Face: face, Dot: fixed.P(x, baseline)}
	d.DrawString(text)
	return nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render: encoding PNG: %w", err)
	}
	return nil
}
