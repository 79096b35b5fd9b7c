// Package export turns a proposal document into a fixed-page A4 PDF.
//
// Every page is rasterized at a supersampled scale, compressed to JPEG and
// placed full-bleed on its own A4 page, so the PDF is a faithful image of the
// preview rather than a re-flow of the document. Pages are captured strictly
// in order inside a private scratch directory that is removed whatever the
// outcome.
//
//	p := export.New(nil, offerdeck.WithSettleDelay(0))
//	res, err := p.ExportFile(ctx, doc, export.DefaultFilename)
package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/lvillar/offerdeck"
	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/model"
	"github.com/lvillar/offerdeck/pageops"
	"github.com/lvillar/offerdeck/render"
)

// DefaultFilename is the file name offered for the exported document.
const DefaultFilename = "commercial-proposal.pdf"

// Target produces the bitmap of one page. render.Renderer is the default.
type Target interface {
	Rasterize(ctx context.Context, page layout.PageDescriptor, theme render.Theme, opts render.Options) (*render.Surface, error)
}

// Result summarizes a finished export.
type Result struct {
	ID       string        `json:"id"`
	Pages    int           `json:"pages"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// Pipeline exports documents. A Pipeline holds no per-export state and may
// be shared.
type Pipeline struct {
	target   Target
	settings offerdeck.Settings
}

// New creates a Pipeline. A nil target uses a render.Renderer that fetches
// remote images.
func New(target Target, opts ...offerdeck.Option) *Pipeline {
	s := offerdeck.Apply(opts...)
	if target == nil {
		target = render.New(nil, s.Logger)
	}
	return &Pipeline{target: target, settings: s}
}

// Settings returns the resolved pipeline settings.
func (p *Pipeline) Settings() offerdeck.Settings { return p.settings }

// Export renders doc and writes the PDF to w. Nothing is written to w unless
// every page was captured and the assembled document passed verification.
// Errors are *offerdeck.OpError values wrapping offerdeck.ErrExport.
func (p *Pipeline) Export(ctx context.Context, doc model.Document, w io.Writer) (Result, error) {
	start := time.Now()
	res := Result{ID: uuid.NewString()}
	log := p.settings.Logger.With("export_id", res.ID)

	fail := func(page int, err error) (Result, error) {
		log.Error("export failed", "page", page, "err", err)
		return Result{}, offerdeck.NewOpError("export", page, fmt.Errorf("%w: %w", offerdeck.ErrExport, err))
	}

	snapshot := doc.Clone()
	pages := layout.Build(snapshot)
	if len(pages) == 0 {
		return fail(0, offerdeck.ErrNoPages)
	}

	dir, err := os.MkdirTemp(p.settings.TempDir, "offerdeck-export-*")
	if err != nil {
		return fail(0, fmt.Errorf("creating scratch directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("removing scratch directory", "dir", dir, "err", err)
		}
	}()

	out := filepath.Join(dir, DefaultFilename)
	if page, err := p.assemble(ctx, log, snapshot, pages, dir, out); err != nil {
		return fail(page, err)
	}

	info, err := pageops.Inspect(out)
	if err != nil {
		return fail(0, err)
	}
	if err := info.Check(len(pages), pageops.A4Width, pageops.A4Height, pageops.DefaultTolerance); err != nil {
		return fail(0, err)
	}

	f, err := os.Open(out)
	if err != nil {
		return fail(0, err)
	}
	defer f.Close()
	n, err := io.Copy(w, f)
	if err != nil {
		return fail(0, fmt.Errorf("writing output: %w", err))
	}

	res.Pages = len(pages)
	res.Bytes = n
	res.Duration = time.Since(start)
	log.Info("export complete", "pages", res.Pages, "bytes", res.Bytes, "duration", res.Duration)
	return res, nil
}

// assemble captures every page into dir and writes the PDF to out. On
// failure it returns the number of the page being processed, or 0.
func (p *Pipeline) assemble(ctx context.Context, log *slog.Logger, doc model.Document, pages []layout.PageDescriptor, dir, out string) (int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("offerdeck", true)
	pdf.SetTitle(doc.OfferTitle, true)
	pdf.SetAuthor(doc.CompanyName, true)

	pageW, pageH := pdf.GetPageSize()
	if math.Abs(pageW-render.PageWidthMM) > 0.01 || math.Abs(pageH-render.PageHeightMM) > 0.01 {
		return 0, fmt.Errorf("%w: output page is %.1fx%.1fmm", offerdeck.ErrPageSize, pageW, pageH)
	}

	theme := render.ThemeFor(doc)
	opts := render.Options{
		Scale:       p.settings.Scale,
		Background:  color.White,
		ContactCode: p.settings.ContactCode,
	}
	wantW := int(math.Round(render.PageWidth * opts.Scale))
	wantH := int(math.Round(render.PageHeight * opts.Scale))
	imgOpts := fpdf.ImageOptions{ImageType: "JPG"}

	for _, pg := range pages {
		if err := settle(ctx, p.settings.SettleDelay); err != nil {
			return pg.Number, err
		}

		s, err := p.target.Rasterize(ctx, pg, theme, opts)
		if err != nil {
			return pg.Number, err
		}
		if b := s.Image().Bounds(); b.Dx() != wantW || b.Dy() != wantH {
			return pg.Number, fmt.Errorf("%w: surface is %dx%d, want %dx%d", offerdeck.ErrPageSize, b.Dx(), b.Dy(), wantW, wantH)
		}

		name := filepath.Join(dir, fmt.Sprintf("page-%02d.jpg", pg.Number))
		size, err := writeJPEG(name, s.Image(), p.settings.JPEGQuality)
		if err != nil {
			return pg.Number, err
		}

		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, pageW, pageH, false, imgOpts, 0, "")
		if err := pdf.Error(); err != nil {
			return pg.Number, fmt.Errorf("placing page image: %w", err)
		}
		log.Info("page captured", "page", pg.Number, "kind", pg.Kind, "bytes", size, "overflow", s.Overflow)
	}

	if err := pdf.OutputFileAndClose(out); err != nil {
		return 0, fmt.Errorf("writing PDF: %w", err)
	}
	return 0, nil
}

// ExportFile exports doc to path. The document is written to a temporary
// file next to path and renamed into place, so path is either the complete
// artifact or untouched.
func (p *Pipeline) ExportFile(ctx context.Context, doc model.Document, path string) (Result, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".offerdeck-*.pdf")
	if err != nil {
		return Result{}, offerdeck.NewOpError("export", 0, fmt.Errorf("%w: %w", offerdeck.ErrExport, err))
	}
	res, err := p.Export(ctx, doc, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = offerdeck.NewOpError("export", 0, fmt.Errorf("%w: %w", offerdeck.ErrExport, cerr))
	}
	if err != nil {
		os.Remove(tmp.Name())
		return Result{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return Result{}, offerdeck.NewOpError("export", 0, fmt.Errorf("%w: %w", offerdeck.ErrExport, err))
	}
	return res, nil
}

// settle waits d before a capture.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func writeJPEG(name string, img image.Image, quality int) (int64, error) {
	f, err := os.Create(name)
	if err != nil {
		return 0, fmt.Errorf("creating page image: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return 0, fmt.Errorf("encoding page image: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, err
	}
	return st.Size(), f.Close()
}
