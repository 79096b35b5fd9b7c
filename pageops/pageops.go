// Package pageops inspects assembled PDF documents.
//
// The export pipeline uses it to verify its own output before handing the
// file to the caller: the page count must match the number of rendered
// pages and every page must carry the expected MediaBox.
package pageops

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/phpdave11/gofpdi"
)

// A4 page size in PDF points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// DefaultTolerance is the allowed MediaBox deviation in points.
const DefaultTolerance = 0.5

// ErrUnreadable reports a document the PDF parser rejected.
var ErrUnreadable = errors.New("pageops: unreadable PDF")

// Size is a page MediaBox in points.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Info describes a parsed PDF.
type Info struct {
	Pages int    `json:"pages"`
	Sizes []Size `json:"sizes"` // MediaBox of each page, in page order
}

// Inspect parses the PDF at path.
func Inspect(path string) (Info, error) {
	return inspect(func(imp *gofpdi.Importer) { imp.SetSourceFile(path) })
}

// InspectReader parses a PDF from rs.
func InspectReader(rs io.ReadSeeker) (Info, error) {
	return inspect(func(imp *gofpdi.Importer) { imp.SetSourceStream(&rs) })
}

// inspect loads a source into a fresh importer and collects page boxes.
// The importer reports parse failures by panicking.
func inspect(load func(*gofpdi.Importer)) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	imp := gofpdi.NewImporter()
	load(imp)

	info.Pages = imp.GetNumPages()
	sizes := imp.GetPageSizes()
	info.Sizes = make([]Size, info.Pages)
	for n := 1; n <= info.Pages; n++ {
		if mb, ok := sizes[n]["/MediaBox"]; ok {
			info.Sizes[n-1] = Size{W: mb["w"], H: mb["h"]}
		}
	}
	return info, nil
}

// Check verifies that the document has want pages, each of size w x h
// points within tol.
func (i Info) Check(want int, w, h, tol float64) error {
	if i.Pages != want {
		return fmt.Errorf("pageops: document has %d pages, want %d", i.Pages, want)
	}
	for n, s := range i.Sizes {
		if math.Abs(s.W-w) > tol || math.Abs(s.H-h) > tol {
			return fmt.Errorf("pageops: page %d is %.2fx%.2fpt, want %.2fx%.2fpt", n+1, s.W, s.H, w, h)
		}
	}
	return nil
}
