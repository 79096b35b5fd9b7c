package pageops_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/lvillar/offerdeck/pageops"
)

// createTestPDF generates a simple test PDF file with the given number of pages.
func createTestPDF(t *testing.T, filename, size string, numPages int) {
	t.Helper()
	pdf := fpdf.New("P", "mm", size, "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= numPages; i++ {
		pdf.AddPage()
		pdf.Text(20, 30, fmt.Sprintf("Page %d of %d", i, numPages))
	}
	if err := pdf.OutputFileAndClose(filename); err != nil {
		t.Fatalf("creating test PDF: %v", err)
	}
}

func TestInspect(t *testing.T) {
	file := filepath.Join(t.TempDir(), "doc.pdf")
	createTestPDF(t, file, "A4", 3)

	info, err := pageops.Inspect(file)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Pages != 3 || len(info.Sizes) != 3 {
		t.Fatalf("expected 3 pages, got %d (%d sizes)", info.Pages, len(info.Sizes))
	}
	if err := info.Check(3, pageops.A4Width, pageops.A4Height, pageops.DefaultTolerance); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if err := info.Check(5, pageops.A4Width, pageops.A4Height, pageops.DefaultTolerance); err == nil {
		t.Fatal("expected page count mismatch")
	}
}

func TestInspectReader(t *testing.T) {
	file := filepath.Join(t.TempDir(), "doc.pdf")
	createTestPDF(t, file, "A4", 2)
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	info, err := pageops.InspectReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("InspectReader: %v", err)
	}
	if info.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", info.Pages)
	}
}

func TestCheckRejectsWrongSize(t *testing.T) {
	file := filepath.Join(t.TempDir(), "letter.pdf")
	createTestPDF(t, file, "Letter", 1)

	info, err := pageops.Inspect(file)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	err = info.Check(1, pageops.A4Width, pageops.A4Height, pageops.DefaultTolerance)
	if err == nil || !strings.Contains(err.Error(), "page 1") {
		t.Fatalf("expected size mismatch on page 1, got %v", err)
	}
}

func TestInspectGarbage(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.pdf")
	if err := os.WriteFile(file, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := pageops.Inspect(file); !errors.Is(err, pageops.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}
