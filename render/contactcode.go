package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	pdf417 "github.com/ruudk/golang-pdf417"
)

// Contact code kinds.
const (
	CodeQR     = "qr"
	CodePDF417 = "pdf417"
	CodeNone   = "none"
)

// PDF417 layout used for the contact line.
const (
	pdf417Columns  = 6
	pdf417Security = 2
)

// ParseCodeKind validates a contact code kind. Empty selects QR.
func ParseCodeKind(kind string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case "", CodeQR:
		return CodeQR, nil
	case CodePDF417, CodeNone:
		return k, nil
	default:
		return "", fmt.Errorf("render: unknown contact code %q", kind)
	}
}

// ContactCode encodes content as a scannable code of the given kind. It
// returns nil for CodeNone or empty content.
func ContactCode(kind, content string) (image.Image, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var (
		code barcode.Barcode
		err  error
	)
	switch kind {
	case CodeNone:
		return nil, nil
	case CodePDF417:
		code = pdf417.Encode(content, pdf417Columns, pdf417Security)
	case "", CodeQR:
		code, err = qr.Encode(content, qr.M, qr.Auto)
		if err != nil {
			return nil, fmt.Errorf("render: encoding QR code: %w", err)
		}
	default:
		return nil, fmt.Errorf("render: unknown contact code %q", kind)
	}
	return code, nil
}
