package model

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	// Decoders registered for format sniffing of uploads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageRef is a resolved, self-contained image reference: a data URL
// ("data:image/png;base64,...") or an http(s) URL. The empty value means the
// slot is empty.
type ImageRef string

// Image reference errors.
var (
	ErrNotImage      = errors.New("model: content is not a supported image")
	ErrNotDataURL    = errors.New("model: image reference is not a data URL")
	ErrBadDataURL    = errors.New("model: malformed data URL")
	ErrImageTooLarge = errors.New("model: image exceeds the upload size limit")
)

// MaxImageBytes bounds a single uploaded image.
const MaxImageBytes = 20 << 20

// IsZero reports whether the slot is empty.
func (r ImageRef) IsZero() bool { return strings.TrimSpace(string(r)) == "" }

// IsRemote reports whether r points at an http(s) resource.
func (r ImageRef) IsRemote() bool {
	s := string(r)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsData reports whether r is an inline data URL.
func (r ImageRef) IsData() bool { return strings.HasPrefix(string(r), "data:") }

// DataURL builds an ImageRef embedding payload with the given MIME type.
func DataURL(mime string, payload []byte) ImageRef {
	return ImageRef("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload))
}

// Bytes returns the MIME type and raw payload of a data URL.
func (r ImageRef) Bytes() (mime string, payload []byte, err error) {
	s := string(r)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, ErrNotDataURL
	}
	header, data, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mime, params, _ := strings.Cut(header, ";")
	if strings.Contains(params, "base64") {
		payload, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
		}
		return mime, payload, nil
	}
	unescaped, err := unescapePercent(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mime, []byte(unescaped), nil
}

func unescapePercent(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated escape at %d", i)
		}
		v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}

// EncodeImage converts an uploaded file into a data URL. The content is
// sniffed through the registered image decoders; anything that does not
// decode as an image is rejected with ErrNotImage.
func EncodeImage(r io.Reader) (ImageRef, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("model: reading upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return DataURL("image/"+format, data), nil
}

// SourceKind tells where an image for a slot comes from.
type SourceKind int

const (
	SourceUpload SourceKind = iota
	SourceGenerated
)

func (k SourceKind) String() string {
	switch k {
	case SourceUpload:
		return "upload"
	case SourceGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// ImageSource is a pending image for a slot: either an uploaded file or a
// prompt for the image generator. It is resolved to an ImageRef before it
// reaches a Document.
type ImageSource struct {
	Kind   SourceKind
	Upload io.Reader // SourceUpload
	Prompt string    // SourceGenerated
}

// FromUpload wraps an uploaded file.
func FromUpload(r io.Reader) ImageSource {
	return ImageSource{Kind: SourceUpload, Upload: r}
}

// FromPrompt wraps a generation prompt.
func FromPrompt(prompt string) ImageSource {
	return ImageSource{Kind: SourceGenerated, Prompt: prompt}
}
