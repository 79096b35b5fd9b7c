package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects a face of the embedded font family.
type Weight int

const (
	Regular Weight = iota
	Bold
	Italic
)

var (
	fontsOnce sync.Once
	fonts     map[Weight]*opentype.Font
	fontsErr  error
)

func loadFonts() (map[Weight]*opentype.Font, error) {
	fontsOnce.Do(func() {
		fonts = make(map[Weight]*opentype.Font, 3)
		for w, data := range map[Weight][]byte{
			Regular: goregular.TTF,
			Bold:    gobold.TTF,
			Italic:  goitalic.TTF,
		} {
			f, err := opentype.Parse(data)
			if err != nil {
				fontsErr = fmt.Errorf("render: parsing embedded font: %w", err)
				return
			}
			fonts[w] = f
		}
	})
	return fonts, fontsErr
}

type faceKey struct {
	weight Weight
	size   float64 // device pixels
}

// faceCache hands out faces for one surface. opentype faces keep scratch
// buffers, so a cache is never shared between goroutines.
type faceCache struct {
	fonts map[Weight]*opentype.Font
	faces map[faceKey]font.Face
}

func newFaceCache() (*faceCache, error) {
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &faceCache{fonts: f, faces: make(map[faceKey]font.Face)}, nil
}

func (c *faceCache) face(w Weight, sizePx float64) (font.Face, error) {
	key := faceKey{weight: w, size: sizePx}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	// At 72 DPI one point equals one pixel.
	f, err := opentype.NewFace(c.fonts[w], &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("render: creating font face: %w", err)
	}
	ff := newFallbackFace(f, c.fonts[w])
	c.faces[key] = ff
	return ff, nil
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		f.Close()
	}
}
