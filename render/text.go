package render

import (
	"image/color"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal alignment of text within its box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how a text box is drawn. Sizes are CSS pixels.
type TextStyle struct {
	Size       float64
	Weight     Weight
	Color      color.RGBA
	Align      Align
	LineHeight float64 // multiple of Size, 1.4 when zero
	MaxLines   int     // 0 means unlimited
}

func (st TextStyle) lineHeight() float64 {
	if st.LineHeight <= 0 {
		return st.Size * 1.4
	}
	return st.Size * st.LineHeight
}

// measure returns the advance of s including kerning.
func measure(face font.Face, s string) fixed.Int26_6 {
	var adv fixed.Int26_6
	prev := rune(-1)
	for _, r := range s {
		if prev >= 0 {
			adv += face.Kern(prev, r)
		}
		if a, ok := face.GlyphAdvance(r); ok {
			adv += a
		}
		prev = r
	}
	return adv
}

// Wrap breaks text into lines no wider than maxWidth. Breaks happen at
// Unicode line-break opportunities; a token wider than the box is split
// between grapheme clusters. Hard line breaks in text are kept.
func Wrap(face font.Face, text string, maxWidth fixed.Int26_6) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if maxWidth <= 0 {
		maxWidth = fixed.I(1)
	}

	var (
		lines []string
		line  strings.Builder
		state = -1
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(line.String(), " \t"))
		line.Reset()
	}

	for rest := text; rest != ""; {
		var (
			segment   string
			mustBreak bool
		)
		segment, rest, mustBreak, state = uniseg.FirstLineSegmentInString(rest, state)
		hard := mustBreak && strings.HasSuffix(segment, "\n")
		segment = strings.TrimRight(segment, "\n")

		candidate := line.String() + segment
		if measure(face, strings.TrimRight(candidate, " \t")) <= maxWidth {
			line.WriteString(segment)
		} else {
			if line.Len() > 0 {
				flush()
			}
			segment = strings.TrimLeft(segment, " \t")
			if measure(face, strings.TrimRight(segment, " \t")) > maxWidth {
				segment = splitClusters(face, segment, maxWidth, &lines)
			}
			line.WriteString(segment)
		}
		if hard {
			flush()
		}
	}
	if line.Len() > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// splitClusters appends full-width pieces of s to lines and returns the
// remainder that still fits on a line.
func splitClusters(face font.Face, s string, maxWidth fixed.Int26_6, lines *[]string) string {
	var piece strings.Builder
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		if piece.Len() > 0 && measure(face, piece.String()+cluster) > maxWidth {
			*lines = append(*lines, piece.String())
			piece.Reset()
		}
		piece.WriteString(cluster)
	}
	return piece.String()
}
