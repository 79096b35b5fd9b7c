package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/model"
)

// Vertical rhythm in CSS pixels.
const (
	left          = PagePadding
	sectionGap    = 32
	dividerMargin = 24
	cardGap       = 16
	cardPad       = 20
)

// painter draws one page. Hard failures are kept in err.
type painter struct {
	ctx    context.Context
	s      *Surface
	theme  Theme
	opts   Options
	loader ImageLoader
	logger *slog.Logger
	images map[model.ImageRef]image.Image
	err    error
}

func (p *painter) page(pg layout.PageDescriptor) error {
	y := float64(PagePadding)
	if pg.RunningHeader != "" {
		p.s.Text(left, y, ContentWidth, pg.RunningHeader, TextStyle{Size: 11, Weight: Bold, Color: colorFaint})
		y += 24
		p.s.HLine(left, y, ContentWidth, colorRule)
		y += sectionGap
	}

	for _, sec := range pg.Sections {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if sec.Divider {
			y += dividerMargin
			p.s.HLine(left, y, ContentWidth, colorRule)
			y += dividerMargin
		}
		y = p.section(sec, y)
		if p.err != nil {
			return p.err
		}
	}

	if y > PageHeight-PagePadding {
		p.s.Overflow = true
	}
	p.s.Text(left, PageHeight-32, ContentWidth, strconv.Itoa(pg.Number),
		TextStyle{Size: 11, Weight: Bold, Color: colorFaint, Align: AlignRight})
	return nil
}

func (p *painter) section(sec layout.Section, y float64) float64 {
	switch sec.Kind {
	case layout.SectionCompanyHeader:
		return p.companyHeader(sec.Company, y)
	case layout.SectionOffer:
		return p.offer(sec.Offer, y)
	case layout.SectionMainImage:
		return p.mainImage(sec.Image, y)
	case layout.SectionContext:
		return p.context(sec.Context, y)
	case layout.SectionSolution:
		return p.solution(sec.Solution, y)
	case layout.SectionMetrics:
		return p.metrics(sec.Metrics, y)
	case layout.SectionCases:
		return p.cases(sec.Cases, y)
	case layout.SectionReviews:
		return p.reviews(sec.Reviews, y)
	case layout.SectionProcess:
		return p.process(sec.Process, y)
	case layout.SectionTariffs:
		return p.tariffs(sec.Tariffs, y)
	case layout.SectionGallery:
		return p.gallery(sec.Gallery, y)
	case layout.SectionLogo:
		return p.closingLogo(sec.Logo, y)
	case layout.SectionFooter:
		return p.footer(sec.Footer, y)
	}
	p.logger.Warn("unknown section kind", "section", sec.Kind)
	return y
}

// image loads ref once per page. A remote image that cannot be fetched
// yields ok=false and a warning; other failures abort the page.
func (p *painter) image(ref model.ImageRef) (image.Image, bool) {
	if ref.IsZero() || p.err != nil {
		return nil, false
	}
	if img, ok := p.images[ref]; ok {
		return img, img != nil
	}
	img, err := p.loader.Load(p.ctx, ref)
	switch {
	case errors.Is(err, ErrRemoteImage):
		p.logger.Warn("image unavailable, drawing placeholder", "err", err)
		p.images[ref] = nil
		return nil, false
	case err != nil:
		p.err = err
		return nil, false
	}
	p.images[ref] = img
	return img, true
}

func (p *painter) heading(text string, y float64) float64 {
	if strings.TrimSpace(text) == "" {
		return y
	}
	return y + p.s.Text(left, y, ContentWidth, text, TextStyle{Size: 22, Weight: Bold, Color: colorInk, LineHeight: 1.25}) + cardGap
}

func (p *painter) placeholder(x, y, w, h, r float64, label string) {
	p.s.FillRoundRect(x, y, w, h, Round(r), colorPanel)
	p.s.StrokeRoundRect(x, y, w, h, r, 1, colorRule)
	if label == "" {
		return
	}
	st := TextStyle{Size: 13, Color: colorFaint, Align: AlignCenter}
	th := p.s.MeasureText(w-2*cardPad, label, st)
	p.s.Text(x+cardPad, y+(h-th)/2, w-2*cardPad, label, st)
}

func (p *painter) logo(mark layout.LogoMark, x, y, size float64) {
	if img, ok := p.image(mark.Image); ok {
		p.s.DrawContain(img, x, y, size, size, false)
		return
	}
	p.s.FillRoundRect(x, y, size, size, Round(size/5), p.theme.Tint)
	st := TextStyle{Size: size / 5, Weight: Bold, Color: p.theme.Accent, Align: AlignCenter}
	p.s.Text(x, y+(size-st.lineHeight())/2, size, "LOGO", st)
}

func (p *painter) companyHeader(h *layout.CompanyHeader, y float64) float64 {
	const logoSize = 56
	x := float64(left)
	height := 0.0
	if h.Logo != nil {
		p.logo(*h.Logo, x, y, logoSize)
		x += logoSize + 16
		height = logoSize
	}

	const contactW = 260
	nameH := p.s.Text(x, y+6, left+ContentWidth-contactW-x-16, h.Name, TextStyle{Size: 22, Weight: Bold, Color: colorInk, LineHeight: 1.2})
	height = max(height, nameH+6)

	cy := y
	for _, line := range []struct {
		text string
		c    color.RGBA
	}{
		{h.Website, p.theme.Accent},
		{h.Phone, colorMuted},
		{h.Email, colorMuted},
	} {
		cy += p.s.Text(left+ContentWidth-contactW, cy, contactW, line.text, TextStyle{Size: 12, Color: line.c, Align: AlignRight})
	}
	return y + max(height, cy-y) + 56
}

func (p *painter) offer(o *layout.Offer, y float64) float64 {
	p.s.FillRoundRect(left, y, 64, 6, Round(3), p.theme.Accent)
	y += 28
	y += p.s.Text(left, y, ContentWidth, o.Title, TextStyle{Size: 44, Weight: Bold, Color: colorInk, LineHeight: 1.15})
	y += 16
	y += p.s.Text(left, y, ContentWidth, o.Subtitle, TextStyle{Size: 20, Color: colorMuted, LineHeight: 1.4})
	return y + 40
}

func (p *painter) mainImage(ref model.ImageRef, y float64) float64 {
	const h = 380
	if img, ok := p.image(ref); ok {
		p.s.DrawCover(img, left, y, ContentWidth, h, 16)
	} else {
		p.placeholder(left, y, ContentWidth, h, 16, "")
	}
	return y + h + sectionGap
}

func (p *painter) bullets(x, y, w float64, items []string) float64 {
	st := TextStyle{Size: 14, Color: colorInk, LineHeight: 1.5}
	for _, item := range items {
		p.s.FillCircle(x+4, y+st.lineHeight()/2, 3, p.theme.Accent)
		y += p.s.Text(x+16, y, w-16, item, st) + 6
	}
	return y
}

func (p *painter) context(c *layout.Context, y float64) float64 {
	const gap = 32
	colW := (ContentWidth - gap) / 2.0
	label := TextStyle{Size: 13, Weight: Bold, Color: p.theme.Accent}

	column := func(x float64, title string, items []string) float64 {
		cy := y + p.s.Text(x, y, colW, title, label) + 10
		return p.bullets(x, cy, colW, items)
	}
	a := column(left, c.SituationLabel, c.Situation)
	b := column(left+colW+gap, c.RequestLabel, c.Request)
	return max(a, b)
}

func (p *painter) solution(sol *layout.Solution, y float64) float64 {
	const pad = 28
	w := float64(ContentWidth - 2*pad)
	head := TextStyle{Size: 12, Weight: Bold, Color: p.theme.Accent}
	title := TextStyle{Size: 24, Weight: Bold, Color: colorInk, LineHeight: 1.25}
	desc := TextStyle{Size: 15, Color: colorMuted, LineHeight: 1.6}

	h := pad + p.s.MeasureText(w, sol.Heading, head) + 8 +
		p.s.MeasureText(w, sol.Title, title) + 12 +
		p.s.MeasureText(w, sol.Description, desc) + pad

	p.s.FillRoundRect(left, y, ContentWidth, h, Round(16), p.theme.Tint)
	ty := y + pad
	ty += p.s.Text(left+pad, ty, w, sol.Heading, head) + 8
	ty += p.s.Text(left+pad, ty, w, sol.Title, title) + 12
	p.s.Text(left+pad, ty, w, sol.Description, desc)
	return y + h
}

func (p *painter) metrics(m *layout.Metrics, y float64) float64 {
	y += p.s.Text(left, y, ContentWidth, m.Title, TextStyle{Size: 20, Weight: Bold, Color: colorInk}) + cardGap

	white := colorWhite
	bold := Bold
	stripe := colorPanel
	t := NewTable().
		SetColumns(
			ColumnDef{Share: 0.25},
			ColumnDef{Share: 0.15},
			ColumnDef{Share: 0.15},
			ColumnDef{Share: 0.45},
		).
		SetHeader(m.Columns[:]...).
		SetStyle(TableStyle{
			Header:      CellStyle{Fill: &p.theme.Accent, Color: &white, Weight: &bold, Size: 12},
			Body:        CellStyle{Fill: &white, Size: 13},
			StripeFill:  &stripe,
			RuleColor:   colorRule,
			CellPadding: UniformPadding(12),
			Radius:      12,
		})

	for _, row := range m.Rows {
		t.AddRow(row.Indicator, row.Current, row.Future, row.Cause).SetLast(row.Last)
	}

	h := t.Render(p.s, left, y, ContentWidth)
	p.s.StrokeRoundRect(left, y, ContentWidth, h, 12, 1, colorRule)
	return y + h
}

// columns returns the width of each of n columns separated by cardGap.
func columns(n int) float64 {
	if n < 1 {
		n = 1
	}
	return (ContentWidth - float64(n-1)*cardGap) / float64(n)
}

func (p *painter) cases(c *layout.Cases, y float64) float64 {
	y = p.heading(c.Title, y)

	colW := columns(3)
	w := colW - 2*cardPad
	label := TextStyle{Size: 11, Weight: Bold, Color: p.theme.Accent}
	title := TextStyle{Size: 16, Weight: Bold, Color: colorInk, LineHeight: 1.3}
	desc := TextStyle{Size: 13, Color: colorMuted, LineHeight: 1.5}

	h := 0.0
	for _, item := range c.Items {
		h = max(h, p.s.MeasureText(w, item.Label, label)+8+
			p.s.MeasureText(w, item.Title, title)+8+
			p.s.MeasureText(w, item.Description, desc))
	}
	h += 2 * cardPad

	for i, item := range c.Items {
		x := left + float64(i)*(colW+cardGap)
		p.s.FillRoundRect(x, y, colW, h, Round(14), colorPanel)
		p.s.StrokeRoundRect(x, y, colW, h, 14, 1, colorRule)
		ty := y + cardPad
		ty += p.s.Text(x+cardPad, ty, w, item.Label, label) + 8
		ty += p.s.Text(x+cardPad, ty, w, item.Title, title) + 8
		p.s.Text(x+cardPad, ty, w, item.Description, desc)
	}
	return y + h + sectionGap
}

func (p *painter) avatar(r layout.ReviewCard, x, y, size float64) {
	if img, ok := p.image(r.ImageURL); ok {
		p.s.DrawCover(img, x, y, size, size, size/2)
		return
	}
	p.s.FillCircle(x+size/2, y+size/2, size/2, p.theme.Accent)
	st := TextStyle{Size: size * 0.42, Weight: Bold, Color: colorWhite, Align: AlignCenter, LineHeight: 1}
	p.s.Text(x, y+(size-st.lineHeight())/2, size, r.Initial, st)
}

func (p *painter) reviews(rv *layout.Reviews, y float64) float64 {
	y = p.heading(rv.Title, y)

	const avatar = 48
	x := left + cardPad + avatar + 16.0
	w := left + ContentWidth - cardPad - x
	author := TextStyle{Size: 15, Weight: Bold, Color: colorInk}
	role := TextStyle{Size: 12, Color: colorMuted}
	quote := TextStyle{Size: 14, Weight: Italic, Color: colorInk, LineHeight: 1.6}

	for _, r := range rv.Items {
		text := ""
		if strings.TrimSpace(r.Text) != "" {
			text = "«" + r.Text + "»"
		}
		body := p.s.MeasureText(w, r.Author, author) + p.s.MeasureText(w, r.Role, role) + 10 + p.s.MeasureText(w, text, quote)
		h := max(body, avatar) + 2*cardPad

		p.s.FillRoundRect(left, y, ContentWidth, h, Round(14), p.theme.Tint)
		p.avatar(r, left+cardPad, y+cardPad, avatar)
		ty := y + cardPad
		ty += p.s.Text(x, ty, w, r.Author, author)
		ty += p.s.Text(x, ty, w, r.Role, role) + 10
		p.s.Text(x, ty, w, text, quote)
		y += h + 12
	}
	return y - 12 + sectionGap
}

func (p *painter) process(pr *layout.Process, y float64) float64 {
	y = p.heading(pr.Title, y)

	cols := 1
	if pr.TwoColumn {
		cols = 2
	}
	colW := columns(cols)
	const badge = 32
	w := colW - badge - 12
	title := TextStyle{Size: 15, Weight: Bold, Color: colorInk}
	desc := TextStyle{Size: 13, Color: colorMuted, LineHeight: 1.5}
	num := TextStyle{Size: 14, Weight: Bold, Color: colorWhite, Align: AlignCenter, LineHeight: 1}

	for i := 0; i < len(pr.Steps); i += cols {
		rowH := 0.0
		for j := 0; j < cols && i+j < len(pr.Steps); j++ {
			st := pr.Steps[i+j]
			h := p.s.MeasureText(w, st.Title, title) + 4 + p.s.MeasureText(w, st.Description, desc)
			rowH = max(rowH, h, badge)
		}
		for j := 0; j < cols && i+j < len(pr.Steps); j++ {
			st := pr.Steps[i+j]
			x := left + float64(j)*(colW+cardGap)
			p.s.FillCircle(x+badge/2, y+badge/2, badge/2, p.theme.Accent)
			p.s.Text(x, y+(badge-num.lineHeight())/2, badge, strconv.Itoa(st.Number), num)
			ty := y + p.s.Text(x+badge+12, y+4, w, st.Title, title) + 8
			p.s.Text(x+badge+12, ty, w, st.Description, desc)
		}
		y += rowH + cardGap
	}

	if img, ok := p.image(pr.Diagram); ok {
		const h = 240
		p.s.FillRoundRect(left, y, ContentWidth, h, Round(12), colorPanel)
		p.s.DrawContain(img, left+8, y+8, ContentWidth-16, h-16, false)
		y += h + cardGap
	}
	return y - cardGap + sectionGap
}

func (p *painter) tariffs(t *layout.Tariffs, y float64) float64 {
	y = p.heading(t.Title, y)

	colW := columns(t.Columns)
	w := colW - 2*cardPad
	title := TextStyle{Size: 13, Weight: Bold}
	service := TextStyle{Size: 16, Weight: Bold, LineHeight: 1.3}
	price := TextStyle{Size: 26, Weight: Bold, LineHeight: 1.2}
	feature := TextStyle{Size: 13, LineHeight: 1.5}

	h := 0.0
	for _, c := range t.Cards {
		fh := 0.0
		for _, f := range c.Features {
			fh += p.s.MeasureText(w-16, f, feature) + 4
		}
		h = max(h, p.s.MeasureText(w, c.Title, title)+8+
			p.s.MeasureText(w, c.ServiceName, service)+12+
			p.s.MeasureText(w, c.Price, price)+16+fh)
	}
	h += 2 * cardPad

	for i, c := range t.Cards {
		x := left + float64(i)*(colW+cardGap)
		ink, muted, dot := colorInk, colorMuted, p.theme.Accent
		if c.Emphasized {
			p.s.FillRoundRect(x, y, colW, h, Round(16), p.theme.Accent)
			ink, muted, dot = colorWhite, colorWhite, colorWhite
		} else {
			p.s.FillRoundRect(x, y, colW, h, Round(16), colorWhite)
			p.s.StrokeRoundRect(x, y, colW, h, 16, 1, colorRule)
		}

		title.Color, service.Color, price.Color, feature.Color = dot, ink, ink, muted
		ty := y + cardPad
		ty += p.s.Text(x+cardPad, ty, w, c.Title, title) + 8
		ty += p.s.Text(x+cardPad, ty, w, c.ServiceName, service) + 12
		ty += p.s.Text(x+cardPad, ty, w, c.Price, price) + 16
		for _, f := range c.Features {
			p.s.FillCircle(x+cardPad+4, ty+feature.lineHeight()/2, 2.5, dot)
			ty += p.s.Text(x+cardPad+16, ty, w-16, f, feature) + 4
		}
	}
	return y + h + sectionGap
}

func (p *painter) gallery(g *layout.Gallery, y float64) float64 {
	y = p.heading(g.Title, y)

	if len(g.Images) == 0 {
		const h = 320
		p.placeholder(left, y, ContentWidth, h, 16, g.Placeholder)
		return y + h + sectionGap
	}

	colW := columns(2)
	const h = 240
	for i, ref := range g.Images {
		x := left + float64(i%2)*(colW+cardGap)
		cy := y + float64(i/2)*(h+cardGap)
		if img, ok := p.image(ref); ok {
			p.s.DrawCover(img, x, cy, colW, h, 12)
		} else {
			p.placeholder(x, cy, colW, h, 12, "")
		}
	}
	rows := (len(g.Images) + 1) / 2
	return y + float64(rows)*(h+cardGap) - cardGap + sectionGap
}

func (p *painter) closingLogo(l *layout.LogoMark, y float64) float64 {
	const size = 80
	p.logo(*l, left+(ContentWidth-size)/2.0, y, size)
	return y + size + sectionGap
}

func (p *painter) footer(f *layout.Footer, y float64) float64 {
	const photo = 300
	if img, ok := p.image(f.Image); ok {
		p.s.DrawCover(img, left, y, photo, photo, 16)
	} else {
		p.placeholder(left, y, photo, photo, 16, f.NoPhoto)
	}

	x := left + photo + 32.0
	w := left + ContentWidth - x
	cy := y
	cy += p.s.Text(x, cy, w, strings.ToUpper(f.AboutLabel), TextStyle{Size: 12, Weight: Bold, Color: p.theme.Accent}) + 6
	cy += p.s.Text(x, cy, w, f.CompanyName, TextStyle{Size: 26, Weight: Bold, Color: colorInk, LineHeight: 1.2}) + 10
	cy += p.s.Text(x, cy, w, f.Description, TextStyle{Size: 14, Color: colorMuted, LineHeight: 1.6}) + 16

	if len(f.Stats) > 0 {
		const statH = 72
		statW := (w - 12) / 2
		for i, st := range f.Stats {
			sx := x + float64(i%2)*(statW+12)
			sy := cy + float64(i/2)*(statH+12)
			p.s.FillRoundRect(sx, sy, statW, statH, Round(12), p.theme.Tint)
			p.s.Text(sx+14, sy+10, statW-28, st.Value, TextStyle{Size: 24, Weight: Bold, Color: p.theme.Accent, LineHeight: 1.2, MaxLines: 1})
			p.s.Text(sx+14, sy+42, statW-28, st.Label, TextStyle{Size: 11, Color: colorMuted, MaxLines: 1})
		}
		cy += float64((len(f.Stats)+1)/2)*(statH+12) - 12
	}
	y = max(y+photo, cy) + sectionGap

	if f.Bonus != "" {
		st := TextStyle{Size: 14, Weight: Bold, Color: colorInk, LineHeight: 1.5}
		h := p.s.MeasureText(ContentWidth-2*cardPad, f.Bonus, st) + 2*cardPad
		p.s.FillRoundRect(left, y, ContentWidth, h, Round(12), colorHighlight)
		p.s.Text(left+cardPad, y+cardPad, ContentWidth-2*cardPad, f.Bonus, st)
		y += h + cardGap
	}

	return p.callToAction(f, y)
}

// callToAction draws the accent band with the contact details and the
// contact code.
func (p *painter) callToAction(f *layout.Footer, y float64) float64 {
	const pad = 28
	code, err := p.contactCode(f)
	if err != nil {
		p.logger.Warn("contact code skipped", "err", err)
	}
	codeW, codeH := 0.0, 0.0
	if code != nil {
		codeW, codeH = 112, 112
		if p.opts.ContactCode == CodePDF417 {
			codeW, codeH = 200, 80
		}
	}

	w := ContentWidth - 2*pad - codeW
	if code != nil {
		w -= 24
	}
	cta := TextStyle{Size: 24, Weight: Bold, Color: colorWhite, LineHeight: 1.25}
	contact := TextStyle{Size: 16, Color: colorWhite}
	site := TextStyle{Size: 14, Color: colorWhite}

	textH := p.s.MeasureText(w, f.CTA, cta) + 12 + p.s.MeasureText(w, f.Contact, contact) + 4 + p.s.MeasureText(w, f.Website, site)
	h := max(textH, codeH+16) + 2*pad

	p.s.FillRoundRect(left, y, ContentWidth, h, Round(20), p.theme.Accent)
	ty := y + pad
	ty += p.s.Text(left+pad, ty, w, f.CTA, cta) + 12
	ty += p.s.Text(left+pad, ty, w, f.Contact, contact) + 4
	p.s.Text(left+pad, ty, w, f.Website, site)

	if code != nil {
		cx := left + ContentWidth - pad - codeW - 8
		cy := y + (h-codeH-16)/2
		p.s.FillRoundRect(cx, cy, codeW+16, codeH+16, Round(10), colorWhite)
		p.s.DrawContain(code, cx+8, cy+8, codeW, codeH, true)
	}
	return y + h
}

func (p *painter) contactCode(f *layout.Footer) (image.Image, error) {
	switch p.opts.ContactCode {
	case CodePDF417:
		return ContactCode(CodePDF417, f.Contact)
	case CodeNone:
		return nil, nil
	}
	content := f.WebsiteURL
	if content == "" {
		content = f.Contact
	}
	return ContactCode(CodeQR, content)
}
