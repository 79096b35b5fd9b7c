package layout

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lvillar/offerdeck/model"
)

// Fixed labels printed on the pages.
const (
	labelTitlePage    = "Титульная страница"
	labelClosingPage  = "О компании и Действие"
	labelSituation    = "Ситуация и Решение"
	labelExperience   = "Опыт и Отзывы"
	labelDelivery     = "Процесс и Стоимость"
	labelCurrent      = "Текущая ситуация"
	labelGoal         = "Цель"
	labelSolution     = "Наше решение"
	labelMetrics      = "Ожидаемые изменения"
	labelReviews      = "Отзывы клиентов"
	labelTariffs      = "Тарифы"
	labelCase         = "Кейс"
	labelAbout        = "О компании"
	labelNoPhoto      = "Нет фото"
	labelGalleryEmpty = "Загрузите фотографии в редакторе"
)

var metricColumns = [4]string{"Показатель", "Было", "Станет", "За счет чего"}

// TariffColumns is the fixed width of the pricing grid.
const TariffColumns = 3

// Build maps doc onto its page descriptors. Lists are clamped to their caps
// regardless of what the document holds.
func Build(doc model.Document) []PageDescriptor {
	d := doc.Clamped()

	pages := []PageDescriptor{
		titlePage(d),
		situationPage(d),
		experiencePage(d),
		deliveryPage(d),
	}
	if d.ShowGallery {
		pages = append(pages, galleryPage(d))
	}
	pages = append(pages, closingPage(d))

	for i := range pages {
		pages[i].Number = i + 1
	}
	return pages
}

// Count returns the number of pages Build produces for doc.
func Count(doc model.Document) int {
	if doc.ShowGallery {
		return 6
	}
	return 5
}

func runningHeader(company, label string) string {
	return company + " // " + label
}

func titlePage(d model.Document) PageDescriptor {
	header := &CompanyHeader{
		Name:       d.CompanyName,
		Website:    d.CompanyWebsite,
		WebsiteURL: WebsiteURL(d.CompanyWebsite),
		Phone:      d.CompanyPhone,
		Email:      d.CompanyEmail,
	}
	if !d.NoLogo {
		header.Logo = &LogoMark{Image: d.CompanyLogo}
	}

	p := PageDescriptor{
		Kind:    PageTitle,
		Caption: labelTitlePage,
		Sections: []Section{
			{Kind: SectionCompanyHeader, Company: header},
			{Kind: SectionOffer, Offer: &Offer{Title: d.OfferTitle, Subtitle: d.OfferSubtitle}},
		},
	}
	if !d.MainImage.IsZero() {
		p.Sections = append(p.Sections, Section{Kind: SectionMainImage, Image: d.MainImage})
	}
	return p
}

func situationPage(d model.Document) PageDescriptor {
	p := PageDescriptor{
		Kind:          PageSituation,
		RunningHeader: runningHeader(d.CompanyName, labelSituation),
		Sections:      []Section{},
	}

	if d.ShowContext {
		p.Sections = append(p.Sections, Section{
			Kind: SectionContext,
			Context: &Context{
				SituationLabel: labelCurrent,
				Situation:      Bullets(d.CurrentSituation),
				RequestLabel:   labelGoal,
				Request:        Bullets(d.ClientRequest),
			},
		})
	}
	if d.ShowSolution {
		p.Sections = append(p.Sections, Section{
			Kind:     SectionSolution,
			Divider:  len(p.Sections) > 0,
			Solution: &Solution{Heading: labelSolution, Title: d.SolutionTitle, Description: d.SolutionDescription},
		})
	}
	if d.ShowMetrics && len(d.Metrics) > 0 {
		rows := make([]MetricRow, len(d.Metrics))
		for i, m := range d.Metrics {
			rows[i] = MetricRow{Metric: m, Last: i == len(d.Metrics)-1 || i == model.MaxMetrics-1}
		}
		p.Sections = append(p.Sections, Section{
			Kind:    SectionMetrics,
			Divider: len(p.Sections) > 0,
			Metrics: &Metrics{Title: labelMetrics, Columns: metricColumns, Rows: rows},
		})
	}
	return p
}

func experiencePage(d model.Document) PageDescriptor {
	p := PageDescriptor{
		Kind:          PageExperience,
		RunningHeader: runningHeader(d.CompanyName, labelExperience),
		Sections:      []Section{},
	}

	if d.ShowCases && len(d.Cases) > 0 {
		items := make([]CaseCard, len(d.Cases))
		for i, c := range d.Cases {
			items[i] = CaseCard{Label: labelCase + " " + strconv.Itoa(i+1), CaseStudy: c}
		}
		p.Sections = append(p.Sections, Section{
			Kind:  SectionCases,
			Cases: &Cases{Title: d.CasesTitle, Items: items},
		})
	}
	if d.ShowReviews && len(d.Reviews) > 0 {
		items := make([]ReviewCard, len(d.Reviews))
		for i, r := range d.Reviews {
			items[i] = ReviewCard{Review: r, Initial: Initial(r.Author)}
		}
		p.Sections = append(p.Sections, Section{
			Kind:    SectionReviews,
			Reviews: &Reviews{Title: labelReviews, Items: items},
		})
	}
	return p
}

func deliveryPage(d model.Document) PageDescriptor {
	p := PageDescriptor{
		Kind:          PageDelivery,
		RunningHeader: runningHeader(d.CompanyName, labelDelivery),
		Sections:      []Section{},
	}

	if d.ShowProcess && len(d.ProcessSteps) > 0 {
		steps := make([]NumberedStep, len(d.ProcessSteps))
		for i, s := range d.ProcessSteps {
			steps[i] = NumberedStep{Number: i + 1, Step: s}
		}
		p.Sections = append(p.Sections, Section{
			Kind: SectionProcess,
			Process: &Process{
				Title:     d.ProcessTitle,
				Steps:     steps,
				TwoColumn: len(steps) > 3,
				Diagram:   d.ProcessImage,
			},
		})
	}
	if d.ShowTariffs && len(d.Tariffs) > 0 {
		cards := make([]TariffCard, len(d.Tariffs))
		for i, t := range d.Tariffs {
			cards[i] = TariffCard{
				Title:       t.Title,
				ServiceName: t.ServiceName,
				Price:       t.Price,
				Features:    nonBlank(t.Features),
				Emphasized:  i == 1,
			}
		}
		p.Sections = append(p.Sections, Section{
			Kind:    SectionTariffs,
			Tariffs: &Tariffs{Title: labelTariffs, Columns: TariffColumns, Cards: cards},
		})
	}
	return p
}

func galleryPage(d model.Document) PageDescriptor {
	g := &Gallery{Title: d.GalleryTitle, Images: append([]model.ImageRef{}, d.GalleryImages...)}
	if len(g.Images) == 0 {
		g.Placeholder = labelGalleryEmpty
	}
	return PageDescriptor{
		Kind:          PageGallery,
		RunningHeader: runningHeader(d.CompanyName, d.GalleryTitle),
		Sections:      []Section{{Kind: SectionGallery, Gallery: g}},
	}
}

func closingPage(d model.Document) PageDescriptor {
	p := PageDescriptor{
		Kind:     PageClosing,
		Caption:  labelClosingPage,
		Sections: []Section{},
	}
	if !d.NoLogo {
		p.Sections = append(p.Sections, Section{Kind: SectionLogo, Logo: &LogoMark{Image: d.CompanyLogo}})
	}
	if d.ShowFooter {
		f := &Footer{
			Image:       d.CompanyFooterImage,
			NoPhoto:     labelNoPhoto,
			AboutLabel:  labelAbout,
			CompanyName: d.CompanyName,
			Description: d.CompanyDescription,
			Bonus:       strings.TrimSpace(d.Bonuses),
			CTA:         d.CTAText,
			Contact:     d.ContactInfo,
			Website:     d.CompanyWebsite,
			WebsiteURL:  WebsiteURL(d.CompanyWebsite),
		}
		if d.ShowCompanyStats && len(d.CompanyStats) > 0 {
			f.Stats = append([]model.CompanyStat{}, d.CompanyStats...)
		}
		p.Sections = append(p.Sections, Section{Kind: SectionFooter, Footer: f})
	}
	return p
}

// Bullets splits text on line breaks and drops blank lines.
func Bullets(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Initial returns the upper-cased first letter of name.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// WebsiteURL turns a bare host into an https link.
func WebsiteURL(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		return site
	}
	return "https://" + site
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
