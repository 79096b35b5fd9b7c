// Package layout maps a proposal document onto a fixed sequence of A4 page
// descriptors.
//
// The mapping is positional: every page has a fixed set of sections in a
// fixed order, sections are dropped when their visibility flag is off or
// their backing list is empty, and lists are cut to their section caps.
// Build is pure: it never modifies its input and returns identical
// descriptors for identical documents.
//
//	pages := layout.Build(model.Default())
//	for _, p := range pages {
//	    fmt.Println(p.Number, p.Kind, len(p.Sections))
//	}
package layout

import "github.com/lvillar/offerdeck/model"

// PageKind identifies one of the fixed pages.
type PageKind string

const (
	PageTitle      PageKind = "title"
	PageSituation  PageKind = "situation"
	PageExperience PageKind = "experience"
	PageDelivery   PageKind = "delivery"
	PageGallery    PageKind = "gallery"
	PageClosing    PageKind = "closing"
)

// SectionKind identifies a content block on a page.
type SectionKind string

const (
	SectionCompanyHeader SectionKind = "companyHeader"
	SectionOffer         SectionKind = "offer"
	SectionMainImage     SectionKind = "mainImage"
	SectionContext       SectionKind = "context"
	SectionSolution      SectionKind = "solution"
	SectionMetrics       SectionKind = "metrics"
	SectionCases         SectionKind = "cases"
	SectionReviews       SectionKind = "reviews"
	SectionProcess       SectionKind = "process"
	SectionTariffs       SectionKind = "tariffs"
	SectionGallery       SectionKind = "gallery"
	SectionLogo          SectionKind = "logo"
	SectionFooter        SectionKind = "footer"
)

// PageDescriptor describes the content of one physical page.
type PageDescriptor struct {
	Kind          PageKind  `json:"kind"`
	Number        int       `json:"number"` // label printed in the page corner
	RunningHeader string    `json:"runningHeader,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	Sections      []Section `json:"sections"`
}

// Section returns the first section of the given kind.
func (p PageDescriptor) Section(kind SectionKind) (Section, bool) {
	for _, s := range p.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Has reports whether the page contains a section of the given kind.
func (p PageDescriptor) Has(kind SectionKind) bool {
	_, ok := p.Section(kind)
	return ok
}

// Section is a single content block within a page.
// The Kind field determines which payload field is set.
type Section struct {
	Kind    SectionKind `json:"kind"`
	Divider bool        `json:"divider,omitempty"` // rule drawn above the section

	Company  *CompanyHeader `json:"company,omitempty"`
	Offer    *Offer         `json:"offer,omitempty"`
	Image    model.ImageRef `json:"image,omitempty"`
	Context  *Context       `json:"context,omitempty"`
	Solution *Solution      `json:"solution,omitempty"`
	Metrics  *Metrics       `json:"metrics,omitempty"`
	Cases    *Cases         `json:"cases,omitempty"`
	Reviews  *Reviews       `json:"reviews,omitempty"`
	Process  *Process       `json:"process,omitempty"`
	Tariffs  *Tariffs       `json:"tariffs,omitempty"`
	Gallery  *Gallery       `json:"gallery,omitempty"`
	Logo     *LogoMark      `json:"logo,omitempty"`
	Footer   *Footer        `json:"footer,omitempty"`
}

// LogoMark is a logo image or, when Image is empty, a placeholder.
type LogoMark struct {
	Image model.ImageRef `json:"image,omitempty"`
}

// Placeholder reports whether the placeholder is drawn instead of an image.
func (l LogoMark) Placeholder() bool { return l.Image.IsZero() }

// CompanyHeader is the title page letterhead. Logo is nil when suppressed.
type CompanyHeader struct {
	Logo       *LogoMark `json:"logo,omitempty"`
	Name       string    `json:"name"`
	Website    string    `json:"website,omitempty"`
	WebsiteURL string    `json:"websiteUrl,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
}

// Offer is the proposal title block.
type Offer struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Context holds the two bullet lists of the situation block.
type Context struct {
	SituationLabel string   `json:"situationLabel"`
	Situation      []string `json:"situation"`
	RequestLabel   string   `json:"requestLabel"`
	Request        []string `json:"request"`
}

// Solution is the proposed solution text.
type Solution struct {
	Heading     string `json:"heading"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Metrics is the expected-changes table.
type Metrics struct {
	Title   string      `json:"title"`
	Columns [4]string   `json:"columns"`
	Rows    []MetricRow `json:"rows"`
}

// MetricRow is one table row. Last marks the row drawn with the rounded
// bottom edge.
type MetricRow struct {
	model.Metric
	Last bool `json:"last,omitempty"`
}

// Cases is the case-study list.
type Cases struct {
	Title string     `json:"title"`
	Items []CaseCard `json:"items"`
}

// CaseCard is a numbered case study.
type CaseCard struct {
	Label string `json:"label"`
	model.CaseStudy
}

// Reviews is the testimonial list.
type Reviews struct {
	Title string       `json:"title"`
	Items []ReviewCard `json:"items"`
}

// ReviewCard is a testimonial. Initial is drawn when the review has no avatar.
type ReviewCard struct {
	model.Review
	Initial string `json:"initial"`
}

// Process is the numbered delivery plan.
type Process struct {
	Title     string         `json:"title"`
	Steps     []NumberedStep `json:"steps"`
	TwoColumn bool           `json:"twoColumn,omitempty"`
	Diagram   model.ImageRef `json:"diagram,omitempty"`
}

// NumberedStep is a process step with its 1-based position.
type NumberedStep struct {
	Number int `json:"number"`
	model.Step
}

// Tariffs is the pricing grid.
type Tariffs struct {
	Title   string       `json:"title"`
	Columns int          `json:"columns"`
	Cards   []TariffCard `json:"cards"`
}

// TariffCard is one pricing column. Features holds only non-blank entries.
type TariffCard struct {
	Title       string   `json:"title"`
	ServiceName string   `json:"serviceName"`
	Price       string   `json:"price"`
	Features    []string `json:"features"`
	Emphasized  bool     `json:"emphasized,omitempty"`
}

// Gallery is the optional photo page body.
type Gallery struct {
	Title       string           `json:"title"`
	Images      []model.ImageRef `json:"images"`
	Placeholder string           `json:"placeholder,omitempty"` // empty-state text, set when Images is empty
}

// Footer is the closing company profile and call to action.
type Footer struct {
	Image       model.ImageRef      `json:"image,omitempty"`
	NoPhoto     string              `json:"noPhoto"`
	AboutLabel  string              `json:"aboutLabel"`
	CompanyName string              `json:"companyName"`
	Description string              `json:"description"`
	Stats       []model.CompanyStat `json:"stats,omitempty"`
	Bonus       string              `json:"bonus,omitempty"`
	CTA         string              `json:"cta"`
	Contact     string              `json:"contact"`
	Website     string              `json:"website,omitempty"`
	WebsiteURL  string              `json:"websiteUrl,omitempty"`
}
