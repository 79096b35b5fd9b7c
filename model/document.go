// Package model defines the proposal document record edited by a session and
// consumed by the layout engine.
//
// A Document is a plain value: scalar text fields, one visibility flag per
// optional section, image slots holding resolved ImageRef values and item
// lists kept in insertion order. The JSON field names match the editor's wire
// format, so a document saved by the editor loads unchanged:
//
//	{
//	  "themeColor": "#2563eb",
//	  "showContext": true,
//	  "companyName": "Digital Agency",
//	  "metrics": [{"indicator": "Leads", "current": "100", "future": "300", "cause": "Ads"}]
//	}
package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// Maximum number of items each list-backed section renders.
const (
	MaxMetrics       = 3
	MaxCases         = 3
	MaxReviews       = 3
	MaxProcessSteps  = 8
	MaxTariffs       = 3
	MaxGalleryImages = 6
	MaxCompanyStats  = 4
)

// Metric is one row of the expected-changes table.
type Metric struct {
	Indicator string `json:"indicator"`
	Current   string `json:"current"`
	Future    string `json:"future"`
	Cause     string `json:"cause"`
}

// CaseStudy is a short success story.
type CaseStudy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Review is a client testimonial with an optional avatar.
type Review struct {
	Author   string   `json:"author"`
	Role     string   `json:"role"`
	Text     string   `json:"text"`
	ImageURL ImageRef `json:"imageUrl"`
}

// Step is one stage of the delivery process.
type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Tariff is a pricing column.
type Tariff struct {
	Title       string   `json:"title"`
	ServiceName string   `json:"serviceName"`
	Price       string   `json:"price"`
	Features    []string `json:"features"`
}

// CompanyStat is a value/label pair in the company profile grid.
type CompanyStat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Document is the proposal being edited.
type Document struct {
	ThemeColor string `json:"themeColor"`

	ShowContext      bool `json:"showContext"`
	ShowSolution     bool `json:"showSolution"`
	ShowMetrics      bool `json:"showMetrics"`
	ShowCases        bool `json:"showCases"`
	ShowReviews      bool `json:"showReviews"`
	ShowProcess      bool `json:"showProcess"`
	ShowTariffs      bool `json:"showTariffs"`
	ShowGallery      bool `json:"showGallery"`
	ShowFooter       bool `json:"showFooter"`
	ShowCompanyStats bool `json:"showCompanyStats"`

	NoLogo         bool     `json:"noLogo"`
	CompanyLogo    ImageRef `json:"companyLogo"`
	CompanyName    string   `json:"companyName"`
	CompanyPhone   string   `json:"companyPhone"`
	CompanyEmail   string   `json:"companyEmail"`
	CompanyWebsite string   `json:"companyWebsite"`

	OfferTitle    string   `json:"offerTitle"`
	OfferSubtitle string   `json:"offerSubtitle"`
	MainImage     ImageRef `json:"mainImage"`

	CurrentSituation string `json:"currentSituation"`
	ClientRequest    string `json:"clientRequest"`

	SolutionTitle       string `json:"solutionTitle"`
	SolutionDescription string `json:"solutionDescription"`

	Metrics []Metric `json:"metrics"`

	CasesTitle string      `json:"casesTitle"`
	Cases      []CaseStudy `json:"cases"`

	Reviews []Review `json:"reviews"`

	ProcessTitle string   `json:"processTitle"`
	ProcessSteps []Step   `json:"processSteps"`
	ProcessImage ImageRef `json:"processImage"`

	Tariffs []Tariff `json:"tariffs"`

	GalleryTitle  string     `json:"galleryTitle"`
	GalleryImages []ImageRef `json:"galleryImages"`

	Bonuses     string `json:"bonuses"`
	CTAText     string `json:"ctaText"`
	ContactInfo string `json:"contactInfo"`

	CompanyFooterImage ImageRef      `json:"companyFooterImage"`
	CompanyDescription string        `json:"companyDescription"`
	CompanyStats       []CompanyStat `json:"companyStats"`
}

// Clone returns a deep copy of d. Edits to the copy never reach d.
func (d Document) Clone() Document {
	c := d
	c.Metrics = cloneSlice(d.Metrics)
	c.Cases = cloneSlice(d.Cases)
	c.Reviews = cloneSlice(d.Reviews)
	c.ProcessSteps = cloneSlice(d.ProcessSteps)
	c.GalleryImages = cloneSlice(d.GalleryImages)
	c.CompanyStats = cloneSlice(d.CompanyStats)
	if d.Tariffs != nil {
		c.Tariffs = make([]Tariff, len(d.Tariffs))
		for i, t := range d.Tariffs {
			t.Features = cloneSlice(t.Features)
			c.Tariffs[i] = t
		}
	}
	return c
}

// Clamped returns a deep copy of d with every list cut to its section cap,
// keeping the first items in insertion order.
func (d Document) Clamped() Document {
	c := d.Clone()
	c.Metrics = Clamp(c.Metrics, MaxMetrics)
	c.Cases = Clamp(c.Cases, MaxCases)
	c.Reviews = Clamp(c.Reviews, MaxReviews)
	c.ProcessSteps = Clamp(c.ProcessSteps, MaxProcessSteps)
	c.Tariffs = Clamp(c.Tariffs, MaxTariffs)
	c.GalleryImages = Clamp(c.GalleryImages, MaxGalleryImages)
	c.CompanyStats = Clamp(c.CompanyStats, MaxCompanyStats)
	return c
}

// Clamp returns the first max items of list.
func Clamp[T any](list []T, max int) []T {
	if len(list) > max {
		return list[:max]
	}
	return list
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Decode reads a JSON document on top of the built-in seed: fields missing
// from the input keep their Default value.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("model: decoding document: %w", err)
	}
	return Merge(Default(), data)
}

// Merge overlays the JSON object data on a copy of d. Scalar fields present
// in data replace those of d and absent ones are kept. A list present in data
// replaces the whole list, so items are never mixed with those of d.
func Merge(d Document, data []byte) (Document, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Document{}, fmt.Errorf("model: decoding document: %w", err)
	}
	out := d.Clone()
	for _, k := range ListKinds {
		if _, ok := keys[string(k)]; ok {
			out.resetList(k)
		}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Document{}, fmt.Errorf("model: decoding document: %w", err)
	}
	return out, nil
}

func (d *Document) resetList(kind ListKind) {
	switch kind {
	case ListMetrics:
		d.Metrics = nil
	case ListCases:
		d.Cases = nil
	case ListReviews:
		d.Reviews = nil
	case ListProcessSteps:
		d.ProcessSteps = nil
	case ListTariffs:
		d.Tariffs = nil
	case ListGallery:
		d.GalleryImages = nil
	case ListCompanyStats:
		d.CompanyStats = nil
	}
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("model: encoding document: %w", err)
	}
	return nil
}
