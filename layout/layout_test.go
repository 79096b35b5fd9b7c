package layout

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/lvillar/offerdeck/model"
)

func kinds(pages []PageDescriptor) []PageKind {
	out := make([]PageKind, len(pages))
	for i, p := range pages {
		out[i] = p.Kind
	}
	return out
}

func sectionKinds(p PageDescriptor) []SectionKind {
	out := make([]SectionKind, len(p.Sections))
	for i, s := range p.Sections {
		out[i] = s.Kind
	}
	return out
}

func TestBuildSeed(t *testing.T) {
	pages := Build(model.Default())

	want := []PageKind{PageTitle, PageSituation, PageExperience, PageDelivery, PageClosing}
	if !reflect.DeepEqual(kinds(pages), want) {
		t.Fatalf("pages = %v, want %v", kinds(pages), want)
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Fatalf("page %d numbered %d", i, p.Number)
		}
	}

	checks := map[PageKind][]SectionKind{
		PageTitle:      {SectionCompanyHeader, SectionOffer, SectionMainImage},
		PageSituation:  {SectionContext, SectionSolution, SectionMetrics},
		PageExperience: {SectionCases, SectionReviews},
		PageDelivery:   {SectionProcess, SectionTariffs},
		PageClosing:    {SectionLogo, SectionFooter},
	}
	for _, p := range pages {
		if got := sectionKinds(p); !reflect.DeepEqual(got, checks[p.Kind]) {
			t.Fatalf("%s sections = %v, want %v", p.Kind, got, checks[p.Kind])
		}
	}

	if pages[1].RunningHeader != "Digital Agency // Ситуация и Решение" {
		t.Fatalf("running header = %q", pages[1].RunningHeader)
	}
	if pages[0].Caption == "" || pages[4].Caption == "" {
		t.Fatal("title and closing pages carry captions")
	}
}

func TestBuildAllFlags(t *testing.T) {
	d := model.Default()
	d.ShowGallery = true
	pages := Build(d)

	if len(pages) != 6 || Count(d) != 6 {
		t.Fatalf("expected 6 pages, got %d", len(pages))
	}
	if pages[4].Kind != PageGallery {
		t.Fatalf("page 5 = %s", pages[4].Kind)
	}
	if last := pages[5]; last.Kind != PageClosing || last.Number != 6 {
		t.Fatalf("closing page = %s #%d", last.Kind, last.Number)
	}
	if pages[4].RunningHeader != "Digital Agency // Фотоотчет" {
		t.Fatalf("gallery header = %q", pages[4].RunningHeader)
	}
}

func TestBuildMetricsClamped(t *testing.T) {
	d := model.Default()
	d.Metrics = nil
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		d.Metrics = append(d.Metrics, model.Metric{Indicator: name})
	}

	s, ok := Build(d)[1].Section(SectionMetrics)
	if !ok {
		t.Fatal("metrics section missing")
	}
	rows := s.Metrics.Rows
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"a", "b", "c"} {
		if rows[i].Indicator != want {
			t.Fatalf("row %d = %q, want %q", i, rows[i].Indicator, want)
		}
	}
	if rows[0].Last || rows[1].Last || !rows[2].Last {
		t.Fatalf("only the third row is last: %+v", rows)
	}
	if len(d.Metrics) != 5 {
		t.Fatal("Build modified its input")
	}
}

func TestBuildNoLogo(t *testing.T) {
	d := model.Default()
	d.NoLogo = true
	d.CompanyLogo = "data:image/png;base64,AA=="

	pages := Build(d)
	header, _ := pages[0].Section(SectionCompanyHeader)
	if header.Company.Logo != nil {
		t.Fatal("title page renders a logo")
	}
	for _, p := range pages {
		if p.Has(SectionLogo) {
			t.Fatalf("page %s renders a logo", p.Kind)
		}
	}
}

func TestBuildLogoPlaceholder(t *testing.T) {
	pages := Build(model.Default())
	s, ok := pages[len(pages)-1].Section(SectionLogo)
	if !ok || !s.Logo.Placeholder() {
		t.Fatal("expected logo placeholder on the closing page")
	}
}

func TestBuildHiddenSections(t *testing.T) {
	d := model.Default()
	d.ShowContext = false
	d.ShowSolution = false
	d.ShowMetrics = false
	d.ShowCases = false
	d.ShowReviews = false
	d.ShowProcess = false
	d.ShowTariffs = false
	d.ShowFooter = false

	pages := Build(d)
	if len(pages) != 5 {
		t.Fatalf("fixed pages dropped: %d", len(pages))
	}
	for _, i := range []int{1, 2, 3} {
		if n := len(pages[i].Sections); n != 0 {
			t.Fatalf("%s has %d sections", pages[i].Kind, n)
		}
	}
	if pages[4].Has(SectionFooter) {
		t.Fatal("footer rendered while hidden")
	}
}

func TestBuildEmptyLists(t *testing.T) {
	d := model.Default()
	d.Metrics = nil
	d.Cases = []model.CaseStudy{}
	d.Reviews = nil
	d.ProcessSteps = nil
	d.Tariffs = nil

	pages := Build(d)
	for _, k := range []SectionKind{SectionMetrics, SectionCases, SectionReviews, SectionProcess, SectionTariffs} {
		for _, p := range pages {
			if p.Has(k) {
				t.Fatalf("%s rendered with an empty list", k)
			}
		}
	}
}

func TestBuildDividers(t *testing.T) {
	d := model.Default()
	s := Build(d)[1].Sections
	if s[0].Divider || !s[1].Divider || !s[2].Divider {
		t.Fatalf("dividers = %v %v %v", s[0].Divider, s[1].Divider, s[2].Divider)
	}

	d.ShowContext = false
	s = Build(d)[1].Sections
	if s[0].Kind != SectionSolution || s[0].Divider {
		t.Fatal("first rendered section must not carry a divider")
	}
}

func TestBuildProcess(t *testing.T) {
	d := model.Default()
	s, _ := Build(d)[3].Section(SectionProcess)
	if s.Process.TwoColumn {
		t.Fatal("three steps fit one column")
	}
	if s.Process.Steps[2].Number != 3 {
		t.Fatalf("step number = %d", s.Process.Steps[2].Number)
	}

	for i := 0; i < 10; i++ {
		d.ProcessSteps = append(d.ProcessSteps, model.Step{Title: "more"})
	}
	s, _ = Build(d)[3].Section(SectionProcess)
	if !s.Process.TwoColumn {
		t.Fatal("more than three steps use two columns")
	}
	if len(s.Process.Steps) != model.MaxProcessSteps {
		t.Fatalf("steps = %d", len(s.Process.Steps))
	}
}

func TestBuildTariffs(t *testing.T) {
	d := model.Default()
	d.Tariffs = append(d.Tariffs, model.Tariff{Title: "Extra"})
	d.Tariffs[0].Features = []string{"Аудит", "  ", ""}

	s, _ := Build(d)[3].Section(SectionTariffs)
	cards := s.Tariffs.Cards
	if len(cards) != 3 {
		t.Fatalf("expected 3 tariffs, got %d", len(cards))
	}
	if !cards[1].Emphasized || cards[0].Emphasized || cards[2].Emphasized {
		t.Fatal("only the second tariff is emphasized")
	}
	if len(cards[0].Features) != 1 {
		t.Fatalf("blank features kept: %q", cards[0].Features)
	}
}

func TestBuildGallery(t *testing.T) {
	d := model.Default()
	d.ShowGallery = true

	s, _ := Build(d)[4].Section(SectionGallery)
	if s.Gallery.Placeholder == "" {
		t.Fatal("empty gallery needs placeholder text")
	}

	for i := 0; i < 8; i++ {
		d.GalleryImages = append(d.GalleryImages, "data:image/png;base64,AA==")
	}
	s, _ = Build(d)[4].Section(SectionGallery)
	if len(s.Gallery.Images) != model.MaxGalleryImages || s.Gallery.Placeholder != "" {
		t.Fatalf("gallery images = %d", len(s.Gallery.Images))
	}
}

func TestBuildFooterStats(t *testing.T) {
	d := model.Default()
	f, _ := Build(d)[4].Section(SectionFooter)
	if len(f.Footer.Stats) != 4 {
		t.Fatalf("stats = %d", len(f.Footer.Stats))
	}
	if f.Footer.WebsiteURL != "https://www.digital.agency" {
		t.Fatalf("website url = %q", f.Footer.WebsiteURL)
	}

	d.ShowCompanyStats = false
	f, _ = Build(d)[4].Section(SectionFooter)
	if f.Footer.Stats != nil {
		t.Fatal("stats rendered while hidden")
	}
}

func TestBuildIdempotent(t *testing.T) {
	d := model.Default()
	d.ShowGallery = true
	a, err := json.Marshal(Build(d))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(Build(d))
	if string(a) != string(b) {
		t.Fatal("Build is not deterministic")
	}
}

func TestHelpers(t *testing.T) {
	if got := Bullets("one\r\n\n  \ntwo"); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("Bullets = %q", got)
	}
	if got := Initial("  иван"); got != "И" {
		t.Fatalf("Initial = %q", got)
	}
	if Initial("") != "" {
		t.Fatal("Initial of empty name")
	}
	for in, want := range map[string]string{
		"":                "",
		"site.io":         "https://site.io",
		"http://site.io":  "http://site.io",
		"https://site.io": "https://site.io",
	} {
		if got := WebsiteURL(in); got != want {
			t.Fatalf("WebsiteURL(%q) = %q", in, got)
		}
	}
	if !strings.HasPrefix(runningHeader("A", "B"), "A // ") {
		t.Fatal("running header format")
	}
}
