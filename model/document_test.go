package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestDefaultSeed(t *testing.T) {
	d := Default()
	if d.ThemeColor != DefaultThemeColor {
		t.Fatalf("theme color = %q", d.ThemeColor)
	}
	if d.ShowGallery {
		t.Fatal("gallery must be hidden in the seed")
	}
	if len(d.Metrics) != 2 || len(d.Cases) != 3 || len(d.Reviews) != 1 {
		t.Fatalf("unexpected seed list sizes: %d/%d/%d", len(d.Metrics), len(d.Cases), len(d.Reviews))
	}
	if len(d.CompanyStats) != MaxCompanyStats {
		t.Fatalf("expected %d company stats, got %d", MaxCompanyStats, len(d.CompanyStats))
	}

	// Every call returns fresh slices.
	a, b := Default(), Default()
	a.Metrics[0].Indicator = "changed"
	if b.Metrics[0].Indicator == "changed" {
		t.Fatal("Default shares list storage between calls")
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := Default()
	c := d.Clone()
	c.Tariffs[0].Features[0] = "changed"
	c.Cases[0].Title = "changed"
	c.GalleryImages = append(c.GalleryImages, "data:image/png;base64,AA==")

	if d.Tariffs[0].Features[0] == "changed" {
		t.Fatal("clone shares tariff features")
	}
	if d.Cases[0].Title == "changed" {
		t.Fatal("clone shares cases")
	}
	if len(d.GalleryImages) != 0 {
		t.Fatal("clone shares gallery")
	}
}

func TestClamped(t *testing.T) {
	d := Default()
	for i := 0; i < 5; i++ {
		d.Metrics = append(d.Metrics, Metric{Indicator: "extra"})
	}
	for i := 0; i < 10; i++ {
		d.ProcessSteps = append(d.ProcessSteps, Step{Title: "extra"})
	}
	c := d.Clamped()
	if len(c.Metrics) != MaxMetrics {
		t.Fatalf("metrics = %d, want %d", len(c.Metrics), MaxMetrics)
	}
	if c.Metrics[0].Indicator != d.Metrics[0].Indicator {
		t.Fatal("clamp must keep insertion order")
	}
	if len(c.ProcessSteps) != MaxProcessSteps {
		t.Fatalf("steps = %d, want %d", len(c.ProcessSteps), MaxProcessSteps)
	}
	if len(d.Metrics) != 7 {
		t.Fatal("Clamped modified its receiver")
	}
}

func TestAppendCappedAtCapIsNoop(t *testing.T) {
	list := []int{1, 2, 3}
	out, ok := AppendCapped(list, 3, 4)
	if ok {
		t.Fatal("expected append at cap to report false")
	}
	if len(out) != 3 {
		t.Fatalf("list changed: %v", out)
	}

	out, ok = AppendCapped([]int{1}, 3, 2, 3, 4, 5)
	if !ok || len(out) != 3 || out[2] != 3 {
		t.Fatalf("unexpected result %v %v", out, ok)
	}
}

func TestAppendItem(t *testing.T) {
	d := Default()
	d2, ok, err := d.AppendItem(ListMetrics, json.RawMessage(`{"indicator":"NPS","current":"20","future":"40","cause":"Support"}`))
	if err != nil || !ok {
		t.Fatalf("AppendItem: ok=%v err=%v", ok, err)
	}
	if len(d2.Metrics) != 3 || d2.Metrics[2].Indicator != "NPS" {
		t.Fatalf("unexpected metrics %+v", d2.Metrics)
	}
	if len(d.Metrics) != 2 {
		t.Fatal("AppendItem modified its receiver")
	}

	d3, ok, err := d2.AppendItem(ListMetrics, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("AppendItem at cap: %v", err)
	}
	if ok || len(d3.Metrics) != 3 {
		t.Fatal("append beyond the cap must be a no-op")
	}

	if _, _, err := d.AppendItem(ListReviews, json.RawMessage(`{"author": 5}`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, _, err := d.AppendItem("bogus", nil); err == nil {
		t.Fatal("expected unknown list error")
	}
}

func TestRemoveItem(t *testing.T) {
	d := Default()
	d2, ok := d.RemoveItem(ListCases, 1)
	if !ok || len(d2.Cases) != 2 || d2.Cases[1].Title != "Завод В" {
		t.Fatalf("unexpected cases %+v", d2.Cases)
	}
	if _, ok := d.RemoveItem(ListCases, 7); ok {
		t.Fatal("out of range removal must report false")
	}
}

func TestAddGalleryImagesTruncates(t *testing.T) {
	d := Default()
	refs := make([]ImageRef, 8)
	for i := range refs {
		refs[i] = DataURL("image/png", []byte{byte(i)})
	}
	d2, ok := d.AddGalleryImages(refs...)
	if !ok || len(d2.GalleryImages) != MaxGalleryImages {
		t.Fatalf("gallery = %d", len(d2.GalleryImages))
	}
	if _, ok := d2.AddGalleryImages(refs[0]); ok {
		t.Fatal("full gallery must refuse uploads")
	}
}

func TestApplyPatchClampsAndKeepsReceiver(t *testing.T) {
	d := Default()
	subtitle := "New subtitle"
	p := Patch{
		OfferSubtitle: &subtitle,
		Metrics:       make([]Metric, 5),
		Cases:         make([]CaseStudy, 4),
		ProcessSteps:  make([]Step, 7),
		CompanyStats:  make([]CompanyStat, 6),
	}
	out := d.Apply(p)

	if out.OfferSubtitle != subtitle {
		t.Fatalf("subtitle = %q", out.OfferSubtitle)
	}
	if len(out.Metrics) != 3 || len(out.Cases) != 3 || len(out.CompanyStats) != 4 {
		t.Fatalf("clamp failed: %d/%d/%d", len(out.Metrics), len(out.Cases), len(out.CompanyStats))
	}
	if len(out.ProcessSteps) != 7 {
		t.Fatalf("steps = %d, want 7", len(out.ProcessSteps))
	}
	if out.SolutionTitle != d.SolutionTitle {
		t.Fatal("nil fields must be left untouched")
	}
	if d.OfferSubtitle == subtitle || len(d.Metrics) != 2 {
		t.Fatal("Apply modified its receiver")
	}
	if !(Patch{}).IsEmpty() || p.IsEmpty() {
		t.Fatal("IsEmpty mismatch")
	}
}

func TestEncodeImageRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	src := buf.Bytes()

	ref, err := EncodeImage(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if !strings.HasPrefix(string(ref), "data:image/png;base64,") {
		t.Fatalf("unexpected ref prefix %q", string(ref)[:30])
	}

	mime, payload, err := ref.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("mime = %q", mime)
	}
	if !bytes.Equal(payload, src) {
		t.Fatal("payload differs from the uploaded file")
	}
	decoded, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v", decoded.Bounds())
	}
}

func TestEncodeImageRejectsNonImages(t *testing.T) {
	_, err := EncodeImage(strings.NewReader("definitely not an image"))
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestImageRefBytes(t *testing.T) {
	if _, _, err := ImageRef("https://example.com/a.png").Bytes(); !errors.Is(err, ErrNotDataURL) {
		t.Fatalf("expected ErrNotDataURL, got %v", err)
	}
	if _, _, err := ImageRef("data:image/png;base64").Bytes(); !errors.Is(err, ErrBadDataURL) {
		t.Fatalf("expected ErrBadDataURL, got %v", err)
	}
	mime, payload, err := ImageRef("data:text/plain,a%20b").Bytes()
	if err != nil || mime != "text/plain" || string(payload) != "a b" {
		t.Fatalf("percent data URL: %q %q %v", mime, payload, err)
	}
	if !ImageRef("https://x").IsRemote() || ImageRef("data:x").IsRemote() {
		t.Fatal("IsRemote mismatch")
	}
}

func TestSlots(t *testing.T) {
	s, err := ParseSlot("review:2")
	if err != nil || s != SlotReview(2) || s.String() != "review:2" {
		t.Fatalf("ParseSlot review: %v %v", s, err)
	}
	for _, bad := range []string{"", "cover", "review:x", "main:1"} {
		if _, err := ParseSlot(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}

	d := Default()
	ref := DataURL("image/png", []byte{1})
	d2, ok := d.WithImage(SlotReview(0), ref)
	if !ok || d2.Reviews[0].ImageURL != ref {
		t.Fatal("review avatar not set")
	}
	if d.Reviews[0].ImageURL != "" {
		t.Fatal("WithImage modified its receiver")
	}
	if _, ok := d.WithImage(SlotReview(3), ref); ok {
		t.Fatal("out-of-range review slot must fail")
	}
}

func TestDecodeOntoSeed(t *testing.T) {
	d, err := Decode(strings.NewReader(`{"companyName":"Acme","showGallery":true}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.CompanyName != "Acme" || !d.ShowGallery {
		t.Fatalf("fields not decoded: %+v", d)
	}
	if d.OfferTitle != Default().OfferTitle {
		t.Fatal("missing fields must keep seed values")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"companyName": "Acme"`) {
		t.Fatalf("unexpected encoding: %s", buf.String())
	}
}

func TestDecodeRoundTripKeepsClearedFields(t *testing.T) {
	d := Default()
	d.MainImage = ""
	d.CompanyFooterImage = ""
	d.Metrics = []Metric{{Indicator: "Конверсия"}}
	d.Reviews = nil

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.MainImage.IsZero() || !got.CompanyFooterImage.IsZero() {
		t.Fatalf("cleared image slots came back: %q, %q", got.MainImage, got.CompanyFooterImage)
	}
	if len(got.Metrics) != 1 || got.Metrics[0] != (Metric{Indicator: "Конверсия"}) {
		t.Fatalf("metrics = %+v", got.Metrics)
	}
	if len(got.Reviews) != 0 {
		t.Fatalf("reviews = %+v", got.Reviews)
	}
}

func TestMergeReplacesPresentLists(t *testing.T) {
	base := Default()
	got, err := Merge(base, []byte(`{"cases":[{"title":"Новый кейс"}],"offerTitle":"КП"}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(got.Cases) != 1 || got.Cases[0] != (CaseStudy{Title: "Новый кейс"}) {
		t.Fatalf("cases = %+v", got.Cases)
	}
	if got.OfferTitle != "КП" {
		t.Fatalf("offer title = %q", got.OfferTitle)
	}
	if len(got.Metrics) != len(base.Metrics) || got.MainImage != base.MainImage {
		t.Fatal("absent fields must keep their values")
	}
	if len(base.Cases) != MaxCases {
		t.Fatal("Merge must not modify its input")
	}
	if _, err := Merge(base, []byte(`[1,2]`)); err == nil {
		t.Fatal("expected error for a non-object")
	}
}
