package model

import (
	"encoding/json"
	"fmt"
)

// ListKind names an item list of a Document.
type ListKind string

const (
	ListMetrics      ListKind = "metrics"
	ListCases        ListKind = "cases"
	ListReviews      ListKind = "reviews"
	ListProcessSteps ListKind = "processSteps"
	ListTariffs      ListKind = "tariffs"
	ListGallery      ListKind = "galleryImages"
	ListCompanyStats ListKind = "companyStats"
)

// ListKinds holds every list of a Document in field order.
var ListKinds = []ListKind{
	ListMetrics, ListCases, ListReviews, ListProcessSteps,
	ListTariffs, ListGallery, ListCompanyStats,
}

// Cap returns the maximum number of items of the list.
func (k ListKind) Cap() int {
	switch k {
	case ListMetrics:
		return MaxMetrics
	case ListCases:
		return MaxCases
	case ListReviews:
		return MaxReviews
	case ListProcessSteps:
		return MaxProcessSteps
	case ListTariffs:
		return MaxTariffs
	case ListGallery:
		return MaxGalleryImages
	case ListCompanyStats:
		return MaxCompanyStats
	}
	return 0
}

// Len returns the current length of the list in d.
func (k ListKind) Len(d Document) int {
	switch k {
	case ListMetrics:
		return len(d.Metrics)
	case ListCases:
		return len(d.Cases)
	case ListReviews:
		return len(d.Reviews)
	case ListProcessSteps:
		return len(d.ProcessSteps)
	case ListTariffs:
		return len(d.Tariffs)
	case ListGallery:
		return len(d.GalleryImages)
	case ListCompanyStats:
		return len(d.CompanyStats)
	}
	return 0
}

// AppendCapped appends items to list as long as it stays within max. It
// reports false, leaving list unchanged, when the list is already full.
// Items that would overflow the cap are dropped.
func AppendCapped[T any](list []T, max int, items ...T) ([]T, bool) {
	if len(list) >= max {
		return list, false
	}
	room := max - len(list)
	if len(items) > room {
		items = items[:room]
	}
	out := append(cloneSlice(list), items...)
	return out, true
}

// RemoveAt returns a copy of list without the i-th item. An out-of-range
// index returns list unchanged and false.
func RemoveAt[T any](list []T, i int) ([]T, bool) {
	if i < 0 || i >= len(list) {
		return list, false
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), true
}

// AppendItem returns a copy of d with the JSON-encoded item appended to the
// list. A full list is not an error: the document comes back unchanged with
// ok=false.
func (d Document) AppendItem(kind ListKind, raw json.RawMessage) (out Document, ok bool, err error) {
	c := d.Clone()
	max := kind.Cap()
	switch kind {
	case ListMetrics:
		c.Metrics, ok, err = appendDecoded(c.Metrics, max, raw)
	case ListCases:
		c.Cases, ok, err = appendDecoded(c.Cases, max, raw)
	case ListReviews:
		c.Reviews, ok, err = appendDecoded(c.Reviews, max, raw)
	case ListProcessSteps:
		c.ProcessSteps, ok, err = appendDecoded(c.ProcessSteps, max, raw)
	case ListTariffs:
		c.Tariffs, ok, err = appendDecoded(c.Tariffs, max, raw)
	case ListGallery:
		c.GalleryImages, ok, err = appendDecoded(c.GalleryImages, max, raw)
	case ListCompanyStats:
		c.CompanyStats, ok, err = appendDecoded(c.CompanyStats, max, raw)
	default:
		return d, false, fmt.Errorf("model: unknown list %q", kind)
	}
	if err != nil || !ok {
		return d, false, err
	}
	return c, true, nil
}

// RemoveItem returns a copy of d without the i-th item of the list.
func (d Document) RemoveItem(kind ListKind, i int) (Document, bool) {
	c := d.Clone()
	var ok bool
	switch kind {
	case ListMetrics:
		c.Metrics, ok = RemoveAt(c.Metrics, i)
	case ListCases:
		c.Cases, ok = RemoveAt(c.Cases, i)
	case ListReviews:
		c.Reviews, ok = RemoveAt(c.Reviews, i)
	case ListProcessSteps:
		c.ProcessSteps, ok = RemoveAt(c.ProcessSteps, i)
	case ListTariffs:
		c.Tariffs, ok = RemoveAt(c.Tariffs, i)
	case ListGallery:
		c.GalleryImages, ok = RemoveAt(c.GalleryImages, i)
	case ListCompanyStats:
		c.CompanyStats, ok = RemoveAt(c.CompanyStats, i)
	}
	if !ok {
		return d, false
	}
	return c, true
}

// AddGalleryImages appends uploaded images, keeping at most
// MaxGalleryImages in total.
func (d Document) AddGalleryImages(refs ...ImageRef) (Document, bool) {
	c := d.Clone()
	var ok bool
	c.GalleryImages, ok = AppendCapped(c.GalleryImages, MaxGalleryImages, refs...)
	if !ok {
		return d, false
	}
	return c, true
}

func appendDecoded[T any](list []T, max int, raw json.RawMessage) ([]T, bool, error) {
	if len(list) >= max {
		return list, false, nil
	}
	var item T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &item); err != nil {
			return list, false, fmt.Errorf("model: decoding list item: %w", err)
		}
	}
	out, ok := AppendCapped(list, max, item)
	return out, ok, nil
}
