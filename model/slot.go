package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot names a single-image field of a Document.
type Slot struct {
	Name  string // main, process, logo, footer, review
	Index int    // review index
}

// Single-image slots.
var (
	SlotMain    = Slot{Name: "main"}
	SlotProcess = Slot{Name: "process"}
	SlotLogo    = Slot{Name: "logo"}
	SlotFooter  = Slot{Name: "footer"}
)

// SlotReview names the avatar of the i-th review.
func SlotReview(i int) Slot { return Slot{Name: "review", Index: i} }

func (s Slot) String() string {
	if s.Name == "review" {
		return "review:" + strconv.Itoa(s.Index)
	}
	return s.Name
}

// ParseSlot parses "main", "process", "logo", "footer" or "review:<n>".
func ParseSlot(v string) (Slot, error) {
	name, idx, hasIdx := strings.Cut(v, ":")
	switch name {
	case "main", "process", "logo", "footer":
		if hasIdx {
			return Slot{}, fmt.Errorf("model: slot %q takes no index", name)
		}
		return Slot{Name: name}, nil
	case "review":
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return Slot{}, fmt.Errorf("model: invalid review slot %q", v)
		}
		return SlotReview(n), nil
	}
	return Slot{}, fmt.Errorf("model: unknown image slot %q", v)
}

// WithImage returns a copy of d with ref stored in slot. An out-of-range
// review index leaves the document unchanged and reports false.
func (d Document) WithImage(slot Slot, ref ImageRef) (Document, bool) {
	c := d.Clone()
	switch slot.Name {
	case "main":
		c.MainImage = ref
	case "process":
		c.ProcessImage = ref
	case "logo":
		c.CompanyLogo = ref
	case "footer":
		c.CompanyFooterImage = ref
	case "review":
		if slot.Index < 0 || slot.Index >= len(c.Reviews) {
			return d, false
		}
		c.Reviews[slot.Index].ImageURL = ref
	default:
		return d, false
	}
	return c, true
}
