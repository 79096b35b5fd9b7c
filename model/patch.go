package model

// Patch is a partial update produced by the AI text-fill adapter. Nil fields
// are left untouched when the patch is applied.
type Patch struct {
	OfferSubtitle       *string       `json:"offerSubtitle,omitempty"`
	CurrentSituation    *string       `json:"currentSituation,omitempty"`
	ClientRequest       *string       `json:"clientRequest,omitempty"`
	SolutionTitle       *string       `json:"solutionTitle,omitempty"`
	SolutionDescription *string       `json:"solutionDescription,omitempty"`
	Metrics             []Metric      `json:"metrics,omitempty"`
	Cases               []CaseStudy   `json:"cases,omitempty"`
	Reviews             []Review      `json:"reviews,omitempty"`
	ProcessSteps        []Step        `json:"processSteps,omitempty"`
	Bonuses             *string       `json:"bonuses,omitempty"`
	CTAText             *string       `json:"ctaText,omitempty"`
	CompanyDescription  *string       `json:"companyDescription,omitempty"`
	CompanyStats        []CompanyStat `json:"companyStats,omitempty"`
}

// Clamp returns a copy of p with every list cut to its section cap.
func (p Patch) Clamp() Patch {
	p.Metrics = cloneSlice(Clamp(p.Metrics, MaxMetrics))
	p.Cases = cloneSlice(Clamp(p.Cases, MaxCases))
	p.Reviews = cloneSlice(Clamp(p.Reviews, MaxReviews))
	p.ProcessSteps = cloneSlice(Clamp(p.ProcessSteps, MaxProcessSteps))
	p.CompanyStats = cloneSlice(Clamp(p.CompanyStats, MaxCompanyStats))
	return p
}

// IsEmpty reports whether applying p would change nothing.
func (p Patch) IsEmpty() bool {
	return p.OfferSubtitle == nil && p.CurrentSituation == nil && p.ClientRequest == nil &&
		p.SolutionTitle == nil && p.SolutionDescription == nil && p.Bonuses == nil &&
		p.CTAText == nil && p.CompanyDescription == nil &&
		p.Metrics == nil && p.Cases == nil && p.Reviews == nil &&
		p.ProcessSteps == nil && p.CompanyStats == nil
}

// Apply returns a copy of d with the clamped patch merged in. d itself is
// never modified.
func (d Document) Apply(p Patch) Document {
	p = p.Clamp()
	c := d.Clone()
	setString(&c.OfferSubtitle, p.OfferSubtitle)
	setString(&c.CurrentSituation, p.CurrentSituation)
	setString(&c.ClientRequest, p.ClientRequest)
	setString(&c.SolutionTitle, p.SolutionTitle)
	setString(&c.SolutionDescription, p.SolutionDescription)
	setString(&c.Bonuses, p.Bonuses)
	setString(&c.CTAText, p.CTAText)
	setString(&c.CompanyDescription, p.CompanyDescription)
	if p.Metrics != nil {
		c.Metrics = p.Metrics
	}
	if p.Cases != nil {
		c.Cases = p.Cases
	}
	if p.Reviews != nil {
		c.Reviews = p.Reviews
	}
	if p.ProcessSteps != nil {
		c.ProcessSteps = p.ProcessSteps
	}
	if p.CompanyStats != nil {
		c.CompanyStats = p.CompanyStats
	}
	return c
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
