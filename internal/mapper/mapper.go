// Package mapper converts persisted entities plus their pre-fetched related
// collections into the external-facing summary and detail read models, and
// computes the derived party-breakdown analytics.
//
// Every function here is pure: callers fetch sponsors, actions, and analyses
// explicitly and hand them in, so mapping never triggers further data access
// (no hidden N+1 queries) and stays trivially testable.
package mapper

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lexatlas/bill-tracker-backend/internal/domain"
	"github.com/lexatlas/bill-tracker-backend/internal/rules"
)

// PartyBreakdown is the derived (never persisted) sponsor composition of a
// document. Percentages are always within [0,100] and
// DemocraticPercentage+RepublicanPercentage never exceeds 100.
type PartyBreakdown struct {
	DemocraticCount      int     `json:"democratic_count"`
	RepublicanCount      int     `json:"republican_count"`
	IndependentCount     int     `json:"independent_count"`
	OtherCount           int     `json:"other_count"`
	TotalSponsors        int     `json:"total_sponsors"`
	DemocraticPercentage float64 `json:"democratic_percentage"`
	RepublicanPercentage float64 `json:"republican_percentage"`
}

// DocumentSummary is the lightweight row shape used by list views.
type DocumentSummary struct {
	ID               string         `json:"id"`
	BillID           string         `json:"bill_id"`
	Title            string         `json:"title"`
	Status           string         `json:"status"`
	IntroductionDate *time.Time     `json:"introduction_date,omitempty"`
	CongressSession  *int           `json:"congress_session,omitempty"`
	IndustryTags     []string       `json:"industry_tags"`
	PartyBreakdown   PartyBreakdown `json:"party_breakdown"`
	HasValidAnalysis bool           `json:"has_valid_analysis"`
}

// SponsorView is one sponsor link as exposed on a document detail.
type SponsorView struct {
	BioguideID  string     `json:"bioguide_id"`
	Name        string     `json:"name"`
	Party       string     `json:"party"`
	State       string     `json:"state"`
	District    string     `json:"district,omitempty"`
	IsPrimary   bool       `json:"is_primary"`
	SponsorDate *time.Time `json:"sponsor_date,omitempty"`
}

// ActionView is one legislative action as exposed on a document detail.
type ActionView struct {
	ActionDate time.Time `json:"action_date"`
	ActionType string    `json:"action_type,omitempty"`
	ActionText string    `json:"action_text"`
	Chamber    string    `json:"chamber,omitempty"`
	ActionCode string    `json:"action_code,omitempty"`
}

// AnalysisView is the authoritative AI analysis as exposed on a document
// detail. Only the most recent valid analysis is ever mapped.
type AnalysisView struct {
	GeneralEffectText  string    `json:"general_effect_text,omitempty"`
	EconomicEffectText string    `json:"economic_effect_text,omitempty"`
	IndustryTags       []string  `json:"industry_tags"`
	AnalysisDate       time.Time `json:"analysis_date"`
	ModelUsed          string    `json:"model_used,omitempty"`
}

// DocumentDetail is the full read model for a single document.
type DocumentDetail struct {
	ID               string         `json:"id"`
	BillID           string         `json:"bill_id"`
	Title            string         `json:"title"`
	OfficialSummary  string         `json:"official_summary,omitempty"`
	Status           string         `json:"status"`
	IntroductionDate *time.Time     `json:"introduction_date,omitempty"`
	CongressSession  *int           `json:"congress_session,omitempty"`
	BillType         string         `json:"bill_type"`
	FullTextURL      string         `json:"full_text_url,omitempty"`
	Sponsors         []SponsorView  `json:"sponsors"`
	Actions          []ActionView   `json:"actions"`
	Analysis         *AnalysisView  `json:"analysis,omitempty"`
	PartyBreakdown   PartyBreakdown `json:"party_breakdown"`
	ProgressScore    float64        `json:"progress_score"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// chamberCaser renders chamber codes for display ("house" -> "House").
var chamberCaser = cases.Title(language.AmericanEnglish)

// ToSummary builds a list-view row from a document and its pre-fetched
// aggregates. industryTags come from the document's authoritative analysis;
// nil is rendered as an empty list.
func ToSummary(doc *domain.Document, industryTags []string, breakdown PartyBreakdown, hasValidAnalysis bool) DocumentSummary {
	if industryTags == nil {
		industryTags = []string{}
	}
	return DocumentSummary{
		ID:               doc.ID,
		BillID:           doc.BillID,
		Title:            doc.Title,
		Status:           doc.Status,
		IntroductionDate: doc.IntroductionDate,
		CongressSession:  doc.CongressSession,
		IndustryTags:     industryTags,
		PartyBreakdown:   breakdown,
		HasValidAnalysis: hasValidAnalysis,
	}
}

// ToDetail builds the full document view. actions must already be ordered by
// date descending (the repository query guarantees it); analysis is the
// single most recent valid analysis or nil.
func ToDetail(doc *domain.Document, sponsors []domain.DocumentSponsor, actions []domain.DocumentAction, analysis *domain.AiAnalysis, breakdown PartyBreakdown) DocumentDetail {
	sv := make([]SponsorView, 0, len(sponsors))
	for i := range sponsors {
		link := &sponsors[i]
		sv = append(sv, SponsorView{
			BioguideID:  link.Sponsor.BioguideID,
			Name:        link.Sponsor.Name,
			Party:       link.Sponsor.Party,
			State:       link.Sponsor.State,
			District:    link.Sponsor.District,
			IsPrimary:   link.IsPrimarySponsor,
			SponsorDate: link.SponsorDate,
		})
	}

	av := make([]ActionView, 0, len(actions))
	for i := range actions {
		a := &actions[i]
		av = append(av, ActionView{
			ActionDate: a.ActionDate,
			ActionType: a.ActionType,
			ActionText: a.ActionText,
			Chamber:    chamberCaser.String(a.Chamber),
			ActionCode: a.ActionCode,
		})
	}

	var an *AnalysisView
	if analysis != nil {
		tags := analysis.IndustryTags
		if tags == nil {
			tags = []string{}
		}
		an = &AnalysisView{
			GeneralEffectText:  analysis.GeneralEffectText,
			EconomicEffectText: analysis.EconomicEffectText,
			IndustryTags:       tags,
			AnalysisDate:       analysis.AnalysisDate,
			ModelUsed:          analysis.ModelUsed,
		}
	}

	return DocumentDetail{
		ID:               doc.ID,
		BillID:           doc.BillID,
		Title:            doc.Title,
		OfficialSummary:  doc.OfficialSummary,
		Status:           doc.Status,
		IntroductionDate: doc.IntroductionDate,
		CongressSession:  doc.CongressSession,
		BillType:         doc.BillType,
		FullTextURL:      doc.FullTextURL,
		Sponsors:         sv,
		Actions:          av,
		Analysis:         an,
		PartyBreakdown:   breakdown,
		ProgressScore:    rules.CalculateProgress(actions),
		UpdatedAt:        doc.UpdatedAt,
	}
}

// CalculatePartyBreakdown counts sponsors per party and derives the two
// percentages. Party matching is case-insensitive and accepts both full
// names and single-letter codes ("Democratic"/"D", "Republican"/"R",
// "Independent"/"I"); everything else lands in OtherCount.
//
// Percentages are clamped to [0,100]. If floating-point accumulation ever
// drove their sum above 100, both are scaled down proportionally so the sum
// is exactly 100. An empty sponsor list yields all zeros, never a division
// by zero.
func CalculatePartyBreakdown(sponsors []domain.DocumentSponsor) PartyBreakdown {
	b := PartyBreakdown{TotalSponsors: len(sponsors)}
	if b.TotalSponsors == 0 {
		return b
	}

	for i := range sponsors {
		switch strings.ToLower(strings.TrimSpace(sponsors[i].Sponsor.Party)) {
		case "democratic", "d":
			b.DemocraticCount++
		case "republican", "r":
			b.RepublicanCount++
		case "independent", "i":
			b.IndependentCount++
		}
	}
	b.OtherCount = b.TotalSponsors - (b.DemocraticCount + b.RepublicanCount + b.IndependentCount)
	if b.OtherCount < 0 {
		b.OtherCount = 0
	}

	total := float64(b.TotalSponsors)
	b.DemocraticPercentage = clampPercentage(float64(b.DemocraticCount) / total * 100)
	b.RepublicanPercentage = clampPercentage(float64(b.RepublicanCount) / total * 100)

	// Correct counts cannot sum past 100; rounding drift can.
	if sum := b.DemocraticPercentage + b.RepublicanPercentage; sum > 100 {
		scale := 100 / sum
		b.DemocraticPercentage *= scale
		b.RepublicanPercentage *= scale
	}
	return b
}

// clampPercentage bounds v to [0,100].
func clampPercentage(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
