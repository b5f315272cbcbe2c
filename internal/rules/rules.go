// Package rules holds the pure domain logic for legislative documents:
// validation, staleness, progress scoring, and primary-sponsor selection.
// Nothing here performs I/O; every function is a deterministic computation
// over already-fetched entities, which keeps the rules trivially testable
// and safe to call from any layer.
package rules

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexatlas/bill-tracker-backend/internal/domain"
)

const (
	// MaxTitleLength caps document titles.
	MaxTitleLength = 1000
	// MaxEffectTextLength caps each AI effect text.
	MaxEffectTextLength = 10000
	// MaxIndustryTags caps the number of tags per analysis.
	MaxIndustryTags = 10
	// StaleAfterDays is the inactivity window after which a document is
	// considered stale.
	StaleAfterDays = 30
)

// progressWeights maps action-text keywords to progress scores. The score of
// a document is the maximum weight among matched keywords, not a sum.
var progressWeights = []struct {
	keyword string
	weight  float64
}{
	{"introduced", 0.1},
	{"referred", 0.2},
	{"markup", 0.3},
	{"reported", 0.4},
	{"passed", 0.7},
	{"signed", 1.0},
	{"enacted", 1.0},
}

// ValidateDocument checks a document against the domain invariants and
// returns one human-readable message per violated rule. An empty slice
// means the document is valid.
func ValidateDocument(doc *domain.Document) []string {
	var violations []string
	if strings.TrimSpace(doc.BillID) == "" {
		violations = append(violations, "bill id must not be blank")
	}
	if strings.TrimSpace(doc.Title) == "" {
		violations = append(violations, "title must not be blank")
	}
	// Length limits count characters, not bytes.
	if utf8.RuneCountInString(doc.Title) > MaxTitleLength {
		violations = append(violations, fmt.Sprintf("title exceeds %d characters", MaxTitleLength))
	}
	if doc.CongressSession != nil && (*doc.CongressSession < 1 || *doc.CongressSession > 200) {
		violations = append(violations, "congress session must be between 1 and 200")
	}
	return violations
}

// ValidateAnalysis checks an AI analysis. At least one effect text must be
// non-blank, neither may exceed MaxEffectTextLength, and at most
// MaxIndustryTags tags are allowed.
func ValidateAnalysis(a *domain.AiAnalysis) []string {
	var violations []string
	if strings.TrimSpace(a.GeneralEffectText) == "" && strings.TrimSpace(a.EconomicEffectText) == "" {
		violations = append(violations, "at least one effect text must be provided")
	}
	if utf8.RuneCountInString(a.GeneralEffectText) > MaxEffectTextLength {
		violations = append(violations, fmt.Sprintf("general effect text exceeds %d characters", MaxEffectTextLength))
	}
	if utf8.RuneCountInString(a.EconomicEffectText) > MaxEffectTextLength {
		violations = append(violations, fmt.Sprintf("economic effect text exceeds %d characters", MaxEffectTextLength))
	}
	if len(a.IndustryTags) > MaxIndustryTags {
		violations = append(violations, fmt.Sprintf("at most %d industry tags are allowed", MaxIndustryTags))
	}
	return violations
}

// LatestValidAnalysis returns the valid analysis with the most recent
// AnalysisDate, or nil when none exists.
func LatestValidAnalysis(analyses []domain.AiAnalysis) *domain.AiAnalysis {
	var latest *domain.AiAnalysis
	for i := range analyses {
		a := &analyses[i]
		if !a.IsValid {
			continue
		}
		if latest == nil || a.AnalysisDate.After(latest.AnalysisDate) {
			latest = a
		}
	}
	return latest
}

// NeedsAnalysis reports whether doc lacks an authoritative analysis: no
// valid analysis exists, or the document was updated strictly after the
// latest valid analysis was generated. Equal timestamps count as fresh.
func NeedsAnalysis(doc *domain.Document, analyses []domain.AiAnalysis) bool {
	latest := LatestValidAnalysis(analyses)
	if latest == nil {
		return true
	}
	return doc.UpdatedAt.After(latest.AnalysisDate)
}

// CalculateProgress scores how far a document has progressed through the
// legislative process by scanning action texts case-insensitively for known
// keywords. The result is the maximum matched weight in [0,1]; 0.0 when
// there are no actions or no keyword matches.
func CalculateProgress(actions []domain.DocumentAction) float64 {
	best := 0.0
	for i := range actions {
		text := strings.ToLower(actions[i].ActionText)
		for _, pw := range progressWeights {
			if pw.weight > best && strings.Contains(text, pw.keyword) {
				best = pw.weight
			}
		}
	}
	return best
}

// FindPrimarySponsor returns the first sponsor link flagged as primary, or
// nil when the document has no primary sponsor.
func FindPrimarySponsor(sponsors []domain.DocumentSponsor) *domain.DocumentSponsor {
	for i := range sponsors {
		if sponsors[i].IsPrimarySponsor {
			return &sponsors[i]
		}
	}
	return nil
}

// IsStale reports whether a document has gone quiet: its UpdatedAt is more
// than StaleAfterDays ago AND no action falls within the last StaleAfterDays
// days. A document updated within the window is never stale.
func IsStale(doc *domain.Document, actions []domain.DocumentAction, now time.Time) bool {
	cutoff := now.AddDate(0, 0, -StaleAfterDays)
	if !doc.UpdatedAt.Before(cutoff) {
		return false
	}
	for i := range actions {
		if actions[i].ActionDate.After(cutoff) {
			return false
		}
	}
	return true
}
