package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/lexatlas/bill-tracker-backend/internal/domain"
)

func intp(v int) *int { return &v }

func TestValidateDocument(t *testing.T) {
	valid := &domain.Document{BillID: "HR123-118", Title: "A bill", CongressSession: intp(118)}
	if v := ValidateDocument(valid); len(v) != 0 {
		t.Fatalf("valid document reported violations: %v", v)
	}

	cases := []struct {
		name string
		doc  domain.Document
		want int
	}{
		{"blank bill id", domain.Document{Title: "t"}, 1},
		{"blank title", domain.Document{BillID: "HR1-118"}, 1},
		{"title too long", domain.Document{BillID: "HR1-118", Title: strings.Repeat("x", MaxTitleLength+1)}, 1},
		{"multibyte title at limit", domain.Document{BillID: "HR1-118", Title: strings.Repeat("é", MaxTitleLength)}, 0},
		{"multibyte title over limit", domain.Document{BillID: "HR1-118", Title: strings.Repeat("é", MaxTitleLength+1)}, 1},
		{"session too low", domain.Document{BillID: "HR1-118", Title: "t", CongressSession: intp(0)}, 1},
		{"session too high", domain.Document{BillID: "HR1-118", Title: "t", CongressSession: intp(201)}, 1},
		{"everything wrong", domain.Document{CongressSession: intp(999)}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if v := ValidateDocument(&tc.doc); len(v) != tc.want {
				t.Fatalf("violations = %v; want %d", v, tc.want)
			}
		})
	}
}

func TestValidateAnalysis(t *testing.T) {
	ok := &domain.AiAnalysis{GeneralEffectText: "broad impact"}
	if v := ValidateAnalysis(ok); len(v) != 0 {
		t.Fatalf("valid analysis reported violations: %v", v)
	}

	blank := &domain.AiAnalysis{GeneralEffectText: "  ", EconomicEffectText: ""}
	if v := ValidateAnalysis(blank); len(v) != 1 {
		t.Fatalf("blank texts: violations = %v; want 1", v)
	}

	long := &domain.AiAnalysis{GeneralEffectText: strings.Repeat("a", MaxEffectTextLength+1)}
	if v := ValidateAnalysis(long); len(v) != 1 {
		t.Fatalf("oversized text: violations = %v; want 1", v)
	}

	// Character limit, not byte limit.
	wide := &domain.AiAnalysis{GeneralEffectText: strings.Repeat("é", MaxEffectTextLength)}
	if v := ValidateAnalysis(wide); len(v) != 0 {
		t.Fatalf("multibyte text at the limit: violations = %v; want none", v)
	}

	tags := make([]string, MaxIndustryTags+1)
	for i := range tags {
		tags[i] = "tag"
	}
	tagged := &domain.AiAnalysis{GeneralEffectText: "x", IndustryTags: tags}
	if v := ValidateAnalysis(tagged); len(v) != 1 {
		t.Fatalf("too many tags: violations = %v; want 1", v)
	}
}

func TestNeedsAnalysis(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &domain.Document{UpdatedAt: now}

	if !NeedsAnalysis(doc, nil) {
		t.Fatalf("empty analysis list must need analysis")
	}
	if !NeedsAnalysis(doc, []domain.AiAnalysis{{IsValid: false, AnalysisDate: now.Add(time.Hour)}}) {
		t.Fatalf("only invalid analyses must need analysis")
	}
	// Latest valid analysis generated after the update: fresh.
	if NeedsAnalysis(doc, []domain.AiAnalysis{{IsValid: true, AnalysisDate: now.Add(time.Hour)}}) {
		t.Fatalf("newer valid analysis must not need analysis")
	}
	// Equal timestamps tie-break to fresh (strict "after").
	if NeedsAnalysis(doc, []domain.AiAnalysis{{IsValid: true, AnalysisDate: now}}) {
		t.Fatalf("equal timestamps must not need analysis")
	}
	// Document updated after the latest valid analysis: stale.
	if !NeedsAnalysis(doc, []domain.AiAnalysis{{IsValid: true, AnalysisDate: now.Add(-time.Hour)}}) {
		t.Fatalf("document updated after analysis must need analysis")
	}
	// The invalid-but-newest analysis must not mask a stale valid one.
	if !NeedsAnalysis(doc, []domain.AiAnalysis{
		{IsValid: true, AnalysisDate: now.Add(-2 * time.Hour)},
		{IsValid: false, AnalysisDate: now.Add(time.Hour)},
	}) {
		t.Fatalf("invalid newest analysis must not count as authoritative")
	}
}

func TestCalculateProgress(t *testing.T) {
	if got := CalculateProgress(nil); got != 0.0 {
		t.Fatalf("no actions: progress = %v; want 0.0", got)
	}
	if got := CalculateProgress([]domain.DocumentAction{{ActionText: "Motion to recommit"}}); got != 0.0 {
		t.Fatalf("no keyword: progress = %v; want 0.0", got)
	}

	actions := []domain.DocumentAction{
		{ActionText: "Introduced in House"},
		{ActionText: "Referred to committee"},
		{ActionText: "PASSED the Senate"},
	}
	if got := CalculateProgress(actions); got != 0.7 {
		t.Fatalf("progress = %v; want max weight 0.7, not a sum", got)
	}

	// "enacted" dominates even when lower-weight keywords also match.
	actions = append(actions, domain.DocumentAction{ActionText: "Became law; enacted as Public Law 118-42"})
	if got := CalculateProgress(actions); got != 1.0 {
		t.Fatalf("progress = %v; want 1.0", got)
	}
}

func TestFindPrimarySponsor(t *testing.T) {
	if FindPrimarySponsor(nil) != nil {
		t.Fatalf("empty list must yield nil")
	}
	links := []domain.DocumentSponsor{
		{ID: "l1"},
		{ID: "l2", IsPrimarySponsor: true},
		{ID: "l3", IsPrimarySponsor: true}, // dirty data: first match wins
	}
	got := FindPrimarySponsor(links)
	if got == nil || got.ID != "l2" {
		t.Fatalf("primary = %+v; want l2", got)
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	fresh := &domain.Document{UpdatedAt: now.AddDate(0, 0, -10)}
	if IsStale(fresh, nil, now) {
		t.Fatalf("document updated 10 days ago must not be stale")
	}

	old := &domain.Document{UpdatedAt: now.AddDate(0, 0, -45)}
	if !IsStale(old, nil, now) {
		t.Fatalf("45-day-old document with no actions must be stale")
	}

	recentAction := []domain.DocumentAction{{ActionDate: now.AddDate(0, 0, -5)}}
	if IsStale(old, recentAction, now) {
		t.Fatalf("recent action must keep the document fresh")
	}

	oldAction := []domain.DocumentAction{{ActionDate: now.AddDate(0, 0, -60)}}
	if !IsStale(old, oldAction, now) {
		t.Fatalf("only old actions must leave the document stale")
	}
}

func TestLatestValidAnalysis(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	analyses := []domain.AiAnalysis{
		{ID: "a1", IsValid: true, AnalysisDate: base},
		{ID: "a2", IsValid: false, AnalysisDate: base.Add(48 * time.Hour)},
		{ID: "a3", IsValid: true, AnalysisDate: base.Add(24 * time.Hour)},
	}
	got := LatestValidAnalysis(analyses)
	if got == nil || got.ID != "a3" {
		t.Fatalf("latest valid = %+v; want a3", got)
	}
	if LatestValidAnalysis(nil) != nil {
		t.Fatalf("nil input must yield nil")
	}
}
