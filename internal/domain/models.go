// Package domain defines the persistence models for legislative documents,
// sponsors, actions, AI analyses, and ingestion runs. These types are mapped
// with GORM and form the core data layer of the bill tracker.
package domain

import "time"

// Bill type codes as used by Congress.gov (hr, s, hjres, sjres, ...),
// stored uppercased in BillID.

// Document represents one tracked piece of legislation. Its natural key is
// BillID, the synthetic identifier TYPE+NUMBER-CONGRESS (e.g. "HR123-118")
// built during ingestion.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - BillID: canonical bill identifier; unique, used for ingestion dedup.
//   - Title: bill title; non-blank and at most 1000 chars (enforced in rules).
//   - OfficialSummary: summary text published by Congress.gov, if any.
//   - IntroductionDate: date the bill was introduced (nil when unknown).
//   - CongressSession: congress number, expected in [1,200] when present.
//   - BillType: lowercase type code as received from the source (hr, s, ...).
//   - FullTextURL: link to the bill text on Congress.gov.
//   - Status: coarse lifecycle status string (e.g. "introduced").
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Document struct {
	ID               string     `json:"id"                gorm:"type:char(36);primaryKey"`
	BillID           string     `json:"bill_id"           gorm:"type:varchar(64);not null;uniqueIndex:ux_documents_bill_id"`
	Title            string     `json:"title"             gorm:"type:varchar(1000);not null"`
	OfficialSummary  string     `json:"official_summary"  gorm:"type:text"`
	IntroductionDate *time.Time `json:"introduction_date,omitempty" gorm:"index"`
	CongressSession  *int       `json:"congress_session,omitempty"`
	BillType         string     `json:"bill_type"         gorm:"type:varchar(16)"`
	FullTextURL      string     `json:"full_text_url"     gorm:"type:varchar(512)"`
	Status           string     `json:"status"            gorm:"type:varchar(64)"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// Sponsor represents a legislator. Its natural key is the Bioguide ID
// assigned by the Biographical Directory of the United States Congress.
type Sponsor struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	BioguideID string    `json:"bioguide_id" gorm:"type:varchar(16);not null;uniqueIndex:ux_sponsors_bioguide"`
	Name       string    `json:"name"        gorm:"type:varchar(255);not null"`
	Party      string    `json:"party"       gorm:"type:varchar(32)"`
	State      string    `json:"state"       gorm:"type:varchar(8)"`
	District   string    `json:"district"    gorm:"type:varchar(8)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for Sponsor.
func (Sponsor) TableName() string { return "sponsors" }

// DocumentSponsor links a document to one of its sponsors. At most one link
// per document should carry IsPrimarySponsor=true; this is not enforced by
// the schema, the rules layer picks the first flagged link.
type DocumentSponsor struct {
	ID               string     `json:"id"                 gorm:"type:char(36);primaryKey"`
	DocumentID       string     `json:"document_id"        gorm:"type:char(36);not null;index:idx_doc_sponsors"`
	SponsorID        string     `json:"sponsor_id"         gorm:"type:char(36);not null;index"`
	IsPrimarySponsor bool       `json:"is_primary_sponsor" gorm:"not null;default:false"`
	SponsorDate      *time.Time `json:"sponsor_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`

	// Sponsor is the linked legislator, preloaded by the repository.
	Sponsor Sponsor `json:"sponsor" gorm:"foreignKey:SponsorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for DocumentSponsor.
func (DocumentSponsor) TableName() string { return "document_sponsors" }

// DocumentAction is one recorded legislative action on a document, e.g.
// "Referred to the Committee on the Judiciary". Displayed newest first.
type DocumentAction struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	DocumentID string    `json:"document_id" gorm:"type:char(36);not null;index:idx_doc_actions,priority:1"`
	ActionDate time.Time `json:"action_date" gorm:"not null;index:idx_doc_actions,priority:2"`
	ActionType string    `json:"action_type" gorm:"type:varchar(64)"`
	ActionText string    `json:"action_text" gorm:"type:text;not null"`
	Chamber    string    `json:"chamber"     gorm:"type:varchar(16)"`
	ActionCode string    `json:"action_code" gorm:"type:varchar(32)"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for DocumentAction.
func (DocumentAction) TableName() string { return "document_actions" }

// AiAnalysis is one AI-generated impact analysis of a document. A document
// accumulates analyses over time; only the most recent one with IsValid=true
// is authoritative. At least one of the two effect texts must be non-blank
// (enforced in rules, not schema).
type AiAnalysis struct {
	ID                 string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	DocumentID         string    `json:"document_id"          gorm:"type:char(36);not null;index:idx_doc_analyses,priority:1"`
	GeneralEffectText  string    `json:"general_effect_text"  gorm:"type:text"`
	EconomicEffectText string    `json:"economic_effect_text" gorm:"type:text"`
	IndustryTags       []string  `json:"industry_tags"        gorm:"type:text;serializer:json"`
	IsValid            bool      `json:"is_valid"             gorm:"not null;default:true"`
	AnalysisDate       time.Time `json:"analysis_date"        gorm:"not null;index:idx_doc_analyses,priority:2"`
	ModelUsed          string    `json:"model_used"           gorm:"type:varchar(128)"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName returns the database table name for AiAnalysis.
func (AiAnalysis) TableName() string { return "ai_analyses" }

// Ingestion run lifecycle states.
const (
	RunStatusPending = "pending"
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// IngestionRun records one execution attempt of the recent-bills ingestion
// job. FromDate (the lookback cutoff) is the idempotency key: when a
// successful run already exists for the same FromDate, a new invocation is
// skipped without creating a row.
type IngestionRun struct {
	ID            string     `json:"id"             gorm:"type:char(36);primaryKey"`
	FromDate      time.Time  `json:"from_date"      gorm:"not null;index:idx_runs_from_date"`
	Status        string     `json:"status"         gorm:"type:varchar(16);not null;check:status IN ('pending','success','failure')"`
	StartedAt     time.Time  `json:"started_at"     gorm:"not null"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DocumentCount int        `json:"document_count" gorm:"not null;default:0"`
	ErrorMessage  string     `json:"error_message,omitempty" gorm:"type:text"`
}

// TableName returns the database table name for IngestionRun.
func (IngestionRun) TableName() string { return "ingestion_runs" }
