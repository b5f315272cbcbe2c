// Package services – DocumentService
//
// This file implements DocumentService, the query/orchestration layer over
// the document repository and the AI-analysis port. It sanitizes pagination
// at the service boundary, composes per-document aggregates (sponsors,
// actions, analyses) into summary and detail read models, computes the
// analytics summary, and triggers best-effort analysis generation.
//
// Resilience policy: a failed child-collection fetch (sponsors, actions,
// analyses of one document) degrades to an empty list and is logged; it
// never propagates as a page failure. Analysis generation failures during
// AnalyzeDocument are likewise swallowed.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// document identifiers and pagination parameters where applicable.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lexatlas/bill-tracker-backend/internal/domain"
	"github.com/lexatlas/bill-tracker-backend/internal/mapper"
	"github.com/lexatlas/bill-tracker-backend/internal/pagination"
	"github.com/lexatlas/bill-tracker-backend/internal/repo"
	"github.com/lexatlas/bill-tracker-backend/internal/rules"
)

const (
	// DefaultPageSize replaces non-positive requested page sizes.
	DefaultPageSize = 20
	// MaxPageSize caps client-supplied page sizes (resource-exhaustion guard).
	MaxPageSize = 100
	// analyticsPageSize bounds memory while walking the full document set.
	analyticsPageSize = 500
)

// DocumentRepo defines the repository contract required by DocumentService.
// Implementations are responsible for persistence of documents and their
// child collections.
type DocumentRepo interface {
	// FindDocumentByID fetches a document by primary key, or repo.ErrNotFound.
	FindDocumentByID(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error)

	// FindAllWithValidAnalyses returns one page of documents holding at
	// least one valid analysis.
	FindAllWithValidAnalyses(ctx context.Context, db *gorm.DB, req pagination.PageRequest) (pagination.Page[domain.Document], error)

	// SearchDocuments returns one page of documents matching the query.
	SearchDocuments(ctx context.Context, db *gorm.DB, query string, req pagination.PageRequest) (pagination.Page[domain.Document], error)

	// FindByIndustryTag returns one page of documents tagged with tag.
	FindByIndustryTag(ctx context.Context, db *gorm.DB, tag string, req pagination.PageRequest) (pagination.Page[domain.Document], error)

	// FindSponsorsByDocumentID returns the sponsor links of one document.
	FindSponsorsByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.DocumentSponsor, error)

	// FindActionsByDocumentID returns one document's actions, newest first.
	FindActionsByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.DocumentAction, error)

	// FindAnalysesByDocumentID returns one document's analyses, newest first.
	FindAnalysesByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.AiAnalysis, error)

	// CreateAnalysis persists a freshly generated analysis.
	CreateAnalysis(ctx context.Context, db *gorm.DB, a *domain.AiAnalysis) error

	// CountDocumentsNeedingAnalysis counts documents without an
	// authoritative analysis.
	CountDocumentsNeedingAnalysis(ctx context.Context, db *gorm.DB) (int64, error)
}

// Analyzer is the AI-model port consumed for analyze-on-demand.
type Analyzer interface {
	// GenerateAnalysis produces a new analysis for the document.
	GenerateAnalysis(ctx context.Context, doc *domain.Document) (*domain.AiAnalysis, error)

	// IsServiceReady reports whether the model endpoint is reachable.
	IsServiceReady(ctx context.Context) bool
}

// AnalyticsSummary is the corpus-wide aggregate served by
// GetAnalyticsSummary. The two averages are unweighted means of the
// per-document party percentages.
type AnalyticsSummary struct {
	TotalDocuments           int64   `json:"total_documents"`
	DocumentsNeedingAnalysis int64   `json:"documents_needing_analysis"`
	AvgDemocraticSponsorship float64 `json:"avg_democratic_sponsorship"`
	AvgRepublicanSponsorship float64 `json:"avg_republican_sponsorship"`
}

// DocumentService answers document queries by composing the repository port
// with the AI-analysis port.
type DocumentService struct {
	// DB is the GORM handle passed through to the repository port.
	DB *gorm.DB
	// Repo is the document repository used by this service.
	Repo DocumentRepo
	// AI generates analyses on demand; may be nil to disable the feature.
	AI Analyzer
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *gorm.DB, r DocumentRepo, ai Analyzer) *DocumentService {
	return &DocumentService{DB: db, Repo: r, AI: ai}
}

// SanitizePageRequest clamps client-supplied pagination once, at the service
// boundary: non-positive sizes fall back to DefaultPageSize, oversized ones
// are capped at MaxPageSize, and negative page numbers become 0.
func SanitizePageRequest(req pagination.PageRequest) pagination.PageRequest {
	if req.Size <= 0 {
		req.Size = DefaultPageSize
	}
	if req.Size > MaxPageSize {
		req.Size = MaxPageSize
	}
	if req.Page < 0 {
		req.Page = 0
	}
	return req
}

// GetAllDocuments returns one page of summaries over the documents holding a
// valid analysis.
func (s *DocumentService) GetAllDocuments(ctx context.Context, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error) {
	ctx, span := startSpan(ctx, "GetAllDocuments", attribute.Int("page", req.Page), attribute.Int("page_size", req.Size))
	defer span.End()

	req = SanitizePageRequest(req)
	page, err := s.Repo.FindAllWithValidAnalyses(ctx, s.DB, req)
	if err != nil {
		return pagination.Empty[mapper.DocumentSummary](), err
	}
	return s.toSummaryPage(ctx, page), nil
}

// SearchDocuments returns one page of summaries over documents matching the
// free-text query.
func (s *DocumentService) SearchDocuments(ctx context.Context, query string, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error) {
	ctx, span := startSpan(ctx, "SearchDocuments", attribute.Int("page", req.Page))
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return pagination.Empty[mapper.DocumentSummary](), ErrEmptyQuery
	}
	req = SanitizePageRequest(req)
	page, err := s.Repo.SearchDocuments(ctx, s.DB, query, req)
	if err != nil {
		return pagination.Empty[mapper.DocumentSummary](), err
	}
	return s.toSummaryPage(ctx, page), nil
}

// FindByIndustryTag returns one page of summaries over documents whose valid
// analyses carry the tag.
func (s *DocumentService) FindByIndustryTag(ctx context.Context, tag string, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error) {
	ctx, span := startSpan(ctx, "FindByIndustryTag", attribute.String("tag", tag))
	defer span.End()

	if strings.TrimSpace(tag) == "" {
		return pagination.Empty[mapper.DocumentSummary](), ErrEmptyTag
	}
	req = SanitizePageRequest(req)
	page, err := s.Repo.FindByIndustryTag(ctx, s.DB, tag, req)
	if err != nil {
		return pagination.Empty[mapper.DocumentSummary](), err
	}
	return s.toSummaryPage(ctx, page), nil
}

// GetDocumentByID returns the full detail view of one document: sponsors,
// actions (newest first), the most recent valid analysis, and the party
// breakdown. Returns ErrDocumentNotFound when the document is absent.
func (s *DocumentService) GetDocumentByID(ctx context.Context, id string) (*mapper.DocumentDetail, error) {
	ctx, span := startSpan(ctx, "GetDocumentByID", attribute.String("document.id", id))
	defer span.End()

	doc, err := s.Repo.FindDocumentByID(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	sponsors := s.sponsorsOf(ctx, doc.ID)
	actions := s.actionsOf(ctx, doc.ID)
	analyses := s.analysesOf(ctx, doc.ID)

	detail := mapper.ToDetail(doc, sponsors, actions,
		rules.LatestValidAnalysis(analyses),
		mapper.CalculatePartyBreakdown(sponsors))
	return &detail, nil
}

// AnalyzeDocument triggers best-effort AI analysis generation for one
// document and returns its (possibly unchanged) detail view. Generation
// failures are logged, never surfaced; only a missing base document is an
// error.
func (s *DocumentService) AnalyzeDocument(ctx context.Context, id string) (*mapper.DocumentDetail, error) {
	ctx, span := startSpan(ctx, "AnalyzeDocument", attribute.String("document.id", id))
	defer span.End()

	doc, err := s.Repo.FindDocumentByID(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	switch {
	case s.AI == nil:
		log.Debug().Str("document_id", id).Msg("no analyzer configured; skipping generation")
	case !s.AI.IsServiceReady(ctx):
		log.Warn().Str("document_id", id).Msg("model service not ready; serving existing detail")
	default:
		if a, err := s.AI.GenerateAnalysis(ctx, doc); err != nil {
			log.Warn().Err(err).Str("document_id", id).Msg("analysis generation failed")
		} else if err := s.Repo.CreateAnalysis(ctx, s.DB, a); err != nil {
			log.Error().Err(err).Str("document_id", id).Msg("persisting generated analysis failed")
		}
	}

	return s.GetDocumentByID(ctx, id)
}

// GetAnalyticsSummary walks the valid-analysis document set in fixed-size
// pages, accumulating the unweighted mean of per-document party
// percentages. Memory stays bounded by the page size; the full set is never
// loaded at once. Zero documents yield 0.0 averages, never NaN.
func (s *DocumentService) GetAnalyticsSummary(ctx context.Context) (*AnalyticsSummary, error) {
	ctx, span := startSpan(ctx, "GetAnalyticsSummary")
	defer span.End()

	var (
		counted int64
		demSum  float64
		repSum  float64
		total   int64
	)
	for pageNum := 0; ; pageNum++ {
		page, err := s.Repo.FindAllWithValidAnalyses(ctx, s.DB, pagination.PageRequest{Page: pageNum, Size: analyticsPageSize})
		if err != nil {
			return nil, err
		}
		total = page.TotalElements
		for i := range page.Content {
			b := mapper.CalculatePartyBreakdown(s.sponsorsOf(ctx, page.Content[i].ID))
			demSum += b.DemocraticPercentage
			repSum += b.RepublicanPercentage
			counted++
		}
		if page.Last || len(page.Content) == 0 {
			break
		}
	}

	needing, err := s.Repo.CountDocumentsNeedingAnalysis(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	out := &AnalyticsSummary{
		TotalDocuments:           total,
		DocumentsNeedingAnalysis: needing,
	}
	if counted > 0 {
		out.AvgDemocraticSponsorship = demSum / float64(counted)
		out.AvgRepublicanSponsorship = repSum / float64(counted)
	}
	return out, nil
}

// toSummaryPage maps a page of documents to summaries, fetching each
// document's children through the tolerant helpers.
func (s *DocumentService) toSummaryPage(ctx context.Context, page pagination.Page[domain.Document]) pagination.Page[mapper.DocumentSummary] {
	return pagination.Map(page, func(doc domain.Document) mapper.DocumentSummary {
		sponsors := s.sponsorsOf(ctx, doc.ID)
		analyses := s.analysesOf(ctx, doc.ID)

		var tags []string
		latest := rules.LatestValidAnalysis(analyses)
		if latest != nil {
			tags = latest.IndustryTags
		}
		return mapper.ToSummary(&doc, tags, mapper.CalculatePartyBreakdown(sponsors), latest != nil)
	})
}

// sponsorsOf fetches a document's sponsor links, degrading to an empty list
// on failure.
func (s *DocumentService) sponsorsOf(ctx context.Context, documentID string) []domain.DocumentSponsor {
	out, err := s.Repo.FindSponsorsByDocumentID(ctx, s.DB, documentID)
	if err != nil {
		log.Warn().Err(err).Str("document_id", documentID).Msg("sponsor fetch failed; treating as empty")
		return nil
	}
	return out
}

// actionsOf fetches a document's actions, degrading to an empty list on
// failure.
func (s *DocumentService) actionsOf(ctx context.Context, documentID string) []domain.DocumentAction {
	out, err := s.Repo.FindActionsByDocumentID(ctx, s.DB, documentID)
	if err != nil {
		log.Warn().Err(err).Str("document_id", documentID).Msg("action fetch failed; treating as empty")
		return nil
	}
	return out
}

// analysesOf fetches a document's analyses, degrading to an empty list on
// failure.
func (s *DocumentService) analysesOf(ctx context.Context, documentID string) []domain.AiAnalysis {
	out, err := s.Repo.FindAnalysesByDocumentID(ctx, s.DB, documentID)
	if err != nil {
		log.Warn().Err(err).Str("document_id", documentID).Msg("analysis fetch failed; treating as empty")
		return nil
	}
	return out
}

// startSpan opens an OTel span on the service tracer.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tr := otel.Tracer("services/DocumentService")
	return tr.Start(ctx, name, trace.WithAttributes(attrs...))
}
