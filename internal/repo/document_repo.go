// Package repo implements the data persistence layer for the bill tracker,
// backed by GORM. This file provides repository functions for documents and
// their child collections (sponsors, actions, analyses).
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a document is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexatlas/bill-tracker-backend/internal/domain"
	"github.com/lexatlas/bill-tracker-backend/internal/pagination"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for consistency across services and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// sortableDocumentColumns whitelists the document columns a client-supplied
// Sort may reference. Anything else is silently ignored.
var sortableDocumentColumns = map[string]string{
	"title":             "title",
	"bill_id":           "bill_id",
	"status":            "status",
	"introduction_date": "introduction_date",
	"created_at":        "created_at",
	"updated_at":        "updated_at",
}

// CreateDocument inserts a new Document row. A missing ID is filled with a
// fresh UUID; CreatedAt/UpdatedAt are set to UTC now.
func CreateDocument(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return db.WithContext(ctx).Create(doc).Error
}

// SaveDocument persists all fields of an existing document.
func SaveDocument(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(doc).Error
}

// FindDocumentByID fetches a document by primary key, or ErrNotFound.
func FindDocumentByID(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error) {
	var doc domain.Document
	if err := db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByBillID fetches a document by its canonical bill id, or ErrNotFound.
func FindByBillID(ctx context.Context, db *gorm.DB, billID string) (*domain.Document, error) {
	var doc domain.Document
	if err := db.WithContext(ctx).First(&doc, "bill_id = ?", billID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ExistsByBillID reports whether a document with the canonical bill id is
// already persisted. Used by ingestion for dedup.
func ExistsByBillID(ctx context.Context, db *gorm.DB, billID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("bill_id = ?", billID).
		Count(&n).Error
	return n > 0, err
}

// FindByIntroductionDateAfter returns documents introduced strictly after
// the given date, newest first.
func FindByIntroductionDateAfter(ctx context.Context, db *gorm.DB, after time.Time) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Where("introduction_date > ?", after).
		Order("introduction_date desc").
		Find(&out).Error
	return out, err
}

// FindAllWithValidAnalyses returns one page of documents that have at least
// one valid AI analysis, ordered per the request's Sort (default: most
// recently updated first).
func FindAllWithValidAnalyses(ctx context.Context, db *gorm.DB, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	q := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id IN (?)", db.Model(&domain.AiAnalysis{}).Select("document_id").Where("is_valid = ?", true))
	return pageDocuments(q, req)
}

// SearchDocuments returns one page of documents whose title, official
// summary, or bill id contains the query string (case-insensitive LIKE).
func SearchDocuments(ctx context.Context, db *gorm.DB, query string, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("lower(title) LIKE ? OR lower(official_summary) LIKE ? OR lower(bill_id) LIKE ?", pattern, pattern, pattern)
	return pageDocuments(q, req)
}

// FindByIndustryTag returns one page of documents whose valid analyses carry
// the given industry tag. Tags are stored JSON-serialized, so the match is a
// LIKE over the quoted tag value.
func FindByIndustryTag(ctx context.Context, db *gorm.DB, tag string, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	pattern := `%"` + strings.ToLower(strings.TrimSpace(tag)) + `"%`
	sub := db.Model(&domain.AiAnalysis{}).
		Select("document_id").
		Where("is_valid = ? AND lower(industry_tags) LIKE ?", true, pattern)
	q := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id IN (?)", sub)
	return pageDocuments(q, req)
}

// FindSponsorsByDocumentID returns the sponsor links of a document with the
// Sponsor association preloaded, primary sponsor first.
func FindSponsorsByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.DocumentSponsor, error) {
	var out []domain.DocumentSponsor
	err := db.WithContext(ctx).
		Preload("Sponsor").
		Where("document_id = ?", documentID).
		Order("is_primary_sponsor desc, created_at asc").
		Find(&out).Error
	return out, err
}

// FindActionsByDocumentID returns the actions of a document, newest first.
func FindActionsByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.DocumentAction, error) {
	var out []domain.DocumentAction
	err := db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("action_date desc").
		Find(&out).Error
	return out, err
}

// FindAnalysesByDocumentID returns all analyses of a document, newest first.
func FindAnalysesByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.AiAnalysis, error) {
	var out []domain.AiAnalysis
	err := db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("analysis_date desc").
		Find(&out).Error
	return out, err
}

// CreateAnalysis inserts a new AI analysis row for a document.
func CreateAnalysis(ctx context.Context, db *gorm.DB, a *domain.AiAnalysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(a).Error
}

// CountDocumentsNeedingAnalysis counts documents with no valid analysis at
// least as recent as their last update.
func CountDocumentsNeedingAnalysis(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("NOT EXISTS (SELECT 1 FROM ai_analyses a WHERE a.document_id = documents.id AND a.is_valid = ? AND a.analysis_date >= documents.updated_at)", true).
		Count(&n).Error
	return n, err
}

// DeleteDocument removes a document by primary key. Missing rows are not an
// error (delete is idempotent).
func DeleteDocument(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.Document{}, "id = ?", id).Error
}

// CountDocuments returns the total number of persisted documents.
func CountDocuments(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Document{}).Count(&n).Error
	return n, err
}

// ExistsAnyDocuments reports whether at least one document is persisted.
func ExistsAnyDocuments(ctx context.Context, db *gorm.DB) (bool, error) {
	n, err := CountDocuments(ctx, db)
	return n > 0, err
}

// pageDocuments runs the count+offset/limit pair for a composed document
// query and assembles the Page. The request is assumed to be sanitized by
// the service boundary already.
func pageDocuments(q *gorm.DB, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.Empty[domain.Document](), err
	}

	order := "updated_at desc"
	for _, o := range req.Sort {
		col, ok := sortableDocumentColumns[o.Property]
		if !ok {
			continue
		}
		dir := "asc"
		if o.Direction == pagination.Desc {
			dir = "desc"
		}
		order = col + " " + dir
		break
	}

	var rows []domain.Document
	err := q.Order(order).
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&rows).Error
	if err != nil {
		return pagination.Empty[domain.Document](), err
	}
	return pagination.NewPage(rows, req.Page, req.Size, total), nil
}
