// Document HTTP handlers.
//
// Endpoints:
//   - GET  /documents                 (paginated list, valid-analysis docs)
//   - GET  /documents/search          (free-text search)
//   - GET  /documents/industry/:tag   (filter by industry tag)
//   - GET  /documents/:id             (full detail)
//   - POST /documents/:id/analyze     (trigger AI analysis, return detail)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/bill-tracker-backend/internal/mapper"
	"github.com/lexatlas/bill-tracker-backend/internal/pagination"
	"github.com/lexatlas/bill-tracker-backend/internal/services"
)

// DocumentService defines the document query operations consumed by the HTTP
// layer. Implementations must be safe for concurrent use.
type DocumentService interface {
	GetAllDocuments(ctx context.Context, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error)
	SearchDocuments(ctx context.Context, query string, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error)
	FindByIndustryTag(ctx context.Context, tag string, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error)
	GetDocumentByID(ctx context.Context, id string) (*mapper.DocumentDetail, error)
	AnalyzeDocument(ctx context.Context, id string) (*mapper.DocumentDetail, error)
	GetAnalyticsSummary(ctx context.Context) (*services.AnalyticsSummary, error)
}

// Handlers groups the HTTP endpoints over the document and ingestion
// services.
type Handlers struct {
	docs   DocumentService
	ingest IngestionService
}

// New constructs a Handlers bound to the given services.
func New(docs DocumentService, ingest IngestionService) *Handlers {
	return &Handlers{docs: docs, ingest: ingest}
}

// pageRequest reads the page/size query parameters. Out-of-range values pass
// through untouched; the service boundary owns clamping.
func pageRequest(c *gin.Context) pagination.PageRequest {
	return pagination.PageRequest{
		Page: atoiDefault(c.Query("page"), 0),
		Size: atoiDefault(c.Query("size"), 0),
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ListDocuments handles GET /documents.
func (h *Handlers) ListDocuments(c *gin.Context) {
	page, err := h.docs.GetAllDocuments(c.Request.Context(), pageRequest(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "listing documents failed")
		return
	}
	ok(c, http.StatusOK, page)
}

// SearchDocuments handles GET /documents/search?q=.
func (h *Handlers) SearchDocuments(c *gin.Context) {
	page, err := h.docs.SearchDocuments(c.Request.Context(), c.Query("q"), pageRequest(c))
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "search failed")
		return
	}
	ok(c, http.StatusOK, page)
}

// DocumentsByIndustry handles GET /documents/industry/:tag.
func (h *Handlers) DocumentsByIndustry(c *gin.Context) {
	page, err := h.docs.FindByIndustryTag(c.Request.Context(), c.Param("tag"), pageRequest(c))
	if err != nil {
		if errors.Is(err, services.ErrEmptyTag) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "industry tag is required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "industry lookup failed")
		return
	}
	ok(c, http.StatusOK, page)
}

// GetDocument handles GET /documents/:id.
func (h *Handlers) GetDocument(c *gin.Context) {
	detail, err := h.docs.GetDocumentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "fetching document failed")
		return
	}
	ok(c, http.StatusOK, detail)
}

// AnalyzeDocument handles POST /documents/:id/analyze. Generation failures do
// not surface here; the response always carries the current detail view.
func (h *Handlers) AnalyzeDocument(c *gin.Context) {
	detail, err := h.docs.AnalyzeDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "analysis failed")
		return
	}
	ok(c, http.StatusOK, detail)
}

// AnalyticsSummary handles GET /analytics/summary.
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	sum, err := h.docs.GetAnalyticsSummary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "analytics summary failed")
		return
	}
	ok(c, http.StatusOK, sum)
}
