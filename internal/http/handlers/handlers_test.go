package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lexatlas/bill-tracker-backend/internal/mapper"
	"github.com/lexatlas/bill-tracker-backend/internal/pagination"
	"github.com/lexatlas/bill-tracker-backend/internal/services"
)

type fakeDocService struct {
	page    pagination.Page[mapper.DocumentSummary]
	detail  *mapper.DocumentDetail
	summary *services.AnalyticsSummary
	err     error

	lastQuery string
	lastTag   string
	lastReq   pagination.PageRequest
}

func (f *fakeDocService) GetAllDocuments(ctx context.Context, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error) {
	f.lastReq = req
	return f.page, f.err
}

func (f *fakeDocService) SearchDocuments(ctx context.Context, query string, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error) {
	f.lastQuery = query
	if query == "" {
		return pagination.Empty[mapper.DocumentSummary](), services.ErrEmptyQuery
	}
	return f.page, f.err
}

func (f *fakeDocService) FindByIndustryTag(ctx context.Context, tag string, req pagination.PageRequest) (pagination.Page[mapper.DocumentSummary], error) {
	f.lastTag = tag
	return f.page, f.err
}

func (f *fakeDocService) GetDocumentByID(ctx context.Context, id string) (*mapper.DocumentDetail, error) {
	if f.detail == nil && f.err == nil {
		return nil, services.ErrDocumentNotFound
	}
	return f.detail, f.err
}

func (f *fakeDocService) AnalyzeDocument(ctx context.Context, id string) (*mapper.DocumentDetail, error) {
	return f.GetDocumentByID(ctx, id)
}

func (f *fakeDocService) GetAnalyticsSummary(ctx context.Context) (*services.AnalyticsSummary, error) {
	return f.summary, f.err
}

type fakeIngestTrigger struct {
	lastFrom  time.Time
	persisted int
}

func (f *fakeIngestTrigger) IngestRecentBills(ctx context.Context, fromDate time.Time) int {
	f.lastFrom = fromDate
	return f.persisted
}

func testRouter(docs DocumentService, ingest IngestionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(docs, ingest)
	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/documents", h.ListDocuments)
	api.GET("/documents/search", h.SearchDocuments)
	api.GET("/documents/industry/:tag", h.DocumentsByIndustry)
	api.GET("/documents/:id", h.GetDocument)
	api.POST("/documents/:id/analyze", h.AnalyzeDocument)
	api.POST("/ingestion/run", h.RunIngestion)
	api.GET("/analytics/summary", h.AnalyticsSummary)
	return r
}

func doRequest(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestListDocuments_PassesRawPageParams(t *testing.T) {
	svc := &fakeDocService{page: pagination.Empty[mapper.DocumentSummary]()}
	r := testRouter(svc, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents?page=-5&size=5000")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	// Clamping belongs to the service; the handler forwards what it parsed.
	if svc.lastReq.Page != -5 || svc.lastReq.Size != 5000 {
		t.Fatalf("forwarded request = %+v", svc.lastReq)
	}

	var page pagination.Page[mapper.DocumentSummary]
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("body not a page: %v", err)
	}
	if page.Content == nil {
		t.Fatalf("content must serialize as [], not null")
	}
}

func TestListDocuments_ServiceError(t *testing.T) {
	svc := &fakeDocService{err: errors.New("db down")}
	r := testRouter(svc, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body: %v", err)
	}
	if body.Code != ErrCodeInternal {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestSearchDocuments_MissingQuery(t *testing.T) {
	r := testRouter(&fakeDocService{}, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents/search")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestSearchDocuments_ForwardsQuery(t *testing.T) {
	svc := &fakeDocService{page: pagination.Empty[mapper.DocumentSummary]()}
	r := testRouter(svc, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents/search?q=energy")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastQuery != "energy" {
		t.Fatalf("query = %q", svc.lastQuery)
	}
}

func TestDocumentsByIndustry_ForwardsTag(t *testing.T) {
	svc := &fakeDocService{page: pagination.Empty[mapper.DocumentSummary]()}
	r := testRouter(svc, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents/industry/healthcare")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastTag != "healthcare" {
		t.Fatalf("tag = %q", svc.lastTag)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	r := testRouter(&fakeDocService{}, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents/missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body: %v", err)
	}
	if body.Code != ErrCodeNotFound {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestGetDocument_Found(t *testing.T) {
	svc := &fakeDocService{detail: &mapper.DocumentDetail{BillID: "HR1-118", Title: "Act"}}
	r := testRouter(svc, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/documents/d1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var detail mapper.DocumentDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("body: %v", err)
	}
	if detail.BillID != "HR1-118" {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestAnalyzeDocument_NotFound(t *testing.T) {
	r := testRouter(&fakeDocService{}, &fakeIngestTrigger{})
	if w := doRequest(r, http.MethodPost, "/api/v1/documents/missing/analyze"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestRunIngestion_ExplicitFrom(t *testing.T) {
	trig := &fakeIngestTrigger{persisted: 7}
	r := testRouter(&fakeDocService{}, trig)

	w := doRequest(r, http.MethodPost, "/api/v1/ingestion/run?from=2025-08-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !trig.lastFrom.Equal(want) {
		t.Fatalf("from = %v; want %v", trig.lastFrom, want)
	}
	var body RunIngestionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.DocumentsPersisted != 7 || body.FromDate != "2025-08-01" {
		t.Fatalf("body = %+v", body)
	}
}

func TestRunIngestion_InvalidFrom(t *testing.T) {
	r := testRouter(&fakeDocService{}, &fakeIngestTrigger{})
	if w := doRequest(r, http.MethodPost, "/api/v1/ingestion/run?from=01-08-2025"); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestRunIngestion_DefaultLookback(t *testing.T) {
	trig := &fakeIngestTrigger{}
	r := testRouter(&fakeDocService{}, trig)

	before := time.Now().UTC().Add(-DefaultIngestLookback)
	if w := doRequest(r, http.MethodPost, "/api/v1/ingestion/run"); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	// Truncated to day granularity, so at most one day behind the raw cutoff.
	if trig.lastFrom.After(before) || before.Sub(trig.lastFrom) > 24*time.Hour {
		t.Fatalf("from = %v; want within a day before %v", trig.lastFrom, before)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	svc := &fakeDocService{summary: &services.AnalyticsSummary{
		TotalDocuments:           12,
		DocumentsNeedingAnalysis: 4,
		AvgDemocraticSponsorship: 55.5,
		AvgRepublicanSponsorship: 40.1,
	}}
	r := testRouter(svc, &fakeIngestTrigger{})

	w := doRequest(r, http.MethodGet, "/api/v1/analytics/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body services.AnalyticsSummary
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.TotalDocuments != 12 || body.AvgDemocraticSponsorship != 55.5 {
		t.Fatalf("body = %+v", body)
	}
}

func TestAtoiDefault(t *testing.T) {
	if got := atoiDefault("", 3); got != 3 {
		t.Fatalf("empty = %d", got)
	}
	if got := atoiDefault("junk", 3); got != 3 {
		t.Fatalf("junk = %d", got)
	}
	if got := atoiDefault("-7", 3); got != -7 {
		t.Fatalf("negative = %d", got)
	}
}
