// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/lexatlas/bill-tracker-backend/internal/config"
	"github.com/lexatlas/bill-tracker-backend/internal/domain"
	"github.com/lexatlas/bill-tracker-backend/internal/http/handlers"
	"github.com/lexatlas/bill-tracker-backend/internal/http/middleware"
	"github.com/lexatlas/bill-tracker-backend/internal/metrics"
	"github.com/lexatlas/bill-tracker-backend/internal/pagination"
	"github.com/lexatlas/bill-tracker-backend/internal/repo"
	"github.com/lexatlas/bill-tracker-backend/internal/services"
)

// documentRepoShim adapts the repository free functions to the
// services.DocumentRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type documentRepoShim struct{}

func (documentRepoShim) FindDocumentByID(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error) {
	return repo.FindDocumentByID(ctx, db, id)
}

func (documentRepoShim) FindAllWithValidAnalyses(ctx context.Context, db *gorm.DB, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	return repo.FindAllWithValidAnalyses(ctx, db, req)
}

func (documentRepoShim) SearchDocuments(ctx context.Context, db *gorm.DB, query string, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	return repo.SearchDocuments(ctx, db, query, req)
}

func (documentRepoShim) FindByIndustryTag(ctx context.Context, db *gorm.DB, tag string, req pagination.PageRequest) (pagination.Page[domain.Document], error) {
	return repo.FindByIndustryTag(ctx, db, tag, req)
}

func (documentRepoShim) FindSponsorsByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.DocumentSponsor, error) {
	return repo.FindSponsorsByDocumentID(ctx, db, documentID)
}

func (documentRepoShim) FindActionsByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.DocumentAction, error) {
	return repo.FindActionsByDocumentID(ctx, db, documentID)
}

func (documentRepoShim) FindAnalysesByDocumentID(ctx context.Context, db *gorm.DB, documentID string) ([]domain.AiAnalysis, error) {
	return repo.FindAnalysesByDocumentID(ctx, db, documentID)
}

func (documentRepoShim) CreateAnalysis(ctx context.Context, db *gorm.DB, a *domain.AiAnalysis) error {
	return repo.CreateAnalysis(ctx, db, a)
}

func (documentRepoShim) CountDocumentsNeedingAnalysis(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountDocumentsNeedingAnalysis(ctx, db)
}

// ingestionDocsShim adapts the document repo functions needed by ingestion.
type ingestionDocsShim struct{}

func (ingestionDocsShim) ExistsByBillID(ctx context.Context, db *gorm.DB, billID string) (bool, error) {
	return repo.ExistsByBillID(ctx, db, billID)
}

func (ingestionDocsShim) CreateDocument(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return repo.CreateDocument(ctx, db, doc)
}

// ingestionRunShim adapts the run-tracking repo functions.
type ingestionRunShim struct{}

func (ingestionRunShim) FindSuccessfulRun(ctx context.Context, db *gorm.DB, fromDate time.Time) (*domain.IngestionRun, error) {
	return repo.FindSuccessfulRun(ctx, db, fromDate)
}

func (ingestionRunShim) CreateRun(ctx context.Context, db *gorm.DB, fromDate time.Time) (*domain.IngestionRun, error) {
	return repo.CreateRun(ctx, db, fromDate)
}

func (ingestionRunShim) MarkRunSuccess(ctx context.Context, db *gorm.DB, runID string, documentCount int) error {
	return repo.MarkRunSuccess(ctx, db, runID, documentCount)
}

func (ingestionRunShim) MarkRunFailure(ctx context.Context, db *gorm.DB, runID, message string) error {
	return repo.MarkRunFailure(ctx, db, runID, message)
}

// NewIngestionService assembles the ingestion service over the production
// repo shims and the Prometheus run metrics. Main hands the result to both
// the router and the scheduler.
func NewIngestionService(db *gorm.DB, source services.BillSource) *services.IngestionService {
	return services.NewIngestionService(db, source, ingestionDocsShim{}, ingestionRunShim{}, metrics.NewIngestion())
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. analyzer may be nil to disable analyze-on-demand.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip compression
//  8. Rate limiter (per IP)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, analyzer services.Analyzer, ingestSvc *services.IngestionService, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	r.Use(rl.Handler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	docSvc := services.NewDocumentService(db, documentRepoShim{}, analyzer)
	h := handlers.New(docSvc, ingestSvc)

	api := r.Group("/api/v1")
	{
		api.GET("/documents", h.ListDocuments)
		api.GET("/documents/search", h.SearchDocuments)
		api.GET("/documents/industry/:tag", h.DocumentsByIndustry)
		api.GET("/documents/:id", h.GetDocument)
		api.POST("/documents/:id/analyze", h.AnalyzeDocument)

		api.POST("/ingestion/run", h.RunIngestion)

		api.GET("/analytics/summary", h.AnalyticsSummary)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Oversized bodies error on downstream reads.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
