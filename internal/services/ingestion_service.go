// Package services – IngestionService
//
// This file implements IngestionService, the fetch-and-persist job that
// pulls recently updated bills from the legislative-data source, builds
// canonical bill identifiers, and persists documents it has not seen
// before. Every invocation is tracked as an IngestionRun row
// (pending → success | failure); an invocation whose exact fromDate already
// has a successful run is skipped without creating a row.
//
// Failure semantics: any error during a run aborts it (no partial-success
// state), marks the run failed, bumps the failure counter, and returns 0.
// Errors are operational events recorded in run rows and metrics, never
// re-thrown to the caller, so a crashing upstream cannot crash-loop the
// scheduler.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lexatlas/bill-tracker-backend/internal/congress"
	"github.com/lexatlas/bill-tracker-backend/internal/domain"
	"github.com/lexatlas/bill-tracker-backend/internal/repo"
)

const (
	// ingestPageSize is the batch size requested from the upstream listing.
	ingestPageSize = 50
	// maxIngestPages caps pagination against a misbehaving upstream that
	// never returns a short page.
	maxIngestPages = 20
)

// BillSource is the external legislative-data port consumed by ingestion.
type BillSource interface {
	// GetRecentBills lists bills updated since fromDate, paged by
	// offset/limit.
	GetRecentBills(ctx context.Context, fromDate time.Time, offset, limit int) ([]congress.BillListItem, error)
}

// IngestionDocumentRepo is the slice of the document repository needed by
// ingestion: existence checks and inserts, nothing more.
type IngestionDocumentRepo interface {
	// ExistsByBillID reports whether the canonical bill id is already
	// persisted.
	ExistsByBillID(ctx context.Context, db *gorm.DB, billID string) (bool, error)

	// CreateDocument inserts a new document.
	CreateDocument(ctx context.Context, db *gorm.DB, doc *domain.Document) error
}

// IngestionRunRepo tracks run rows for idempotency and observability.
type IngestionRunRepo interface {
	// FindSuccessfulRun returns the successful run for the exact fromDate,
	// or repo.ErrNotFound.
	FindSuccessfulRun(ctx context.Context, db *gorm.DB, fromDate time.Time) (*domain.IngestionRun, error)

	// CreateRun inserts a pending run row.
	CreateRun(ctx context.Context, db *gorm.DB, fromDate time.Time) (*domain.IngestionRun, error)

	// MarkRunSuccess finalizes a run with its persisted-document count.
	MarkRunSuccess(ctx context.Context, db *gorm.DB, runID string, documentCount int) error

	// MarkRunFailure finalizes a run with an error message.
	MarkRunFailure(ctx context.Context, db *gorm.DB, runID, message string) error
}

// IngestionMetrics is the observability side channel for runs.
type IngestionMetrics interface {
	RecordSuccess(documentCount int, elapsed time.Duration)
	RecordFailure(elapsed time.Duration)
	RecordSkipped()
}

// IngestionService orchestrates one ingestion run per invocation. It does
// not enforce mutual exclusion between overlapping invocations; the
// fromDate idempotency check is the only (best-effort) guard.
type IngestionService struct {
	// DB is the GORM handle passed through to the repository ports.
	DB *gorm.DB
	// Source lists recently updated bills.
	Source BillSource
	// Docs persists documents.
	Docs IngestionDocumentRepo
	// Runs tracks ingestion runs.
	Runs IngestionRunRepo
	// Metrics records run outcomes; may be nil.
	Metrics IngestionMetrics
}

// NewIngestionService constructs an IngestionService.
func NewIngestionService(db *gorm.DB, source BillSource, docs IngestionDocumentRepo, runs IngestionRunRepo, m IngestionMetrics) *IngestionService {
	return &IngestionService{DB: db, Source: source, Docs: docs, Runs: runs, Metrics: m}
}

// IngestRecentBills runs one ingestion for the given lookback cutoff and
// returns the number of newly persisted documents. The idempotency key is
// the exact fromDate value: only a repeated invocation with the same date
// (in practice, a repeated manual trigger) hits the skip path, since the
// scheduled path derives a fresh cutoff every day.
//
// Errors never escape: a failed run returns 0 after recording the failure.
func (s *IngestionService) IngestRecentBills(ctx context.Context, fromDate time.Time) int {
	tr := otel.Tracer("services/IngestionService")
	ctx, span := tr.Start(ctx, "IngestRecentBills",
		trace.WithAttributes(attribute.String("from_date", fromDate.Format(time.RFC3339))),
	)
	defer span.End()

	start := time.Now()

	if prior, err := s.Runs.FindSuccessfulRun(ctx, s.DB, fromDate); err == nil {
		log.Info().
			Time("from_date", fromDate).
			Str("run_id", prior.ID).
			Msg("ingestion skipped; successful run exists for this fromDate")
		if s.Metrics != nil {
			s.Metrics.RecordSkipped()
		}
		return 0
	} else if !errors.Is(err, repo.ErrNotFound) {
		s.failRun(ctx, "", start, fmt.Errorf("idempotency lookup: %w", err))
		return 0
	}

	run, err := s.Runs.CreateRun(ctx, s.DB, fromDate)
	if err != nil {
		s.failRun(ctx, "", start, fmt.Errorf("create run: %w", err))
		return 0
	}

	persisted, err := s.ingestPages(ctx, fromDate)
	if err != nil {
		s.failRun(ctx, run.ID, start, err)
		return 0
	}

	if err := s.Runs.MarkRunSuccess(ctx, s.DB, run.ID, persisted); err != nil {
		s.failRun(ctx, run.ID, start, fmt.Errorf("mark success: %w", err))
		return 0
	}

	elapsed := time.Since(start)
	if s.Metrics != nil {
		s.Metrics.RecordSuccess(persisted, elapsed)
	}
	log.Info().
		Time("from_date", fromDate).
		Int("documents", persisted).
		Dur("elapsed", elapsed).
		Msg("ingestion run succeeded")
	return persisted
}

// ingestPages walks the upstream listing in fixed batches, persisting
// unseen bills, until a short page or the safety cap.
func (s *IngestionService) ingestPages(ctx context.Context, fromDate time.Time) (int, error) {
	persisted := 0
	for page := 0; page < maxIngestPages; page++ {
		bills, err := s.Source.GetRecentBills(ctx, fromDate, page*ingestPageSize, ingestPageSize)
		if err != nil {
			return 0, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for i := range bills {
			n, err := s.persistBill(ctx, &bills[i])
			if err != nil {
				return 0, err
			}
			persisted += n
		}

		if len(bills) < ingestPageSize {
			break
		}
	}
	return persisted, nil
}

// persistBill stores one listed bill if it carries a usable identity and is
// not yet known. Returns 1 when a document was inserted.
func (s *IngestionService) persistBill(ctx context.Context, bill *congress.BillListItem) (int, error) {
	billID, ok := CanonicalBillID(bill.Type, bill.Number, bill.Congress)
	if !ok {
		log.Debug().Str("type", bill.Type).Str("title", bill.Title).Msg("bill without number skipped")
		return 0, nil
	}

	exists, err := s.Docs.ExistsByBillID(ctx, s.DB, billID)
	if err != nil {
		return 0, fmt.Errorf("existence check %s: %w", billID, err)
	}
	if exists {
		// Refreshing already-known documents is deliberately deferred.
		return 0, nil
	}

	doc := &domain.Document{
		BillID:           billID,
		Title:            bill.Title,
		IntroductionDate: bill.IntroducedDate,
		BillType:         strings.ToLower(strings.TrimSpace(bill.Type)),
		FullTextURL:      bill.URL,
		Status:           "introduced",
	}
	if bill.Congress > 0 {
		session := bill.Congress
		doc.CongressSession = &session
	}
	if err := s.Docs.CreateDocument(ctx, s.DB, doc); err != nil {
		return 0, fmt.Errorf("persist %s: %w", billID, err)
	}
	return 1, nil
}

// failRun records a failed invocation. runID may be empty when the failure
// happened before a run row was created; the failure counter is still
// bumped, there is just no row to update.
func (s *IngestionService) failRun(ctx context.Context, runID string, start time.Time, cause error) {
	log.Error().Err(cause).Str("run_id", runID).Msg("ingestion run failed")
	if runID != "" {
		if err := s.Runs.MarkRunFailure(ctx, s.DB, runID, cause.Error()); err != nil {
			log.Error().Err(err).Str("run_id", runID).Msg("marking run failed did not stick")
		}
	}
	if s.Metrics != nil {
		s.Metrics.RecordFailure(time.Since(start))
	}
}

// CanonicalBillID builds the synthetic document identity from upstream
// fields: uppercase trimmed type, trimmed number, and a "-CONGRESS" suffix
// when the session is known. A bill with a blank number cannot be
// identified and yields ok=false.
func CanonicalBillID(billType, number string, congressNum int) (string, bool) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", false
	}
	id := strings.ToUpper(strings.TrimSpace(billType)) + number
	if congressNum > 0 {
		id += "-" + strconv.Itoa(congressNum)
	}
	return id, true
}
