// Package repo implements the data persistence layer for the bill tracker,
// backed by GORM. This file provides repository helpers for IngestionRun
// rows, which record ingestion attempts and back the idempotent-skip check.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexatlas/bill-tracker-backend/internal/domain"
)

// FindSuccessfulRun returns the successful ingestion run recorded for the
// exact fromDate, or ErrNotFound. fromDate equality is intentionally exact:
// the idempotency key is the lookback cutoff as supplied, not a window.
func FindSuccessfulRun(ctx context.Context, db *gorm.DB, fromDate time.Time) (*domain.IngestionRun, error) {
	var run domain.IngestionRun
	err := db.WithContext(ctx).
		Where("from_date = ? AND status = ?", fromDate, domain.RunStatusSuccess).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateRun inserts a new pending run row for fromDate and returns it.
func CreateRun(ctx context.Context, db *gorm.DB, fromDate time.Time) (*domain.IngestionRun, error) {
	run := &domain.IngestionRun{
		ID:        uuid.NewString(),
		FromDate:  fromDate,
		Status:    domain.RunStatusPending,
		StartedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// MarkRunSuccess transitions a run to success, recording the number of
// documents persisted. Returns ErrNotFound when the run row is missing.
func MarkRunSuccess(ctx context.Context, db *gorm.DB, runID string, documentCount int) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.IngestionRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":         domain.RunStatusSuccess,
			"completed_at":   now,
			"document_count": documentCount,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRunFailure transitions a run to failure, capturing the error message.
// Returns ErrNotFound when the run row is missing.
func MarkRunFailure(ctx context.Context, db *gorm.DB, runID, message string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.IngestionRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":        domain.RunStatusFailure,
			"completed_at":  now,
			"error_message": message,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
