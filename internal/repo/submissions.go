// Package repo implements the local persistence layer, backed by GORM. This
// file provides the submission journal helpers: recording what the client
// signed and submitted, and looking up prior submissions for idempotent
// replay of write endpoints.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-skillshare-backend/internal/domain"
)

// ErrNotFound indicates no matching journal record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate indicates a journal record already exists for the
// (caller_addr, action, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetSubmission returns a non-expired journal record for the caller, action,
// and idempotency key, or ErrNotFound.
func GetSubmission(ctx context.Context, db *gorm.DB, callerAddr, action, key string, now time.Time) (*domain.Submission, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Submission
	err := db.WithContext(ctx).
		Where("caller_addr = ? AND action = ? AND key = ? AND expires_at > ?", callerAddr, action, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateSubmission journals a submission outcome and returns ErrDuplicate on
// unique violation of the replay tuple.
func CreateSubmission(ctx context.Context, db *gorm.DB, callerAddr, action, key, function, argsDigest, txHash, status string, ttl time.Duration) (*domain.Submission, error) {
	now := time.Now().UTC()
	rec := &domain.Submission{
		ID:         uuid.NewString(),
		CallerAddr: callerAddr,
		Action:     action,
		Key:        key,
		Function:   function,
		ArgsDigest: argsDigest,
		TxHash:     txHash,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// UpdateSubmission rewrites the outcome of the journal row for the
// (caller_addr, action, key) tuple and restarts its replay window. A retried
// write lands on the tuple its failed predecessor already journaled, so the
// row must follow the latest attempt or replays would serve a dead record.
func UpdateSubmission(ctx context.Context, db *gorm.DB, callerAddr, action, key, txHash, status string, ttl time.Duration) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Model(&domain.Submission{}).
		Where("caller_addr = ? AND action = ? AND key = ?", callerAddr, action, key).
		Updates(map[string]any{
			"tx_hash":    txHash,
			"status":     status,
			"created_at": now,
			"expires_at": now.Add(ttl),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubmissions returns the caller's journal entries, newest first, capped
// at limit.
func ListSubmissions(ctx context.Context, db *gorm.DB, callerAddr string, limit int) ([]domain.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []domain.Submission
	err := db.WithContext(ctx).
		Where("caller_addr = ?", callerAddr).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
