// Package domain defines the core model types for the application. This file
// holds the submission journal row, the one locally persisted type. The
// journal records what this client signed and submitted; it is diagnostic
// bookkeeping and idempotency state only and is never consulted when deriving
// request status (the ledger stays the sole source of truth).
package domain

import "time"

// Submission statuses recorded in the journal.
const (
	SubmissionPending   = "pending"
	SubmissionCommitted = "committed"
	SubmissionFailed    = "failed"
)

// Submission is a journaled ledger write, keyed for idempotent replay by
// (caller_addr, action, key). A replay with the same Idempotency-Key returns
// the recorded transaction hash without signing again.
type Submission struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	CallerAddr string    `json:"caller_addr" gorm:"type:varchar(66);not null;uniqueIndex:ux_caller_action_key,priority:1"`
	Action     string    `json:"action"      gorm:"type:varchar(32);not null;uniqueIndex:ux_caller_action_key,priority:2"`
	Key        string    `json:"key"         gorm:"type:varchar(200);not null;uniqueIndex:ux_caller_action_key,priority:3"`
	Function   string    `json:"function"    gorm:"type:text;not null"`
	ArgsDigest string    `json:"args_digest" gorm:"type:char(64);not null"`
	TxHash     string    `json:"tx_hash"     gorm:"type:varchar(66)"`
	Status     string    `json:"status"      gorm:"type:varchar(16);not null"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"  gorm:"index"`
}

// TableName implements the GORM tabler interface.
func (Submission) TableName() string { return "submissions" }
