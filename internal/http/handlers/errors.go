// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// This file centralizes the symbolic error code constants mapped to HTTP
// responses via the `fail()` helper. The codes give clients a stable,
// machine-readable taxonomy alongside human-readable messages.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, not_found, …) mirror common HTTP status
//     semantics.
//   - Domain-specific codes (ledger_unavailable, contact_unavailable, …)
//     carry failure modes that the status alone cannot convey: a 503 with
//     ledger_unavailable means the fullnode could not be read and no cached
//     snapshot was usable, while submission_failed on a 502 means the signer
//     or the chain rejected a write.
//
// Handlers select the most specific matching code and pass it to fail()
// with the corresponding status and message.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeBadAddress         = "bad_address"
	ErrCodeLedgerUnavailable  = "ledger_unavailable"
	ErrCodeContactUnavailable = "contact_unavailable"
	ErrCodeSubmissionFailed   = "submission_failed"
	ErrCodeUserRejected       = "user_rejected"
	ErrCodeMissingCaller      = "missing_caller"
)
