// Package chain implements read and write access to the ledger fullnode.
// This file centralizes the error taxonomy used across the client so callers
// can branch on classification instead of transport detail:
//
//   - NotFound:   the entity does not exist; expected and non-fatal.
//   - RateLimited: the fullnode signalled throttling (HTTP 429).
//   - Transient:  network failure or 5xx; a retry (or a stale cached value)
//     is a reasonable recovery.
//   - UserRejected: the wallet declined to sign; surfaced verbatim, no retry.
//   - Submission: the signed transaction was rejected on submit.
//
// Anything outside the taxonomy propagates as-is with whatever diagnostic
// detail the transport produced; it is never silently swallowed.
package chain

import (
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for the ledger error taxonomy. Wrap with %w so callers can
// use errors.Is.
var (
	// ErrNotFound marks an absent account, resource, or entity.
	ErrNotFound = errors.New("chain: not found")

	// ErrRateLimited marks an explicit throttle signal from the fullnode.
	ErrRateLimited = errors.New("chain: rate limited")

	// ErrTransient marks a network-level or server-side failure that may
	// succeed on retry.
	ErrTransient = errors.New("chain: transient failure")

	// ErrUserRejected marks a signing request declined by the wallet owner.
	ErrUserRejected = errors.New("chain: user rejected signing")

	// ErrSubmission marks a transaction the fullnode refused to admit.
	ErrSubmission = errors.New("chain: transaction submission failed")
)

// IsNotFound reports whether err resolves to an absent entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRateLimited reports whether err is an explicit throttle signal.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsTransient reports whether err is recoverable by retry or by serving a
// stale cached value. Rate limiting counts as transient for cache fallback.
func IsTransient(err error) bool {
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// statusError converts an HTTP status and response detail into a classified
// error. 404 maps to NotFound, 429 to RateLimited, 5xx to Transient;
// remaining statuses keep full detail and no classification.
func statusError(status int, detail string) error {
	switch {
	case status == 404:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case status == 429:
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	case status >= 500:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, status, detail)
	default:
		return fmt.Errorf("chain: http %d: %s", status, detail)
	}
}
