// Package services implements the application logic over the ledger: status
// resolution, request listings, balances, and the transaction facade. This
// file centralizes common service-level error values so they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer, not here.
package services

import "errors"

var (
	// ErrRequestNotFound indicates that no teach request exists for the
	// given id (no request-created event on the ledger).
	ErrRequestNotFound = errors.New("teach request not found")

	// ErrLedgerUnavailable indicates a failed aggregation: one or more
	// event streams could not be read and no usable cached snapshot
	// exists. Status is never derived from a partial read.
	ErrLedgerUnavailable = errors.New("ledger read failed")

	// ErrNotRegistered indicates the caller has no User profile on the
	// ledger and therefore cannot issue the requested operation.
	ErrNotRegistered = errors.New("address not registered")

	// ErrEmptySkill is returned when a teach request or skill addition
	// carries a blank skill label.
	ErrEmptySkill = errors.New("skill is empty")

	// ErrEmptyName is returned when a registration carries a blank name.
	ErrEmptyName = errors.New("name is empty")

	// ErrContactUnavailable indicates contact info is not readable for the
	// caller: the ledger gates it until payment is acknowledged.
	ErrContactUnavailable = errors.New("contact info not available or not authorized")
)
