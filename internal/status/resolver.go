// Package status derives the canonical lifecycle state of a teach request
// from its correlated event set. Resolution is a pure function: identical
// inputs yield identical output, no I/O happens here, and errors from
// fetching never reach this layer — the resolver only sees successful
// aggregations.
//
// The ladder, entered strictly from the immediate predecessor:
//
//	Requested → Accepted | Rejected → PaymentDeposited → Acknowledged
//	         → CommunicationStarted → Completed
//
// with the alternate branch Acknowledged → NonResponseReported → Refunded,
// reachable only when no communication event exists and the response window
// has elapsed since payment. A rejected flag is terminal and overrides every
// later-stage flag even on input the contract should never produce.
package status

import (
	"errors"
	"time"

	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/events"
)

// ErrRequestNotFound marks a request id with no request-created event. It is
// a distinct, reportable condition, never an empty default status.
var ErrRequestNotFound = errors.New("status: teach request not found")

// Resolve computes the TeachRequest snapshot for one event set at the given
// instant. now only influences NonResponseEligible; every flag is a pure
// existence fact from the set.
func Resolve(set *events.Set, now time.Time) (*domain.TeachRequest, error) {
	if set == nil {
		return nil, ErrRequestNotFound
	}

	req := &domain.TeachRequest{
		ID:      set.ID,
		Learner: set.Learner,
		Teacher: set.Teacher,
		Skill:   set.Skill,

		Accepted:             set.Accepted,
		Rejected:             set.Rejected,
		PaymentDeposited:     set.PaymentDeposited,
		Acknowledged:         set.Acknowledged,
		CommunicationStarted: set.CommunicationStarted,
		NonResponseReported:  set.NonResponseReported,
		Completed:            set.Completed,
		Refunded:             set.Refunded,

		PaymentTime:       set.PaymentTime,
		AckTime:           set.AckTime,
		CommunicationTime: set.CommunicationTime,
	}

	req.Status = derive(req)
	req.NonResponseEligible = eligible(req, now)
	return req, nil
}

// derive walks the ladder top-down and returns the highest-order state whose
// flag and full prerequisite chain are present.
func derive(r *domain.TeachRequest) domain.RequestStatus {
	// Terminal disposition first: a reject overrides anything later, even
	// if impossible flags coexist.
	if r.Rejected {
		return domain.StatusRejected
	}

	paid := r.Accepted && r.PaymentDeposited
	acked := paid && r.Acknowledged
	comm := acked && r.CommunicationStarted

	switch {
	// Completed and Refunded are mutually exclusive terminals; on
	// impossible input where both appear, the communication branch wins so
	// the request keeps reading as forward progress.
	case comm && r.Completed:
		return domain.StatusCompleted
	case acked && !r.CommunicationStarted && r.NonResponseReported && r.Refunded:
		return domain.StatusRefunded
	case acked && !r.CommunicationStarted && r.NonResponseReported:
		return domain.StatusNonResponseReported
	case comm:
		return domain.StatusCommunicationStarted
	case acked:
		return domain.StatusAcknowledged
	case paid:
		return domain.StatusPaymentDeposited
	case r.Accepted:
		return domain.StatusAccepted
	default:
		return domain.StatusRequested
	}
}

// eligible reports whether a non-response report could be filed now:
// acknowledged, no communication observed, not already terminal, and the
// response window has elapsed since the payment deposit.
func eligible(r *domain.TeachRequest, now time.Time) bool {
	if !r.Acknowledged || r.CommunicationStarted || r.NonResponseReported {
		return false
	}
	if r.Status.Terminal() {
		return false
	}
	if r.PaymentTime == nil {
		return false
	}
	return now.Sub(*r.PaymentTime) >= domain.ResponseWindow
}
