// Package domain defines the core model types for the skill-share ledger
// client: participants, teach requests (negotiations), and the lifecycle
// status derived from the ledger's event streams. These types are shared
// across the chain, service, and HTTP layers and carry no transport concerns.
package domain

import "time"

// LessonPriceOctas is the fixed escrow amount for one lesson, in octas
// (1 APT = 1e8 octas).
const LessonPriceOctas uint64 = 100_000_000

// ResponseWindow is how long a learner must wait after depositing payment
// before a non-response report becomes eligible.
const ResponseWindow = 24 * time.Hour

// Participant is a registered user of the skill-share contract.
//
// Fields:
//   - Address: account address, unique identity on the ledger.
//   - Name: display name, decoded from the registration event.
//   - Skills: offered skills in insertion order (first skill is the
//     default selection in teaching views).
//   - Contact: contact string set at registration; never mutated.
type Participant struct {
	Address string   `json:"address"`
	Name    string   `json:"name"`
	Skills  []string `json:"skills"`
	Contact string   `json:"contact,omitempty"`
}

// IsTeacher reports whether the participant offers at least one skill and
// therefore appears in teacher listings.
func (p Participant) IsTeacher() bool { return len(p.Skills) > 0 }

// RequestStatus is the canonical lifecycle state of a teach request. There is
// no status field on the ledger; this value is derived by correlating the
// contract's event streams per request id.
type RequestStatus string

const (
	StatusRequested            RequestStatus = "requested"
	StatusAccepted             RequestStatus = "accepted"
	StatusRejected             RequestStatus = "rejected"
	StatusPaymentDeposited     RequestStatus = "payment_deposited"
	StatusAcknowledged         RequestStatus = "acknowledged"
	StatusCommunicationStarted RequestStatus = "communication_started"
	StatusNonResponseReported  RequestStatus = "non_response_reported"
	StatusCompleted            RequestStatus = "completed"
	StatusRefunded             RequestStatus = "refunded"
)

// Terminal reports whether no further forward transition is possible.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusRefunded:
		return true
	}
	return false
}

// TeachRequest is one negotiation between a learner and a teacher over a
// skill, identified by the integer id the contract assigned at creation.
// Flags accumulate monotonically as correlated events are observed; a
// request is never deleted.
//
// Invariants (enforced by the contract, preserved by the resolver):
//   - Accepted and Rejected are mutually exclusive and immutable once set.
//   - Completed and Refunded are mutually exclusive terminal outcomes.
//   - Each later-stage flag requires its predecessor: Acknowledged needs
//     PaymentDeposited, CommunicationStarted needs Acknowledged, and a
//     non-response report needs Acknowledged plus an elapsed ResponseWindow
//     since PaymentTime.
type TeachRequest struct {
	ID      uint64 `json:"id"`
	Learner string `json:"learner"`
	Teacher string `json:"teacher"`
	Skill   string `json:"skill"`

	Accepted             bool `json:"accepted"`
	Rejected             bool `json:"rejected"`
	PaymentDeposited     bool `json:"payment_deposited"`
	Acknowledged         bool `json:"acknowledged"`
	CommunicationStarted bool `json:"communication_started"`
	NonResponseReported  bool `json:"non_response_reported"`
	Completed            bool `json:"completed"`
	Refunded             bool `json:"refunded"`

	PaymentTime       *time.Time `json:"payment_time,omitempty"`
	AckTime           *time.Time `json:"acknowledgment_time,omitempty"`
	CommunicationTime *time.Time `json:"communication_time,omitempty"`

	// Status is the resolved lifecycle state for the flag set above.
	Status RequestStatus `json:"status"`

	// NonResponseEligible is true when the learner may report teacher
	// non-response: acknowledged, no communication observed, and at least
	// ResponseWindow elapsed since payment. The flag itself only becomes
	// true once the report event is observed on the ledger.
	NonResponseEligible bool `json:"non_response_eligible"`
}

// RequestSummary is the per-viewer list entry used by learner and teacher
// dashboards. Counterparty is the other party's address relative to the
// viewer role.
type RequestSummary struct {
	ID           uint64 `json:"id"`
	Counterparty string `json:"counterparty"`
	Skill        string `json:"skill"`
	Accepted     bool   `json:"accepted"`
	Rejected     bool   `json:"rejected"`
}
