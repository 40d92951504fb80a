// Contract identifier table.
//
// Every function, struct, and event-stream identifier used against the
// ledger is a "{address}::skillshare::{symbol}" string parameterized by the
// deployed contract address. The table is assembled once at startup from
// configuration and passed around as a value; nothing else in the codebase
// concatenates identifier strings.
package chain

import "fmt"

// Event stream field names on the GlobalRequests holder resource.
const (
	StreamRequests       = "request_events"
	StreamAccepts        = "accept_events"
	StreamRejects        = "rejected_events"
	StreamPayments       = "payment_events"
	StreamAcks           = "acknowledgment_events"
	StreamCommunications = "communication_events"
	StreamNonResponses   = "non_response_events"
	StreamReleases       = "release_events"
	StreamRefunds        = "refund_events"

	// StreamRegistrations is the field name on the RegistrationEvents holder.
	StreamRegistrations = "handle"
)

// Contract holds the fully qualified identifiers for one deployment of the
// skillshare module.
type Contract struct {
	// Address is the account that published the module and holds the
	// global event streams.
	Address string

	// Entry functions.
	RegisterUserFn    string
	AddSkillFn        string
	RequestTeachFn    string
	AcceptRequestFn   string
	RejectRequestFn   string
	DepositPaymentFn  string
	AcknowledgeFn     string
	MarkCommFn        string
	RequestReleaseFn  string
	ConfirmCompleteFn string
	ReportNonRespFn   string
	ClaimRefundFn     string
	RegisterForCoinFn string

	// View functions.
	UserExistsFn     string
	GetContactInfoFn string

	// Struct / resource type tags.
	UserStruct        string
	GlobalRequestsTag string
	RegistrationsTag  string
	AptosCoinStoreTag string
}

// NewContract builds the identifier table for the module published at addr.
func NewContract(addr string) Contract {
	sym := func(name string) string { return fmt.Sprintf("%s::skillshare::%s", addr, name) }
	return Contract{
		Address: addr,

		RegisterUserFn:    sym("register_user_with_contact"),
		AddSkillFn:        sym("add_skill"),
		RequestTeachFn:    sym("request_teach"),
		AcceptRequestFn:   sym("accept_request"),
		RejectRequestFn:   sym("reject_request"),
		DepositPaymentFn:  sym("deposit_payment"),
		AcknowledgeFn:     sym("acknowledge_payment"),
		MarkCommFn:        sym("learner_mark_communication_started"),
		RequestReleaseFn:  sym("teacher_request_release"),
		ConfirmCompleteFn: sym("learner_confirm_completion"),
		ReportNonRespFn:   sym("learner_report_non_response"),
		ClaimRefundFn:     sym("claim_refund"),
		RegisterForCoinFn: sym("register_for_aptos_coin"),

		UserExistsFn:     sym("user_exists"),
		GetContactInfoFn: sym("get_contact_info"),

		UserStruct:        sym("User"),
		GlobalRequestsTag: sym("GlobalRequests"),
		RegistrationsTag:  sym("RegistrationEvents"),
		AptosCoinStoreTag: "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>",
	}
}
