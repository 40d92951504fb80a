// Signer capability.
//
// State-changing operations never go through the read client: they are
// packaged as entry-function calls and handed to an external wallet that
// signs and submits them. The core only ever sees success or a classified
// failure; transaction internals stay opaque. This boundary is what makes
// status derivation sound — the facade calls built here are the only way
// state-changing events are produced.
package chain

import "context"

// EntryCall is one entry-function invocation: a fully qualified function
// identifier plus positional arguments, already boundary-encoded (text fields
// as byte arrays, ids as decimal strings).
type EntryCall struct {
	Function  string `json:"function"`
	Arguments []any  `json:"arguments"`
}

// TxResult is the outcome of a signed, submitted transaction.
type TxResult struct {
	Hash string `json:"hash"`
}

// Signer signs and submits an entry call. Failure modes are ErrUserRejected
// (the wallet owner declined) and ErrSubmission (the fullnode refused the
// signed transaction); both should be returned wrapped so errors.Is works.
type Signer interface {
	SignAndSubmit(ctx context.Context, call EntryCall) (*TxResult, error)
}
