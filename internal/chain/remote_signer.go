// Remote signer client.
//
// The backend never holds keys. Writes are delegated to a signer sidecar
// (typically a wallet bridge) that receives the prepared entry call, asks
// the wallet owner to approve it, and submits the signed transaction to the
// chain. The sidecar speaks a single endpoint: POST /sign-submit with the
// EntryCall JSON, answering {"hash": "0x…"} on success.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RemoteSigner implements Signer against a signer sidecar.
type RemoteSigner struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ Signer = (*RemoteSigner)(nil)

// NewRemoteSigner constructs a RemoteSigner for the given sidecar base URL.
// The timeout is generous: the wallet owner may take a while to approve.
func NewRemoteSigner(baseURL string) *RemoteSigner {
	return &RemoteSigner{
		BaseURL:    trimSlash(baseURL),
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// SignAndSubmit implements Signer.
//
// Status mapping:
//   - 200: committed, body carries the transaction hash
//   - 409: the wallet owner declined the signature (ErrUserRejected)
//   - anything else: ErrSubmission with the sidecar's detail attached
func (s *RemoteSigner) SignAndSubmit(ctx context.Context, call EntryCall) (*TxResult, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/sign-submit", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		chainCalls.WithLabelValues("sign_submit", "transport_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		chainCalls.WithLabelValues("sign_submit", "rejected").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUserRejected, call.Function)
	}
	if resp.StatusCode >= 300 {
		chainCalls.WithLabelValues("sign_submit", strconv.Itoa(resp.StatusCode)).Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSubmission, resp.StatusCode, string(detail))
	}

	var out TxResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("chain: decoding sign-submit response: %w", err)
	}
	chainCalls.WithLabelValues("sign_submit", "ok").Inc()
	return &out, nil
}
