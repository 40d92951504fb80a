// Fullnode REST client.
//
// This file implements the LedgerReader capability against an Aptos-style
// fullnode API: point-in-time account resource reads, full replay of named
// append-only event streams (paginated internally), and side-effect-free view
// calls. The client is transport only; it never interprets event payloads
// beyond JSON framing, and it classifies failures into the package error
// taxonomy so upper layers can decide between fail-closed, retry, and
// stale-cache fallback.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// eventPageSize is the page size used when replaying a stream. The fullnode
// caps pages at 100 entries.
const eventPageSize = 100

// Event is one record of an append-only stream: an opaque payload plus the
// stream-local sequence number. Ordering is per stream only; sequence numbers
// must not be compared across streams.
type Event struct {
	SequenceNumber uint64          `json:"sequence_number,string"`
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data"`
}

// LedgerReader is the read capability consumed by the aggregation and
// directory layers. Implementations must be safe for concurrent use and must
// honor the context for cancellation.
type LedgerReader interface {
	// ReadResource fetches the current state of one typed resource under
	// an account. Absence is reported as ErrNotFound.
	ReadResource(ctx context.Context, address, typeTag string) (json.RawMessage, error)

	// ReadEvents replays one named event stream of a holder resource in
	// full, in ascending sequence order. Expensive: paginates internally.
	ReadEvents(ctx context.Context, holder, streamTypeTag, fieldName string) ([]Event, error)

	// View executes a read-only contract function and returns its raw
	// return values.
	View(ctx context.Context, functionID string, args []any) ([]json.RawMessage, error)
}

var chainCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_requests_total",
		Help: "Total number of fullnode API calls by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(chainCalls)
}

// Client is the HTTP implementation of LedgerReader backed by a fullnode
// REST endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ LedgerReader = (*Client)(nil)

// NewClient constructs a Client for the given fullnode base URL
// (e.g. "https://fullnode.devnet.aptoslabs.com/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    trimSlash(baseURL),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ReadResource implements LedgerReader.
func (c *Client) ReadResource(ctx context.Context, address, typeTag string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/accounts/%s/resource/%s", c.BaseURL, url.PathEscape(address), url.PathEscape(typeTag))
	var out struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, "read_resource", u, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ReadEvents implements LedgerReader. It walks the stream from sequence 0 in
// fixed-size pages until a short page signals the end.
func (c *Client) ReadEvents(ctx context.Context, holder, streamTypeTag, fieldName string) ([]Event, error) {
	var all []Event
	for start := uint64(0); ; start += eventPageSize {
		u := fmt.Sprintf("%s/accounts/%s/events/%s/%s?start=%s&limit=%d",
			c.BaseURL,
			url.PathEscape(holder),
			url.PathEscape(streamTypeTag),
			url.PathEscape(fieldName),
			strconv.FormatUint(start, 10),
			eventPageSize,
		)
		var page []Event
		if err := c.getJSON(ctx, "read_events", u, &page); err != nil {
			// A holder with no stream yet reads as an empty replay,
			// not a failure: registration happens lazily on chain.
			if IsNotFound(err) && start == 0 {
				return nil, nil
			}
			return nil, err
		}
		all = append(all, page...)
		if len(page) < eventPageSize {
			return all, nil
		}
	}
}

// View implements LedgerReader.
func (c *Client) View(ctx context.Context, functionID string, args []any) ([]json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(map[string]any{
		"function":       functionID,
		"type_arguments": []string{},
		"arguments":      args,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/view", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out []json.RawMessage
	if err := c.do("view", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

// do executes a request, classifies the outcome, and decodes a successful
// body into out.
func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		chainCalls.WithLabelValues(op, "transport_error").Inc()
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		chainCalls.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return statusError(resp.StatusCode, string(detail))
	}

	chainCalls.WithLabelValues(op, "ok").Inc()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("chain: decoding %s response: %w", op, err)
	}
	return nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
