package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestReadResource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/0xabc/resource/0xdef::skillshare::User" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"type":"0xdef::skillshare::User","data":{"name":"0x476f"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.ReadResource(context.Background(), "0xabc", "0xdef::skillshare::User")
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	if body.Name != "0x476f" {
		t.Errorf("name = %q", body.Name)
	}
}

func TestReadResourceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_code":"resource_not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.ReadResource(context.Background(), "0xabc", "t"); !IsNotFound(err) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := map[string]struct {
		status int
		check  func(error) bool
	}{
		"429 rate limited": {http.StatusTooManyRequests, IsRateLimited},
		"500 transient":    {http.StatusInternalServerError, IsTransient},
		"503 transient":    {http.StatusServiceUnavailable, IsTransient},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.ReadResource(context.Background(), "0xabc", "t")
			if err == nil || !tc.check(err) {
				t.Fatalf("status %d misclassified: %v", tc.status, err)
			}
		})
	}
}

func TestTransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	if _, err := c.ReadResource(context.Background(), "0xabc", "t"); !IsTransient(err) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestReadEventsPaginates(t *testing.T) {
	// 250 events across three pages.
	const total = 250
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit = %s, want 100", got)
		}
		var page []Event
		for i := start; i < start+100 && i < total; i++ {
			page = append(page, Event{
				SequenceNumber: uint64(i),
				Type:           "e",
				Data:           json.RawMessage(`{}`),
			})
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	evs, err := c.ReadEvents(context.Background(), "0xabc", "0xdef::skillshare::GlobalRequests", "request_events")
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(evs) != total {
		t.Fatalf("len = %d, want %d", len(evs), total)
	}
	for i, ev := range evs {
		if ev.SequenceNumber != uint64(i) {
			t.Fatalf("event %d has sequence %d", i, ev.SequenceNumber)
		}
	}
}

// A holder that never emitted the stream reads as an empty replay, not an
// error: registration happens lazily on chain.
func TestReadEventsMissingStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_code":"resource_not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	evs, err := c.ReadEvents(context.Background(), "0xabc", "tag", "request_events")
	if err != nil {
		t.Fatalf("expected empty replay, got %v", err)
	}
	if evs != nil {
		t.Errorf("expected nil events, got %d", len(evs))
	}
}

func TestEventSequenceNumberString(t *testing.T) {
	var ev Event
	if err := json.Unmarshal([]byte(`{"sequence_number":"42","type":"e","data":{}}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.SequenceNumber != 42 {
		t.Errorf("sequence = %d, want 42", ev.SequenceNumber)
	}
}

func TestView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/view" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Function  string   `json:"function"`
			TypeArgs  []string `json:"type_arguments"`
			Arguments []any    `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if body.Function != "0xdef::skillshare::user_exists" {
			t.Errorf("function = %s", body.Function)
		}
		fmt.Fprint(w, `[true]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	vals, err := c.View(context.Background(), "0xdef::skillshare::user_exists", []any{"0xabc"})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(vals) != 1 || string(vals[0]) != "true" {
		t.Fatalf("vals = %v", vals)
	}
}
