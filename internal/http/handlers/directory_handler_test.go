package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/services"
)

func teacherFixtures(n int) []domain.Participant {
	out := make([]domain.Participant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Participant{
			Address: fmt.Sprintf("0x%02x", i+1),
			Name:    fmt.Sprintf("teacher-%d", i+1),
			Skills:  []string{"Go"},
		})
	}
	return out
}

func TestListTeachersPagination(t *testing.T) {
	dir := &fakeDirectory{teachers: teacherFixtures(45)}
	r := newTestRouter(New(&fakeRequests{}, dir, &fakeTx{}))

	w, body := doJSON(t, r, http.MethodGet, "/teachers?page=2&page_size=20", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	rows := body["teachers"].([]any)
	if len(rows) != 20 {
		t.Fatalf("page len = %d, want 20", len(rows))
	}
	if rows[0].(map[string]any)["address"] != "0x15" { // item 21
		t.Errorf("first item of page 2: %v", rows[0])
	}

	p := body["pagination"].(map[string]any)
	if p["page"] != float64(2) || p["total"] != float64(45) || p["total_pages"] != float64(3) || p["has_next"] != true {
		t.Errorf("pagination: %v", p)
	}
}

func TestListTeachersPaginationBounds(t *testing.T) {
	dir := &fakeDirectory{teachers: teacherFixtures(5)}
	r := newTestRouter(New(&fakeRequests{}, dir, &fakeTx{}))

	cases := map[string]struct {
		query    string
		wantLen  int
		wantPage float64
	}{
		"defaults":         {"", 5, 1},
		"zero page":        {"?page=0", 5, 1},
		"oversized size":   {"?page_size=500", 5, 1},
		"page beyond data": {"?page=9", 0, 9},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w, body := doJSON(t, r, http.MethodGet, "/teachers"+tc.query, "", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			rows := body["teachers"].([]any)
			if len(rows) != tc.wantLen {
				t.Errorf("len = %d, want %d", len(rows), tc.wantLen)
			}
			if body["pagination"].(map[string]any)["page"] != tc.wantPage {
				t.Errorf("page: %v", body["pagination"])
			}
		})
	}
}

func TestListTeachersExcludesCaller(t *testing.T) {
	dir := &fakeDirectory{teachers: teacherFixtures(1)}
	r := newTestRouter(New(&fakeRequests{}, dir, &fakeTx{}))

	if _, _ = doJSON(t, r, http.MethodGet, "/teachers", "0xAA", ""); dir.lastExclude != "0xaa" {
		t.Errorf("exclude = %q, want normalized caller", dir.lastExclude)
	}

	// Anonymous listing excludes nobody.
	if _, _ = doJSON(t, r, http.MethodGet, "/teachers", "", ""); dir.lastExclude != "" {
		t.Errorf("anonymous exclude = %q", dir.lastExclude)
	}
}

func TestListTeachersLedgerDown(t *testing.T) {
	dir := &fakeDirectory{err: fmt.Errorf("%w: streams", services.ErrLedgerUnavailable)}
	r := newTestRouter(New(&fakeRequests{}, dir, &fakeTx{}))

	w, body := doJSON(t, r, http.MethodGet, "/teachers", "", "")
	if w.Code != http.StatusServiceUnavailable || body["code"] != ErrCodeLedgerUnavailable {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}
}

func TestGetProfile(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*domain.Participant{
		"0xaa": {Address: "0xaa", Name: "alice", Skills: []string{"Go", "chess"}},
	}}
	r := newTestRouter(New(&fakeRequests{}, dir, &fakeTx{}))

	w, body := doJSON(t, r, http.MethodGet, "/profiles/0xAA", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p := body["profile"].(map[string]any)
	if p["name"] != "alice" || len(p["skills"].([]any)) != 2 {
		t.Errorf("profile: %v", p)
	}
}

func TestGetProfileNotRegistered(t *testing.T) {
	dir := &fakeDirectory{profiles: map[string]*domain.Participant{}}
	r := newTestRouter(New(&fakeRequests{}, dir, &fakeTx{}))

	w, body := doJSON(t, r, http.MethodGet, "/profiles/0x99", "", "")
	if w.Code != http.StatusNotFound || body["code"] != ErrCodeNotFound {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}
}

func TestGetProfileBadAddress(t *testing.T) {
	r := newTestRouter(New(&fakeRequests{}, &fakeDirectory{}, &fakeTx{}))

	// The path parameter follows the same rule as the caller header: 0x
	// plus 1..64 hex digits.
	for _, addr := range []string{"alice", "0x", "0xzz", "0x" + strings.Repeat("a", 65)} {
		w, body := doJSON(t, r, http.MethodGet, "/profiles/"+addr, "", "")
		if w.Code != http.StatusBadRequest || body["code"] != ErrCodeBadAddress {
			t.Fatalf("addr %q: status=%d body=%v", addr, w.Code, body)
		}
	}
}

func TestGetBalance(t *testing.T) {
	bal := uint64(250_000_000)
	reqs := &fakeRequests{balances: map[string]*uint64{"0xaa": &bal}}
	r := newTestRouter(New(reqs, &fakeDirectory{}, &fakeTx{}))

	w, body := doJSON(t, r, http.MethodGet, "/profiles/0xaa/balance", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["balance"] != float64(250_000_000) || body["registered"] != true {
		t.Errorf("body: %v", body)
	}

	// No coin store: balance null, registered false.
	w, body = doJSON(t, r, http.MethodGet, "/profiles/0xbb/balance", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["balance"] != nil || body["registered"] != false {
		t.Errorf("unregistered body: %v", body)
	}
}
