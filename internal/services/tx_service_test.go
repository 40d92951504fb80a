package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-skillshare-backend/internal/cache"
	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/events"
	"github.com/tbourn/go-skillshare-backend/internal/repo"
	"github.com/tbourn/go-skillshare-backend/internal/schedule"
)

// signerFake records submitted calls and returns canned results.
type signerFake struct {
	calls []chain.EntryCall
	hash  string
	err   error
}

func (s *signerFake) SignAndSubmit(ctx context.Context, call chain.EntryCall) (*chain.TxResult, error) {
	s.calls = append(s.calls, call)
	if s.err != nil {
		return nil, s.err
	}
	return &chain.TxResult{Hash: s.hash}, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func newTestTxService(t *testing.T, signer chain.Signer) (*TxService, *ledgerFake, func()) {
	t.Helper()
	f := &ledgerFake{streams: map[string][]chain.Event{
		chain.StreamRequests: {rawEvent(`{"id":"1","learner":"0xaa","teacher":"0xbb","skill":"x"}`)},
	}}
	s := schedule.New(0, 0)
	contract := chain.NewContract("0xdef")
	memo := cache.New()
	reqs := NewRequestService(events.NewAggregator(f, contract, s), f, contract, memo, zerolog.Nop())
	tx := NewTxService(signer, contract, testDB(t), memo, reqs, zerolog.Nop())
	return tx, f, s.Close
}

func TestSubmitRegister(t *testing.T) {
	signer := &signerFake{hash: "0xfeed"}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	res, err := tx.Submit(context.Background(), "0xaa", ActionRegister, "", SubmitRequest{
		Name:    "alice",
		Contact: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Hash != "0xfeed" {
		t.Errorf("hash = %s", res.Hash)
	}
	if len(signer.calls) != 1 {
		t.Fatalf("signer calls = %d", len(signer.calls))
	}
	call := signer.calls[0]
	if call.Function != tx.Contract.RegisterUserFn {
		t.Errorf("function = %s", call.Function)
	}
	if len(call.Arguments) != 2 {
		t.Errorf("arguments: %v", call.Arguments)
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]struct {
		action string
		req    SubmitRequest
		want   error
	}{
		"register blank name": {ActionRegister, SubmitRequest{Name: "  "}, ErrEmptyName},
		"add skill blank":     {ActionAddSkill, SubmitRequest{}, ErrEmptySkill},
		"request teach blank": {ActionRequestTeach, SubmitRequest{Teacher: "0xbb"}, ErrEmptySkill},
	}
	signer := &signerFake{hash: "0x1"}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tx.Submit(context.Background(), "0xaa", tc.action, "", tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if len(signer.calls) != 0 {
		t.Errorf("validation failures reached the signer: %v", signer.calls)
	}
}

func TestSubmitUnknownAction(t *testing.T) {
	tx, _, closeFn := newTestTxService(t, &signerFake{hash: "0x1"})
	defer closeFn()

	if _, err := tx.Submit(context.Background(), "0xaa", "teleport", "", SubmitRequest{}); err == nil {
		t.Fatal("expected unknown-action error")
	}
}

func TestSubmitNoSigner(t *testing.T) {
	tx, _, closeFn := newTestTxService(t, nil)
	defer closeFn()

	_, err := tx.Submit(context.Background(), "0xaa", ActionAccept, "", SubmitRequest{RequestID: 1})
	if !errors.Is(err, chain.ErrSubmission) {
		t.Fatalf("expected ErrSubmission, got %v", err)
	}
}

func TestSubmitIdempotentReplay(t *testing.T) {
	signer := &signerFake{hash: "0xabc"}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	ctx := context.Background()
	first, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	second, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if err != nil {
		t.Fatalf("replay Submit: %v", err)
	}
	if second.Hash != first.Hash {
		t.Errorf("replay hash = %s, want %s", second.Hash, first.Hash)
	}
	if len(signer.calls) != 1 {
		t.Errorf("signer calls = %d, want 1", len(signer.calls))
	}

	// A different caller with the same key is a different tuple.
	if _, err := tx.Submit(ctx, "0xcc", ActionAccept, "key-1", SubmitRequest{RequestID: 1}); err != nil {
		t.Fatalf("other caller Submit: %v", err)
	}
	if len(signer.calls) != 2 {
		t.Errorf("signer calls = %d, want 2", len(signer.calls))
	}
}

// A declined signature is the user's decision; it is not journaled and a
// retry with the same key signs again.
func TestSubmitUserRejected(t *testing.T) {
	signer := &signerFake{err: fmt.Errorf("declined: %w", chain.ErrUserRejected)}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	ctx := context.Background()
	_, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if !errors.Is(err, chain.ErrUserRejected) {
		t.Fatalf("expected ErrUserRejected, got %v", err)
	}

	signer.err = nil
	signer.hash = "0x2"
	res, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if res.Hash != "0x2" || len(signer.calls) != 2 {
		t.Errorf("retry did not sign again: hash=%s calls=%d", res.Hash, len(signer.calls))
	}
}

// A failed submission is journaled for diagnostics but never replayed.
func TestSubmitFailureNotReplayed(t *testing.T) {
	signer := &signerFake{err: fmt.Errorf("mempool full: %w", chain.ErrSubmission)}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	ctx := context.Background()
	if _, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1}); !errors.Is(err, chain.ErrSubmission) {
		t.Fatalf("expected ErrSubmission, got %v", err)
	}

	recs, err := tx.History(ctx, "0xaa", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 1 || recs[0].Status != domain.SubmissionFailed {
		t.Fatalf("journal: %+v", recs)
	}

	signer.err = nil
	signer.hash = "0x3"
	res, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if res.Hash != "0x3" || len(signer.calls) != 2 {
		t.Errorf("failed record replayed: hash=%s calls=%d", res.Hash, len(signer.calls))
	}
}

// After a failed attempt is journaled, a successful retry must take over
// the journal row so later submissions with the same key replay the
// committed hash instead of signing again.
func TestSubmitFailureThenCommitReplays(t *testing.T) {
	signer := &signerFake{err: fmt.Errorf("mempool full: %w", chain.ErrSubmission)}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	ctx := context.Background()
	if _, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1}); !errors.Is(err, chain.ErrSubmission) {
		t.Fatalf("expected ErrSubmission, got %v", err)
	}

	signer.err = nil
	signer.hash = "0x6"
	retry, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if retry.Hash != "0x6" || len(signer.calls) != 2 {
		t.Fatalf("retry: hash=%s calls=%d", retry.Hash, len(signer.calls))
	}

	recs, err := tx.History(ctx, "0xaa", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 1 || recs[0].Status != domain.SubmissionCommitted || recs[0].TxHash != "0x6" {
		t.Fatalf("journal after retry: %+v", recs)
	}

	replay, err := tx.Submit(ctx, "0xaa", ActionAccept, "key-1", SubmitRequest{RequestID: 1})
	if err != nil {
		t.Fatalf("replay Submit: %v", err)
	}
	if replay.Hash != "0x6" {
		t.Errorf("replay hash = %s, want 0x6", replay.Hash)
	}
	if len(signer.calls) != 2 {
		t.Errorf("replay signed again: calls = %d, want 2", len(signer.calls))
	}
}

// The payment-release pair drives the Completed terminal state; both target
// the request by id and drop the status snapshot.
func TestSubmitReleaseActions(t *testing.T) {
	signer := &signerFake{hash: "0x7"}
	tx, f, closeFn := newTestTxService(t, signer)
	defer closeFn()

	cases := map[string]struct {
		action string
		wantFn string
	}{
		"teacher requests release":    {ActionRequestRelease, tx.Contract.RequestReleaseFn},
		"learner confirms completion": {ActionConfirmComplete, tx.Contract.ConfirmCompleteFn},
	}

	ctx := context.Background()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := tx.Requests.Status(ctx, 1); err != nil {
				t.Fatalf("priming Status: %v", err)
			}
			before := f.eventReads.Load()

			if _, err := tx.Submit(ctx, "0xbb", tc.action, "", SubmitRequest{RequestID: 1}); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			call := signer.calls[len(signer.calls)-1]
			if call.Function != tc.wantFn {
				t.Errorf("function = %s, want %s", call.Function, tc.wantFn)
			}
			if len(call.Arguments) != 1 || call.Arguments[0] != "1" {
				t.Errorf("arguments: %v", call.Arguments)
			}

			if _, err := tx.Requests.Status(ctx, 1); err != nil {
				t.Fatalf("Status after write: %v", err)
			}
			if got := f.eventReads.Load(); got != before+9 {
				t.Errorf("event reads = %d, want %d after invalidation", got, before+9)
			}
		})
	}
}

// A committed write drops the shared snapshot so the next status read sees
// the new ledger state.
func TestSubmitInvalidatesStatus(t *testing.T) {
	signer := &signerFake{hash: "0x4"}
	tx, f, closeFn := newTestTxService(t, signer)
	defer closeFn()

	ctx := context.Background()
	if _, err := tx.Requests.Status(ctx, 1); err != nil {
		t.Fatalf("priming Status: %v", err)
	}
	if got := f.eventReads.Load(); got != 9 {
		t.Fatalf("event reads = %d, want 9", got)
	}

	if _, err := tx.Submit(ctx, "0xbb", ActionAccept, "", SubmitRequest{RequestID: 1}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := tx.Requests.Status(ctx, 1); err != nil {
		t.Fatalf("Status after write: %v", err)
	}
	if got := f.eventReads.Load(); got != 18 {
		t.Errorf("event reads = %d, want 18 after invalidation", got)
	}
}

func TestSubmitInvalidatesBalance(t *testing.T) {
	signer := &signerFake{hash: "0x5"}
	tx, f, closeFn := newTestTxService(t, signer)
	defer closeFn()
	f.balances = map[string]string{"0xaa": "100"}

	ctx := context.Background()
	if _, err := tx.Requests.Balance(ctx, "0xaa"); err != nil {
		t.Fatalf("priming Balance: %v", err)
	}
	if _, err := tx.Submit(ctx, "0xaa", ActionDeposit, "", SubmitRequest{RequestID: 1}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := tx.Requests.Balance(ctx, "0xaa"); err != nil {
		t.Fatalf("Balance after write: %v", err)
	}
	if got := f.resourceReads.Load(); got != 2 {
		t.Errorf("resource reads = %d, want 2", got)
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	signer := &signerFake{hash: "0x6"}
	tx, _, closeFn := newTestTxService(t, signer)
	defer closeFn()

	ctx := context.Background()
	for i, action := range []string{ActionAccept, ActionAcknowledge, ActionMarkComm} {
		if _, err := tx.Submit(ctx, "0xaa", action, fmt.Sprintf("key-%d", i), SubmitRequest{RequestID: 1}); err != nil {
			t.Fatalf("Submit %s: %v", action, err)
		}
	}

	recs, err := tx.History(ctx, "0xaa", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.CallerAddr != "0xaa" || rec.Status != domain.SubmissionCommitted {
			t.Errorf("record: %+v", rec)
		}
	}

	// Another caller's journal is empty.
	recs, err = tx.History(ctx, "0xzz", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("foreign journal leaked: %+v", recs)
	}
}
