// Package events pulls the contract's append-only event streams off the
// ledger and correlates them per teach-request id. The aggregator is the one
// place that knows which streams exist and how their payloads are keyed; it
// produces existence-indexed sets (plus first-occurrence timestamps) that the
// status resolver consumes.
//
// All nine streams are fetched for every aggregation and joined with a
// barrier: if any single stream fails, the whole aggregation fails. A status
// derived from a subset of streams could report a false negative (for
// example "not yet paid" while only the payment stream failed to load), so
// partial merges are forbidden.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/schedule"
)

// u64 decodes a ledger u64 that may be serialized as a JSON string or number.
type u64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (u *u64) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("events: parsing u64 %q: %w", s, err)
	}
	*u = u64(v)
	return nil
}

// requestPayload is the payload of one request-created event.
type requestPayload struct {
	ID      u64             `json:"id"`
	Learner string          `json:"learner"`
	Teacher string          `json:"teacher"`
	Skill   json.RawMessage `json:"skill"`
}

// idPayload is the payload shape of accept and reject events.
type idPayload struct {
	ID u64 `json:"id"`
}

// stagePayload is the payload shape of the later-stage streams, keyed by
// request_id with a chain timestamp in microseconds.
type stagePayload struct {
	RequestID u64 `json:"request_id"`
	Timestamp u64 `json:"timestamp"`
}

// Set is the correlated event view of one teach request. Presence of a kind
// is a boolean existence fact; cross-stream arrival order carries no meaning.
type Set struct {
	ID      uint64
	Learner string
	Teacher string
	Skill   string

	Accepted             bool
	Rejected             bool
	PaymentDeposited     bool
	Acknowledged         bool
	CommunicationStarted bool
	NonResponseReported  bool
	Completed            bool
	Refunded             bool

	// First-occurrence timestamps, nil until the kind is observed.
	PaymentTime       *time.Time
	AckTime           *time.Time
	CommunicationTime *time.Time
}

// Snapshot is one fail-closed aggregation of every stream, indexed by
// request id.
type Snapshot struct {
	byID  map[uint64]*Set
	order []uint64
}

// Get returns the event set for id, or ok=false when no request-created
// event exists for it.
func (s *Snapshot) Get(id uint64) (*Set, bool) {
	set, ok := s.byID[id]
	return set, ok
}

// All returns every known event set in request-creation order.
func (s *Snapshot) All() []*Set {
	out := make([]*Set, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Aggregator fetches the contract's streams through the request scheduler.
// Safe for concurrent use; it holds no mutable state between fetches.
type Aggregator struct {
	Reader   chain.LedgerReader
	Contract chain.Contract
	Sched    *schedule.Scheduler
}

// NewAggregator wires an Aggregator over the given reader and scheduler.
func NewAggregator(r chain.LedgerReader, c chain.Contract, s *schedule.Scheduler) *Aggregator {
	return &Aggregator{Reader: r, Contract: c, Sched: s}
}

// Fetch replays all nine streams concurrently and joins them into a
// Snapshot. The goroutines fan out here, but every remote read is funneled
// through the scheduler, so the fullnode still sees one spaced call at a
// time. Any stream failure fails the whole fetch.
func (a *Aggregator) Fetch(ctx context.Context) (*Snapshot, error) {
	streams := []string{
		chain.StreamRequests,
		chain.StreamAccepts,
		chain.StreamRejects,
		chain.StreamPayments,
		chain.StreamAcks,
		chain.StreamCommunications,
		chain.StreamNonResponses,
		chain.StreamReleases,
		chain.StreamRefunds,
	}

	results := make([][]chain.Event, len(streams))
	g, gctx := errgroup.WithContext(ctx)
	for i, field := range streams {
		i, field := i, field // per-iteration copies: go directive < 1.22
		g.Go(func() error {
			return a.Sched.Do(gctx, func(ctx context.Context) error {
				evs, err := a.Reader.ReadEvents(ctx, a.Contract.Address, a.Contract.GlobalRequestsTag, field)
				if err != nil {
					return fmt.Errorf("stream %s: %w", field, err)
				}
				results[i] = evs
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("events: aggregation failed: %w", err)
	}

	return merge(results)
}

// merge indexes the fetched streams by request id. Only first occurrence
// matters: streams are append-only and a kind is an existence fact.
func merge(results [][]chain.Event) (*Snapshot, error) {
	snap := &Snapshot{byID: make(map[uint64]*Set)}

	for _, ev := range results[0] { // request_events
		var p requestPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return nil, fmt.Errorf("events: request payload: %w", err)
		}
		id := uint64(p.ID)
		if _, ok := snap.byID[id]; ok {
			continue
		}
		snap.byID[id] = &Set{
			ID:      id,
			Learner: p.Learner,
			Teacher: p.Teacher,
			Skill:   chain.DecodeText(p.Skill),
		}
		snap.order = append(snap.order, id)
	}

	mark := func(evs []chain.Event, set func(*Set)) error {
		for _, ev := range evs {
			var p idPayload
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				return fmt.Errorf("events: payload: %w", err)
			}
			if s, ok := snap.byID[uint64(p.ID)]; ok {
				set(s)
			}
		}
		return nil
	}
	markStage := func(evs []chain.Event, set func(*Set, *time.Time)) error {
		for _, ev := range evs {
			var p stagePayload
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				return fmt.Errorf("events: stage payload: %w", err)
			}
			s, ok := snap.byID[uint64(p.RequestID)]
			if !ok {
				continue
			}
			var ts *time.Time
			if p.Timestamp > 0 {
				t := time.UnixMicro(int64(p.Timestamp)).UTC()
				ts = &t
			}
			set(s, ts)
		}
		return nil
	}

	if err := mark(results[1], func(s *Set) { s.Accepted = true }); err != nil {
		return nil, err
	}
	if err := mark(results[2], func(s *Set) { s.Rejected = true }); err != nil {
		return nil, err
	}
	if err := markStage(results[3], func(s *Set, ts *time.Time) {
		if !s.PaymentDeposited {
			s.PaymentDeposited = true
			s.PaymentTime = ts
		}
	}); err != nil {
		return nil, err
	}
	if err := markStage(results[4], func(s *Set, ts *time.Time) {
		if !s.Acknowledged {
			s.Acknowledged = true
			s.AckTime = ts
		}
	}); err != nil {
		return nil, err
	}
	if err := markStage(results[5], func(s *Set, ts *time.Time) {
		if !s.CommunicationStarted {
			s.CommunicationStarted = true
			s.CommunicationTime = ts
		}
	}); err != nil {
		return nil, err
	}
	if err := markStage(results[6], func(s *Set, _ *time.Time) { s.NonResponseReported = true }); err != nil {
		return nil, err
	}
	if err := markStage(results[7], func(s *Set, _ *time.Time) { s.Completed = true }); err != nil {
		return nil, err
	}
	if err := markStage(results[8], func(s *Set, _ *time.Time) { s.Refunded = true }); err != nil {
		return nil, err
	}

	return snap, nil
}
