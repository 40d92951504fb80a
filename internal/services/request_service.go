// Package services – RequestService
//
// This file implements the read side of the negotiation lifecycle: one
// shared, memoized event aggregation feeding the pure status resolver, plus
// the per-viewer request listings, balance and coin-registration reads, the
// gated contact-info view, and a cancellable polling watcher. Multiple
// callers (learner view, teacher view, watchers) reuse a single cached
// snapshot instead of re-fetching the streams each.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-skillshare-backend/internal/cache"
	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/events"
	"github.com/tbourn/go-skillshare-backend/internal/status"
)

// snapshotKey is the cache key of the shared event aggregation.
const snapshotKey = "events:snapshot"

// RequestService resolves teach-request status and related account facts
// from the ledger, through the memo cache. Safe for concurrent use.
type RequestService struct {
	Agg      *events.Aggregator
	Reader   chain.LedgerReader
	Contract chain.Contract
	Cache    *cache.Cache
	Log      zerolog.Logger

	// StatusTTL bounds the staleness of the shared event snapshot;
	// BalanceTTL bounds balance reads, which should reflect recent
	// writes sooner than profile facts.
	StatusTTL  time.Duration
	BalanceTTL time.Duration

	// Now is the injected clock used for non-response eligibility.
	Now func() time.Time
}

// NewRequestService constructs a RequestService with the standard TTL tiers
// and the real clock.
func NewRequestService(agg *events.Aggregator, reader chain.LedgerReader, contract chain.Contract, memo *cache.Cache, log zerolog.Logger) *RequestService {
	return &RequestService{
		Agg:        agg,
		Reader:     reader,
		Contract:   contract,
		Cache:      memo,
		Log:        log,
		StatusTTL:  15 * time.Second,
		BalanceTTL: 10 * time.Second,
		Now:        time.Now,
	}
}

// snapshot returns the shared aggregation, memoized for StatusTTL. A
// transiently failing refresh serves the previous snapshot (the cache's
// stale fallback); a hard failure surfaces as ErrLedgerUnavailable with the
// classification preserved for errors.Is.
func (s *RequestService) snapshot(ctx context.Context) (*events.Snapshot, error) {
	snap, err := cache.GetOrCompute(ctx, s.Cache, snapshotKey, s.StatusTTL, func(ctx context.Context) (*events.Snapshot, error) {
		return s.Agg.Fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	return snap, nil
}

// Status resolves the canonical lifecycle state for one request id.
// An id with no request-created event returns ErrRequestNotFound.
func (s *RequestService) Status(ctx context.Context, id uint64) (*domain.TeachRequest, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Status",
		trace.WithAttributes(attribute.Int64("request.id", int64(id))),
	)
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	set, ok := snap.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrRequestNotFound, id)
	}
	req, err := status.Resolve(set, s.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: id %d", ErrRequestNotFound, id)
	}
	return req, nil
}

// ListForLearner returns the requests the given address created, newest
// request id last, with their accept/reject disposition.
func (s *RequestService) ListForLearner(ctx context.Context, learnerAddr string) ([]domain.RequestSummary, error) {
	return s.list(ctx, learnerAddr, func(set *events.Set) (string, bool) {
		if strings.EqualFold(set.Learner, learnerAddr) {
			return set.Teacher, true
		}
		return "", false
	})
}

// ListForTeacher returns the requests addressed to the given teacher.
func (s *RequestService) ListForTeacher(ctx context.Context, teacherAddr string) ([]domain.RequestSummary, error) {
	return s.list(ctx, teacherAddr, func(set *events.Set) (string, bool) {
		if strings.EqualFold(set.Teacher, teacherAddr) {
			return set.Learner, true
		}
		return "", false
	})
}

func (s *RequestService) list(ctx context.Context, addr string, match func(*events.Set) (string, bool)) ([]domain.RequestSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.RequestSummary{}
	for _, set := range snap.All() {
		counterparty, ok := match(set)
		if !ok {
			continue
		}
		out = append(out, domain.RequestSummary{
			ID:           set.ID,
			Counterparty: counterparty,
			Skill:        set.Skill,
			Accepted:     set.Accepted,
			Rejected:     set.Rejected,
		})
	}
	return out, nil
}

// Balance returns the address's coin balance in octas, or nil when the
// account holds no coin store (not registered for the coin).
func (s *RequestService) Balance(ctx context.Context, addr string) (*uint64, error) {
	return cache.GetOrCompute(ctx, s.Cache, "balance:"+strings.ToLower(addr), s.BalanceTTL, func(ctx context.Context) (*uint64, error) {
		raw, err := s.Reader.ReadResource(ctx, addr, s.Contract.AptosCoinStoreTag)
		if err != nil {
			if chain.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		var store struct {
			Coin struct {
				Value string `json:"value"`
			} `json:"coin"`
		}
		if err := json.Unmarshal(raw, &store); err != nil {
			return nil, err
		}
		v, err := strconv.ParseUint(store.Coin.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing coin value %q: %w", store.Coin.Value, err)
		}
		return &v, nil
	})
}

// CoinRegistered reports whether the address can hold the payment coin.
func (s *RequestService) CoinRegistered(ctx context.Context, addr string) (bool, error) {
	v, err := s.Balance(ctx, addr)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Contact returns the decoded contact string for a request, readable only
// once the ledger's access rule allows it (payment acknowledged). Every
// denial or absence maps to ErrContactUnavailable; the client has no
// independent way to distinguish the two.
func (s *RequestService) Contact(ctx context.Context, id uint64, requesterAddr string) (string, error) {
	vals, err := s.Reader.View(ctx, s.Contract.GetContactInfoFn, []any{strconv.FormatUint(id, 10), requesterAddr})
	if err != nil {
		if chain.IsTransient(err) {
			return "", fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", ErrContactUnavailable, err)
	}
	if len(vals) == 0 {
		return "", ErrContactUnavailable
	}
	return chain.DecodeText(vals[0]), nil
}

// Update is one emission of a Watch poll.
type Update struct {
	Request *domain.TeachRequest
	Err     error
}

// Watch polls the status of one request until ctx is cancelled, emitting on
// the returned channel after each completed poll. Polls run sequentially, so
// results arrive in completion order (last writer wins by definition); after
// cancellation nothing further is emitted, even if an in-flight read later
// resolves. The channel is closed on exit.
func (s *RequestService) Watch(ctx context.Context, id uint64, interval time.Duration) <-chan Update {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	out := make(chan Update, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			req, err := s.Status(ctx, id)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.Log.Debug().Err(err).Uint64("request_id", id).Msg("watch poll failed")
			}
			select {
			case out <- Update{Request: req, Err: err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// InvalidateStatus drops the shared snapshot so the next read refetches.
// Used by the transaction facade after a state-changing write.
func (s *RequestService) InvalidateStatus() {
	s.Cache.Invalidate(snapshotKey)
}
