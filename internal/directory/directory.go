// Package directory derives the set of registered participants and their
// current skill profiles. Identity comes from the registration event stream
// (who ever claimed a name); current state comes from point-in-time profile
// resource reads. The two are combined here because neither alone is the
// truth: the stream proves a registration happened, the resource shows what
// the profile looks like now. Addresses whose profile read fails are
// silently excluded — a claimed identity with an unreadable profile is not an
// error, it just has nothing to show.
package directory

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-skillshare-backend/internal/cache"
	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/schedule"
)

// registration is one decoded entry of the registration stream.
type registration struct {
	Address string
	Name    string
}

// regPayload is the raw payload of a registration event.
type regPayload struct {
	Addr string          `json:"addr"`
	Name json.RawMessage `json:"name"`
}

// userResource is the on-ledger User profile resource.
type userResource struct {
	Name        json.RawMessage `json:"name"`
	Skills      json.RawMessage `json:"skills"`
	ContactInfo json.RawMessage `json:"contact_info"`
}

// Directory lists participants and teacher profiles with memoized reads.
// Safe for concurrent use.
type Directory struct {
	Reader   chain.LedgerReader
	Contract chain.Contract
	Cache    *cache.Cache
	Sched    *schedule.Scheduler
	Log      zerolog.Logger

	// RegistryTTL caches the registration stream (slow-moving, long TTL);
	// ProfileTTL caches per-address profile snapshots.
	RegistryTTL time.Duration
	ProfileTTL  time.Duration
}

// New constructs a Directory with the standard TTL tiers.
func New(r chain.LedgerReader, c chain.Contract, memo *cache.Cache, s *schedule.Scheduler, log zerolog.Logger) *Directory {
	return &Directory{
		Reader:      r,
		Contract:    c,
		Cache:       memo,
		Sched:       s,
		Log:         log,
		RegistryTTL: 60 * time.Second,
		ProfileTTL:  60 * time.Second,
	}
}

// registered replays the registration stream once per TTL window and decodes
// address/name pairs in registration order.
func (d *Directory) registered(ctx context.Context) ([]registration, error) {
	return cache.GetOrCompute(ctx, d.Cache, "directory:registered", d.RegistryTTL, func(ctx context.Context) ([]registration, error) {
		var evs []chain.Event
		err := d.Sched.Do(ctx, func(ctx context.Context) error {
			var err error
			evs, err = d.Reader.ReadEvents(ctx, d.Contract.Address, d.Contract.RegistrationsTag, chain.StreamRegistrations)
			return err
		})
		if err != nil {
			return nil, err
		}
		out := make([]registration, 0, len(evs))
		for _, ev := range evs {
			var p regPayload
			if err := json.Unmarshal(ev.Data, &p); err != nil {
				continue
			}
			out = append(out, registration{Address: p.Addr, Name: chain.DecodeText(p.Name)})
		}
		return out, nil
	})
}

// Profile returns the current profile snapshot for addr, or nil when no User
// resource exists. Results are memoized per address.
func (d *Directory) Profile(ctx context.Context, addr string) (*domain.Participant, error) {
	return cache.GetOrCompute(ctx, d.Cache, "directory:profile:"+strings.ToLower(addr), d.ProfileTTL, func(ctx context.Context) (*domain.Participant, error) {
		raw, err := d.Reader.ReadResource(ctx, addr, d.Contract.UserStruct)
		if err != nil {
			if chain.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		var res userResource
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, err
		}
		return &domain.Participant{
			Address: addr,
			Name:    chain.DecodeText(res.Name),
			Skills:  chain.DecodeTextSlice(res.Skills),
			Contact: chain.DecodeText(res.ContactInfo),
		}, nil
	})
}

// Exists reports whether any User resource is registered at addr, via the
// contract's view function.
func (d *Directory) Exists(ctx context.Context, addr string) (bool, error) {
	return cache.GetOrCompute(ctx, d.Cache, "directory:exists:"+strings.ToLower(addr), d.RegistryTTL, func(ctx context.Context) (bool, error) {
		vals, err := d.Reader.View(ctx, d.Contract.UserExistsFn, []any{addr})
		if err != nil {
			return false, err
		}
		if len(vals) == 0 {
			return false, nil
		}
		var flag bool
		if err := json.Unmarshal(vals[0], &flag); err != nil {
			return false, err
		}
		return flag, nil
	})
}

// Participants returns every registered participant with a readable profile,
// in registration order, excluding excludeAddr when non-empty. Profile read
// failures drop the address from the result rather than failing the listing.
func (d *Directory) Participants(ctx context.Context, excludeAddr string) ([]domain.Participant, error) {
	regs, err := d.registered(ctx)
	if err != nil {
		return nil, err
	}

	exclude := strings.ToLower(excludeAddr)
	out := make([]domain.Participant, 0, len(regs))
	seen := make(map[string]struct{}, len(regs))
	for _, reg := range regs {
		key := strings.ToLower(reg.Address)
		if key == exclude {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		p, err := d.Profile(ctx, reg.Address)
		if err != nil || p == nil {
			if err != nil {
				d.Log.Debug().Err(err).Str("address", reg.Address).Msg("skipping unreadable profile")
			}
			continue
		}
		// Registration-event name wins for display when the resource
		// carries none.
		if p.Name == "" {
			p.Name = reg.Name
		}
		out = append(out, *p)
	}
	return out, nil
}

// Teachers returns the participants offering at least one skill, excluding
// the caller. Participants with empty skill lists exist in the underlying
// set but are not teachers.
func (d *Directory) Teachers(ctx context.Context, excludeAddr string) ([]domain.Participant, error) {
	all, err := d.Participants(ctx, excludeAddr)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Participant, 0, len(all))
	for _, p := range all {
		if p.IsTeacher() {
			out = append(out, p)
		}
	}
	return out, nil
}
