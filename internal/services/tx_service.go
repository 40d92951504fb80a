// Package services – TxService
//
// This file implements the transaction facade: the only path through which
// state-changing ledger events are produced. Each operation packages an
// entry-function call in the contract's expected shape, hands it to the
// external signer, journals the submission locally, and invalidates exactly
// the cache keys the write is known to have dirtied. No business logic lives
// here; the ledger's own transition rules stay authoritative.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-skillshare-backend/internal/cache"
	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/repo"
)

// Facade action names, used for journaling and the HTTP write endpoint.
const (
	ActionRegister        = "register"
	ActionAddSkill        = "add_skill"
	ActionRequestTeach    = "request_teach"
	ActionAccept          = "accept"
	ActionReject          = "reject"
	ActionDeposit         = "deposit_payment"
	ActionAcknowledge     = "acknowledge_payment"
	ActionMarkComm        = "mark_communication"
	ActionRequestRelease  = "request_release"
	ActionConfirmComplete = "confirm_completion"
	ActionReportNonResp   = "report_non_response"
	ActionClaimRefund     = "claim_refund"
	ActionRegisterForCoin = "register_for_coin"
)

// TxService builds and submits ledger writes through the external signer.
type TxService struct {
	Signer   chain.Signer
	Contract chain.Contract
	DB       *gorm.DB
	Cache    *cache.Cache
	Requests *RequestService
	Log      zerolog.Logger

	// JournalTTL is the idempotent-replay window for journaled writes.
	JournalTTL time.Duration
}

// NewTxService constructs a TxService with a 24h replay window.
func NewTxService(signer chain.Signer, contract chain.Contract, db *gorm.DB, memo *cache.Cache, reqs *RequestService, log zerolog.Logger) *TxService {
	return &TxService{
		Signer:     signer,
		Contract:   contract,
		DB:         db,
		Cache:      memo,
		Requests:   reqs,
		Log:        log,
		JournalTTL: 24 * time.Hour,
	}
}

// Submit executes one facade action for callerAddr. idemKey, when non-empty,
// makes the write replayable: a repeated submission within the journal
// window returns the recorded transaction hash without signing again.
func (t *TxService) Submit(ctx context.Context, callerAddr, action, idemKey string, req SubmitRequest) (*chain.TxResult, error) {
	tr := otel.Tracer("services/TxService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("tx.action", action),
			attribute.Bool("tx.idempotent", idemKey != ""),
		),
	)
	defer span.End()

	if t.Signer == nil {
		return nil, fmt.Errorf("%w: no signer configured", chain.ErrSubmission)
	}

	call, invalidate, err := t.build(callerAddr, action, req)
	if err != nil {
		return nil, err
	}

	if idemKey != "" && t.DB != nil {
		if rec, err := repo.GetSubmission(ctx, t.DB, callerAddr, action, idemKey, time.Now().UTC()); err == nil && rec.Status == domain.SubmissionCommitted {
			t.Log.Info().Str("action", action).Str("tx", rec.TxHash).Msg("replaying journaled submission")
			return &chain.TxResult{Hash: rec.TxHash}, nil
		}
	}

	res, err := t.Signer.SignAndSubmit(ctx, call)
	if err != nil {
		// A declined signature is the user's decision, not a failure to
		// journal or retry.
		if !errors.Is(err, chain.ErrUserRejected) {
			t.journal(ctx, callerAddr, action, idemKey, call, "", domain.SubmissionFailed)
		}
		return nil, err
	}

	t.journal(ctx, callerAddr, action, idemKey, call, res.Hash, domain.SubmissionCommitted)
	invalidate()
	return res, nil
}

// SubmitRequest carries the per-action arguments of a facade call. Unused
// fields are ignored by actions that do not need them.
type SubmitRequest struct {
	Name      string `json:"name,omitempty"`
	Contact   string `json:"contact,omitempty"`
	Skill     string `json:"skill,omitempty"`
	Teacher   string `json:"teacher,omitempty"`
	RequestID uint64 `json:"request_id,omitempty"`
}

// build maps an action to its entry call and to the cache keys it dirties.
func (t *TxService) build(callerAddr, action string, req SubmitRequest) (chain.EntryCall, func(), error) {
	none := chain.EntryCall{}
	id := strconv.FormatUint(req.RequestID, 10)
	lowAddr := strings.ToLower(callerAddr)

	invalidateStatus := func() { t.Requests.InvalidateStatus() }
	invalidateProfile := func() {
		t.Cache.Invalidate("directory:registered")
		t.Cache.Invalidate("directory:profile:" + lowAddr)
		t.Cache.Invalidate("directory:exists:" + lowAddr)
	}
	invalidateBalance := func() { t.Cache.Invalidate("balance:" + lowAddr) }

	switch action {
	case ActionRegister:
		if strings.TrimSpace(req.Name) == "" {
			return none, nil, ErrEmptyName
		}
		return chain.EntryCall{
			Function:  t.Contract.RegisterUserFn,
			Arguments: []any{chain.EncodeText(req.Name), chain.EncodeText(req.Contact)},
		}, invalidateProfile, nil

	case ActionAddSkill:
		if strings.TrimSpace(req.Skill) == "" {
			return none, nil, ErrEmptySkill
		}
		return chain.EntryCall{
			Function:  t.Contract.AddSkillFn,
			Arguments: []any{chain.EncodeText(req.Skill)},
		}, invalidateProfile, nil

	case ActionRequestTeach:
		if strings.TrimSpace(req.Skill) == "" {
			return none, nil, ErrEmptySkill
		}
		return chain.EntryCall{
			Function:  t.Contract.RequestTeachFn,
			Arguments: []any{req.Teacher, chain.EncodeText(req.Skill)},
		}, invalidateStatus, nil

	case ActionAccept:
		return chain.EntryCall{Function: t.Contract.AcceptRequestFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionReject:
		return chain.EntryCall{Function: t.Contract.RejectRequestFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionDeposit:
		return chain.EntryCall{Function: t.Contract.DepositPaymentFn, Arguments: []any{id}}, func() {
			invalidateStatus()
			invalidateBalance()
		}, nil

	case ActionAcknowledge:
		return chain.EntryCall{Function: t.Contract.AcknowledgeFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionMarkComm:
		return chain.EntryCall{Function: t.Contract.MarkCommFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionRequestRelease:
		return chain.EntryCall{Function: t.Contract.RequestReleaseFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionConfirmComplete:
		// Escrow releases to the teacher; the caller's own balance is
		// untouched, so only the status snapshot goes stale.
		return chain.EntryCall{Function: t.Contract.ConfirmCompleteFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionReportNonResp:
		return chain.EntryCall{Function: t.Contract.ReportNonRespFn, Arguments: []any{id}}, invalidateStatus, nil

	case ActionClaimRefund:
		return chain.EntryCall{Function: t.Contract.ClaimRefundFn, Arguments: []any{id}}, func() {
			invalidateStatus()
			invalidateBalance()
		}, nil

	case ActionRegisterForCoin:
		return chain.EntryCall{Function: t.Contract.RegisterForCoinFn, Arguments: []any{}}, invalidateBalance, nil

	default:
		return none, nil, errors.New("unknown action: " + action)
	}
}

// journal best-effort records the submission outcome; journal failures are
// logged, never surfaced, since the ledger write already happened (or
// already failed) independently of local bookkeeping.
func (t *TxService) journal(ctx context.Context, callerAddr, action, idemKey string, call chain.EntryCall, txHash, status string) {
	if t.DB == nil {
		return
	}
	key := idemKey
	if key == "" {
		key = uuid.NewString()
	}
	_, err := repo.CreateSubmission(ctx, t.DB, callerAddr, action, key, call.Function, argsDigest(call), txHash, status, t.JournalTTL)
	if errors.Is(err, repo.ErrDuplicate) {
		// An earlier attempt already journaled this tuple (a failed try,
		// or a commit past its window). The row must track the latest
		// outcome or a later replay would miss the committed hash.
		err = repo.UpdateSubmission(ctx, t.DB, callerAddr, action, key, txHash, status, t.JournalTTL)
	}
	if err != nil {
		t.Log.Warn().Err(err).Str("action", action).Msg("journaling submission failed")
	}
}

// History returns the caller's recent journaled submissions.
func (t *TxService) History(ctx context.Context, callerAddr string, limit int) ([]domain.Submission, error) {
	if t.DB == nil {
		return nil, nil
	}
	return repo.ListSubmissions(ctx, t.DB, callerAddr, limit)
}

// argsDigest fingerprints an entry call for the journal without storing raw
// argument contents.
func argsDigest(call chain.EntryCall) string {
	b, _ := json.Marshal(call)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
