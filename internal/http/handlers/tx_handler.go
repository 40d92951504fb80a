// Transaction facade HTTP handlers.
//
// This file exposes the write side of the API:
//   - POST /tx/{action}  (sign and submit one entry-function call)
//   - GET  /tx/history   (the caller's journaled submissions)
//
// Every state change flows through the facade; the handler validates the
// action name, threads the Idempotency-Key through to the journal, and maps
// signer failures to the error taxonomy. The ledger's own transition rules
// stay authoritative: the facade never pre-judges whether a transition is
// legal.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/http/middleware"
	"github.com/tbourn/go-skillshare-backend/internal/services"
	"github.com/tbourn/go-skillshare-backend/internal/utils"
)

// knownActions guards the :action route parameter so arbitrary strings
// never reach the facade.
var knownActions = map[string]struct{}{
	services.ActionRegister:        {},
	services.ActionAddSkill:        {},
	services.ActionRequestTeach:    {},
	services.ActionAccept:          {},
	services.ActionReject:          {},
	services.ActionDeposit:         {},
	services.ActionAcknowledge:     {},
	services.ActionMarkComm:        {},
	services.ActionRequestRelease:  {},
	services.ActionConfirmComplete: {},
	services.ActionReportNonResp:   {},
	services.ActionClaimRefund:     {},
	services.ActionRegisterForCoin: {},
}

//
// DTOs
//

// SubmitTxRequest is the JSON payload for a facade submission. Fields not
// used by the chosen action are ignored.
type SubmitTxRequest struct {
	// Name sets the display name on register.
	Name string `json:"name,omitempty" example:"Alice"`
	// Contact sets the gated contact string on register.
	Contact string `json:"contact,omitempty" example:"@alice:matrix.org"`
	// Skill labels a skill addition or a teach request.
	Skill string `json:"skill,omitempty" example:"sourdough baking"`
	// Teacher addresses a teach request.
	Teacher string `json:"teacher,omitempty" example:"0x9f3c"`
	// RequestID targets lifecycle actions at one request.
	RequestID uint64 `json:"request_id,omitempty" example:"7"`
}

// SubmitTxResponse reports the committed transaction.
type SubmitTxResponse struct {
	Action string `json:"action" example:"accept"`
	TxHash string `json:"tx_hash" example:"0xde6a…"`
	// Replayed is true when the response was served from the submission
	// journal instead of signing a new transaction.
	Replayed bool `json:"replayed"`
}

// HistoryResponse wraps the caller's journaled submissions.
type HistoryResponse struct {
	Submissions []domain.Submission `json:"submissions"`
}

//
// Handlers
//

// SubmitTx godoc
// @ID          submitTx
// @Summary     Submit a ledger write
// @Description Packages the named action as an entry-function call, signs and submits it through the configured signer, and journals the outcome. A repeated Idempotency-Key within the replay window returns the recorded transaction hash without signing again.
// @Tags        Transactions
// @Accept      json
// @Produce     json
//
// @Param       X-Caller-Addr    header  string  true   "Caller account address"  example(0x1a2b)
// @Param       Idempotency-Key  header  string  false  "Replay deduplication key"
// @Param       action           path    string  true   "Facade action"  Enums(register, add_skill, request_teach, accept, reject, deposit_payment, acknowledge_payment, mark_communication, request_release, confirm_completion, report_non_response, claim_refund, register_for_coin)
// @Param       body             body    handlers.SubmitTxRequest  true  "Action arguments"
//
// @Success     200  {object}  handlers.SubmitTxResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Signature declined"
// @Failure     502  {object}  handlers.ErrorResponse  "Submission failed"
// @Router      /tx/{action} [post]
func (h *Handlers) SubmitTx(c *gin.Context) {
	addr, okAddr := requireCaller(c)
	if !okAddr {
		return
	}

	action := c.Param("action")
	if _, known := knownActions[action]; !known {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown action: "+action)
		return
	}

	var body SubmitTxRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	replayed := middleware.IsReplay(c)

	res, err := h.tx.Submit(c.Request.Context(), addr, action, idemKey, services.SubmitRequest{
		Name:      body.Name,
		Contact:   body.Contact,
		Skill:     body.Skill,
		Teacher:   body.Teacher,
		RequestID: body.RequestID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyName), errors.Is(err, services.ErrEmptySkill):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, chain.ErrUserRejected):
			fail(c, http.StatusConflict, ErrCodeUserRejected, "signature declined by wallet")
		default:
			fail(c, http.StatusBadGateway, ErrCodeSubmissionFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, SubmitTxResponse{
		Action:   action,
		TxHash:   res.Hash,
		Replayed: replayed,
	})
}

// TxHistory godoc
// @ID          txHistory
// @Summary     List journaled submissions
// @Description Returns the caller's recent facade submissions from the local journal, newest first.
// @Tags        Transactions
// @Produce     json
//
// @Param       X-Caller-Addr  header  string  true   "Caller account address"  example(0x1a2b)
// @Param       limit          query   int     false  "Maximum entries"         default(50)
//
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /tx/history [get]
func (h *Handlers) TxHistory(c *gin.Context) {
	addr, okAddr := requireCaller(c)
	if !okAddr {
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	recs, err := h.tx.History(c.Request.Context(), addr, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if recs == nil {
		recs = []domain.Submission{}
	}
	ok(c, http.StatusOK, HistoryResponse{Submissions: recs})
}
