// Teach-request HTTP handlers.
//
// This file exposes the read side of the negotiation lifecycle:
//   - GET /requests/{id}/status   (resolved lifecycle state)
//   - GET /requests               (per-viewer list, role=learner|teacher)
//   - GET /requests/{id}/contact  (gated contact info)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results (including the service error taxonomy)
// into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/http/middleware"
	"github.com/tbourn/go-skillshare-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// RequestReader defines the status-resolution and account reads consumed by
// HTTP handlers. Implementations must be safe for concurrent use and honor
// the provided context.
type RequestReader interface {
	// Status resolves the canonical lifecycle state for one request id.
	Status(ctx context.Context, id uint64) (*domain.TeachRequest, error)
	// ListForLearner returns the requests the address created.
	ListForLearner(ctx context.Context, learnerAddr string) ([]domain.RequestSummary, error)
	// ListForTeacher returns the requests addressed to the teacher.
	ListForTeacher(ctx context.Context, teacherAddr string) ([]domain.RequestSummary, error)
	// Balance returns the address's coin balance in octas, nil when the
	// account holds no coin store.
	Balance(ctx context.Context, addr string) (*uint64, error)
	// Contact returns the decoded contact string for a request, when the
	// ledger's access rule allows it.
	Contact(ctx context.Context, id uint64, requesterAddr string) (string, error)
}

// DirectoryReader defines the participant-directory views consumed by HTTP
// handlers.
type DirectoryReader interface {
	// Teachers lists registered participants advertising at least one
	// skill, excluding excludeAddr.
	Teachers(ctx context.Context, excludeAddr string) ([]domain.Participant, error)
	// Profile returns one participant's profile, nil when unregistered.
	Profile(ctx context.Context, addr string) (*domain.Participant, error)
}

// TxSubmitter defines the write facade consumed by HTTP handlers.
type TxSubmitter interface {
	// Submit executes one facade action for callerAddr; a non-empty
	// idemKey makes the write replayable within the journal window.
	Submit(ctx context.Context, callerAddr, action, idemKey string, req services.SubmitRequest) (*chain.TxResult, error)
	// History returns the caller's recent journaled submissions.
	History(ctx context.Context, callerAddr string, limit int) ([]domain.Submission, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for requests, the directory, and the
// transaction facade. It depends on the abstract service interfaces above
// to keep transport concerns separate from application logic.
type Handlers struct {
	requests  RequestReader
	directory DirectoryReader
	tx        TxSubmitter
}

// New constructs a Handlers instance bound to the given services.
func New(requests RequestReader, directory DirectoryReader, tx TxSubmitter) *Handlers {
	return &Handlers{requests: requests, directory: directory, tx: tx}
}

// requireCaller returns the caller address resolved by the middleware, or
// writes a 400 and returns ok=false. Endpoints whose response is scoped to
// a viewer need it; plain reads do not.
func requireCaller(c *gin.Context) (string, bool) {
	addr, ok := middleware.CallerFrom(c)
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeMissingCaller, "X-Caller-Addr header required")
		return "", false
	}
	return addr, true
}

// parseRequestID parses the :id path parameter as a u64 request id.
func parseRequestID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request id must be an unsigned integer")
		return 0, false
	}
	return id, true
}

// failFromService maps the shared service error taxonomy to an HTTP
// response, falling back to a 500 for unclassified errors.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "teach request not found")
	case errors.Is(err, services.ErrLedgerUnavailable), chain.IsTransient(err):
		fail(c, http.StatusServiceUnavailable, ErrCodeLedgerUnavailable, "ledger read failed")
	case errors.Is(err, services.ErrContactUnavailable):
		fail(c, http.StatusForbidden, ErrCodeContactUnavailable, "contact info not available")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// DTOs
//

// StatusResponse is the resolved lifecycle state of one teach request.
type StatusResponse struct {
	Request *domain.TeachRequest `json:"request"`
}

// ListRequestsResponse wraps a viewer's request summaries.
type ListRequestsResponse struct {
	Requests []domain.RequestSummary `json:"requests"`
}

// ContactResponse carries the decoded contact string once the ledger allows
// the viewer to read it.
type ContactResponse struct {
	RequestID uint64 `json:"request_id" example:"7"`
	Contact   string `json:"contact" example:"@alice:matrix.org"`
}

//
// Handlers
//

// GetStatus godoc
// @ID          getRequestStatus
// @Summary     Resolve teach-request status
// @Description Correlates the ledger's event streams for one request id and returns the canonical lifecycle state, including non-response refund eligibility.
// @Tags        Requests
// @Produce     json
//
// @Param       id  path  integer  true  "Teach request ID"  example(7)
//
// @Success     200  {object}  handlers.StatusResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown request id"
// @Failure     503  {object}  handlers.ErrorResponse  "Ledger unavailable"
// @Router      /requests/{id}/status [get]
func (h *Handlers) GetStatus(c *gin.Context) {
	id, okID := parseRequestID(c)
	if !okID {
		return
	}
	req, err := h.requests.Status(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, StatusResponse{Request: req})
}

// ListRequests godoc
// @ID          listRequests
// @Summary     List the caller's teach requests
// @Description Returns the requests the caller participates in, from one side of the table: role=learner lists requests the caller created, role=teacher lists requests addressed to the caller.
// @Tags        Requests
// @Produce     json
//
// @Param       X-Caller-Addr  header  string  true  "Caller account address"  example(0x1a2b)
// @Param       role           query   string  true  "Viewer role"             Enums(learner, teacher)
//
// @Success     200  {object}  handlers.ListRequestsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Ledger unavailable"
// @Router      /requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	addr, okAddr := requireCaller(c)
	if !okAddr {
		return
	}

	var (
		items []domain.RequestSummary
		err   error
	)
	switch c.Query("role") {
	case "learner":
		items, err = h.requests.ListForLearner(c.Request.Context(), addr)
	case "teacher":
		items, err = h.requests.ListForTeacher(c.Request.Context(), addr)
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "role must be learner or teacher")
		return
	}
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, ListRequestsResponse{Requests: items})
}

// GetContact godoc
// @ID          getRequestContact
// @Summary     Read gated contact info
// @Description Returns the counterparty contact string for a request. The ledger releases it only after payment is acknowledged; any denial maps to 403.
// @Tags        Requests
// @Produce     json
//
// @Param       X-Caller-Addr  header  string   true  "Caller account address"  example(0x1a2b)
// @Param       id             path    integer  true  "Teach request ID"        example(7)
//
// @Success     200  {object}  handlers.ContactResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Contact not released"
// @Failure     503  {object}  handlers.ErrorResponse  "Ledger unavailable"
// @Router      /requests/{id}/contact [get]
func (h *Handlers) GetContact(c *gin.Context) {
	addr, okAddr := requireCaller(c)
	if !okAddr {
		return
	}
	id, okID := parseRequestID(c)
	if !okID {
		return
	}
	contact, err := h.requests.Contact(c.Request.Context(), id, addr)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, ContactResponse{RequestID: id, Contact: contact})
}
