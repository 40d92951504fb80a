// Directory HTTP handlers.
//
// This file exposes the participant-directory views:
//   - GET /teachers                 (registered teachers, caller excluded, paginated)
//   - GET /profiles/{addr}          (one participant's profile)
//   - GET /profiles/{addr}/balance  (coin balance and registration)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/http/middleware"
	"github.com/tbourn/go-skillshare-backend/internal/utils"
)

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ListTeachersResponse wraps a page of teachers and pagination information.
type ListTeachersResponse struct {
	Teachers   []domain.Participant `json:"teachers"`
	Pagination Pagination           `json:"pagination"`
}

// ProfileResponse wraps one participant's profile snapshot.
type ProfileResponse struct {
	Profile *domain.Participant `json:"profile"`
}

// BalanceResponse reports the account's coin standing. Balance is null when
// the account is not registered for the payment coin; registered mirrors
// that distinction explicitly.
type BalanceResponse struct {
	Address    string  `json:"address" example:"0x1a2b"`
	Balance    *uint64 `json:"balance" example:"100000000"`
	Registered bool    `json:"registered"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// validAddrParam validates and lowercases the :addr path parameter, applying
// the same address rule the caller header goes through.
func validAddrParam(c *gin.Context) (string, bool) {
	addr := strings.ToLower(strings.TrimSpace(c.Param("addr")))
	if !middleware.ValidAddress(addr) {
		fail(c, http.StatusBadRequest, ErrCodeBadAddress, "address must be 0x-prefixed hex")
		return "", false
	}
	return addr, true
}

//
// Handlers
//

// ListTeachers godoc
// @ID          listTeachers
// @Summary     List registered teachers
// @Description Returns registered participants advertising at least one skill. When X-Caller-Addr is set, the caller is excluded so users do not see themselves as candidate teachers.
// @Tags        Directory
// @Produce     json
//
// @Param       X-Caller-Addr  header  string  false "Caller account address"  example(0x1a2b)
// @Param       page           query   int     false "Page number"             minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"          minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListTeachersResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Ledger unavailable"
// @Router      /teachers [get]
func (h *Handlers) ListTeachers(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	page, pageSize := clampPagination(c)

	teachers, err := h.directory.Teachers(c.Request.Context(), caller)
	if err != nil {
		failFromService(c, err)
		return
	}

	total := len(teachers)
	totalPages := (total + pageSize - 1) / pageSize
	lo := (page - 1) * pageSize
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}

	ok(c, http.StatusOK, ListTeachersResponse{
		Teachers: teachers[lo:hi],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Read a participant profile
// @Description Returns the on-ledger profile (name, skills) of one address, or 404 when the address never registered.
// @Tags        Directory
// @Produce     json
//
// @Param       addr  path  string  true  "Account address"  example(0x1a2b)
//
// @Success     200  {object}  handlers.ProfileResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad address"
// @Failure     404  {object}  handlers.ErrorResponse  "Not registered"
// @Failure     503  {object}  handlers.ErrorResponse  "Ledger unavailable"
// @Router      /profiles/{addr} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	addr, okAddr := validAddrParam(c)
	if !okAddr {
		return
	}
	p, err := h.directory.Profile(c.Request.Context(), addr)
	if err != nil {
		failFromService(c, err)
		return
	}
	if p == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "address not registered")
		return
	}
	ok(c, http.StatusOK, ProfileResponse{Profile: p})
}

// GetBalance godoc
// @ID          getBalance
// @Summary     Read an account's coin balance
// @Description Returns the account's payment-coin balance in octas. A null balance means the account has not registered a coin store yet.
// @Tags        Directory
// @Produce     json
//
// @Param       addr  path  string  true  "Account address"  example(0x1a2b)
//
// @Success     200  {object}  handlers.BalanceResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad address"
// @Failure     503  {object}  handlers.ErrorResponse  "Ledger unavailable"
// @Router      /profiles/{addr}/balance [get]
func (h *Handlers) GetBalance(c *gin.Context) {
	addr, okAddr := validAddrParam(c)
	if !okAddr {
		return
	}
	bal, err := h.requests.Balance(c.Request.Context(), addr)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, BalanceResponse{
		Address:    addr,
		Balance:    bal,
		Registered: bal != nil,
	})
}
