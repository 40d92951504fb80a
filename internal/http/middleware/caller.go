// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's ledger address from the X-Caller-Addr
// header. The backend performs no authentication of its own: the wallet that
// signs transactions is the identity, and reads are public ledger data. The
// header therefore only scopes responses (per-viewer listings, journal
// history, rate-limit buckets); it never grants access the ledger itself
// would deny.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderCallerAddr is the request header carrying the caller's account
// address (0x-prefixed hex).
const HeaderCallerAddr = "X-Caller-Addr"

// callerAddrKey is the Gin context key under which the normalized address is
// stored.
const callerAddrKey = "callerAddr"

// CallerFrom returns the normalized caller address resolved by
// CallerAddress, if any.
func CallerFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(callerAddrKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// CallerAddress validates the X-Caller-Addr header when present and stashes
// the lowercased address in the Gin context.
//
// Behavior:
//   - Absent header: no-op; endpoints that need an identity reject later.
//   - Malformed address: 400 with the standard error envelope.
//   - Valid address: normalized to lowercase for stable cache and bucket keys.
func CallerAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderCallerAddr))
		if raw == "" {
			c.Next()
			return
		}
		addr := strings.ToLower(raw)
		if !ValidAddress(addr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_address",
				"message":    "X-Caller-Addr must be a 0x-prefixed hex address",
			})
			return
		}
		c.Set(callerAddrKey, addr)
		c.Next()
	}
}

// ValidAddress reports whether s looks like a ledger account address:
// 0x followed by 1..64 hex digits. Short forms are accepted because the
// chain itself accepts addresses with leading zeros trimmed. The same rule
// applies wherever an address crosses the HTTP boundary, header or path.
func ValidAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	hexPart := s[2:]
	if len(hexPart) == 0 || len(hexPart) > 64 {
		return false
	}
	for _, r := range hexPart {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
