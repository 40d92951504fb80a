package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	buf := withCapturedLogger(t)

	// Simulate upstream RequestID middleware that sets the response header
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-resp")
		c.Next()
	})
	// Our logger with a custom masked header (idempotency keys identify
	// retries, not users, but they should still stay out of logs)
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{HeaderIdempotencyKey}}))

	// Route with params so c.FullPath() is non-empty
	r.GET("/requests/:id/status", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Raw query is redacted with regex (no parsing), so simple occurrences
	// are enough
	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/requests/7/status?"+q, nil)
	// Built-in sensitive headers
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	// Custom masked header
	req.Header.Set(HeaderIdempotencyKey, "retry-1")
	// Header with contact data that should be pattern-redacted (not fully masked)
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	// Ledger addresses are public chain data; they must survive redaction
	req.Header.Set(HeaderCallerAddr, "0xabc123def")
	// Also set a request header request-id; the response header should win
	req.Header.Set("X-Request-ID", "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	// level info
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info log, got: %s", logs)
	}
	// path should be the route pattern
	if !strings.Contains(logs, `"path":"/requests/:id/status"`) {
		t.Fatalf("expected path to use c.FullPath, got: %s", logs)
	}
	// request id prefers the response header
	if !strings.Contains(logs, `"request_id":"rid-resp"`) {
		t.Fatalf("expected request_id from response header, got: %s", logs)
	}
	// query redactions
	if !strings.Contains(logs, `[REDACTED:email]`) || !strings.Contains(logs, `[REDACTED:phone]`) || !strings.Contains(logs, `[REDACTED:id]`) {
		t.Fatalf("expected query redactions, got: %s", logs)
	}
	// header masking for built-ins and custom
	if !strings.Contains(logs, `"Authorization":"[REDACTED]"`) {
		t.Fatalf("Authorization must be masked: %s", logs)
	}
	if !strings.Contains(logs, `"Cookie":"[REDACTED]"`) {
		t.Fatalf("Cookie must be masked: %s", logs)
	}
	if !strings.Contains(logs, `"Idempotency-Key":"[REDACTED]"`) {
		t.Fatalf("Idempotency-Key must be masked: %s", logs)
	}
	// pattern redactions inside non-masked header
	if !strings.Contains(logs, `"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`) {
		t.Fatalf("expected redacted X-Custom header, got: %s", logs)
	}
	// account addresses are not personal data in this system
	if !strings.Contains(logs, `"X-Caller-Addr":"0xabc123def"`) {
		t.Fatalf("caller address should be logged as-is: %s", logs)
	}
}

func TestRedactingLogger_WarnAndErrorLevels_RequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("4xx logs warn, request id falls back to request header", func(t *testing.T) {
		r := gin.New()
		buf := withCapturedLogger(t)
		r.Use(RedactingLogger(RedactOptions{}))
		r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		req.Header.Set("X-Request-ID", "rid-req-only")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		logs := buf.String()
		if !strings.Contains(logs, `"level":"warn"`) {
			t.Fatalf("expected warn log, got: %s", logs)
		}
		if !strings.Contains(logs, `"request_id":"rid-req-only"`) {
			t.Fatalf("expected request header fallback, got: %s", logs)
		}
	})

	t.Run("5xx logs error", func(t *testing.T) {
		r := gin.New()
		buf := withCapturedLogger(t)
		r.Use(RedactingLogger(RedactOptions{}))
		r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if !strings.Contains(buf.String(), `"level":"error"`) {
			t.Fatalf("expected error log, got: %s", buf.String())
		}
	})
}
