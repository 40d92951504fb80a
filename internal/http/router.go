// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-skillshare-backend/internal/cache"
	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/config"
	"github.com/tbourn/go-skillshare-backend/internal/directory"
	"github.com/tbourn/go-skillshare-backend/internal/domain"
	"github.com/tbourn/go-skillshare-backend/internal/events"
	"github.com/tbourn/go-skillshare-backend/internal/http/handlers"
	"github.com/tbourn/go-skillshare-backend/internal/http/middleware"
	"github.com/tbourn/go-skillshare-backend/internal/repo"
	"github.com/tbourn/go-skillshare-backend/internal/schedule"
	"github.com/tbourn/go-skillshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// Deps carries the externally constructed dependencies the router wires
// into services. The signer is the only component the backend cannot build
// itself: keys stay with the wallet integration.
type Deps struct {
	Reader   chain.LedgerReader
	Signer   chain.Signer
	Contract chain.Contract
	DB       *gorm.DB
	Memo     *cache.Cache
	Sched    *schedule.Scheduler
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), caller resolution, idempotency
// and rate limiting, CORS and security headers, health and metrics
// endpoints, and the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. CallerAddress: resolve the caller's account address
//  4. RedactingLogger: structured logs with contact-data scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter, gzip compression
//  7. Metrics
//  8. Idempotency validator (before rate limiter so replays bypass it)
//  9. Rate limiter (per caller address/IP)
//  10. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Resolve the caller's ledger address (scopes lists, buckets, journal)
	r.Use(middleware.CallerAddress())

	// 4) Structured logging with redaction; the idempotency key is opaque
	// client data and stays out of logs.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (64 KiB: facade payloads are tiny) + gzip
	r.Use(limitBody(64 << 10))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, callerAddr, action, key string, now time.Time) (bool, error) {
			if deps.DB == nil {
				return false, nil
			}
			rec, err := repo.GetSubmission(ctx, deps.DB, callerAddr, action, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return rec.Status == domain.SubmissionCommitted, nil
		},
	))

	// 9) Token-bucket rate limiter per caller/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByCallerOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept",
		middleware.HeaderCallerAddr, middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps
		// tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← chain/cache/scheduler/journal
	agg := &events.Aggregator{
		Reader:   deps.Reader,
		Contract: deps.Contract,
		Sched:    deps.Sched,
	}
	reqSvc := services.NewRequestService(agg, deps.Reader, deps.Contract, deps.Memo, log.Logger)
	reqSvc.StatusTTL = cfg.Ledger.StatusTTL
	reqSvc.BalanceTTL = cfg.Ledger.BalanceTTL

	dir := &directory.Directory{
		Reader:      deps.Reader,
		Contract:    deps.Contract,
		Cache:       deps.Memo,
		Sched:       deps.Sched,
		Log:         log.Logger,
		RegistryTTL: cfg.Ledger.ProfileTTL,
		ProfileTTL:  cfg.Ledger.ProfileTTL,
	}

	txSvc := services.NewTxService(deps.Signer, deps.Contract, deps.DB, deps.Memo, reqSvc, log.Logger)
	txSvc.JournalTTL = cfg.JournalTTL

	h := handlers.New(reqSvc, dir, txSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Requests (read side)
		api.GET("/requests", h.ListRequests)
		api.GET("/requests/:id/status", h.GetStatus)
		api.GET("/requests/:id/contact", h.GetContact)

		// Directory
		api.GET("/teachers", h.ListTeachers)
		api.GET("/profiles/:addr", h.GetProfile)
		api.GET("/profiles/:addr/balance", h.GetBalance)

		// Transaction facade (write side)
		api.POST("/tx/:action", h.SubmitTx)
		api.GET("/tx/history", h.TxHistory)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the
// cap cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
