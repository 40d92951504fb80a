// Command server runs the skillshare backend: a status-resolution service
// over the on-chain teach-request ledger. It owns process lifecycle only;
// all behavior lives in internal packages.
//
// @title        Skillshare Backend API
// @version      1.0
// @description  Read-side status resolution and write facade for the on-chain skillshare ledger.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-skillshare-backend/docs"
	"github.com/tbourn/go-skillshare-backend/internal/cache"
	"github.com/tbourn/go-skillshare-backend/internal/chain"
	"github.com/tbourn/go-skillshare-backend/internal/config"
	httpapi "github.com/tbourn/go-skillshare-backend/internal/http"
	"github.com/tbourn/go-skillshare-backend/internal/observability"
	"github.com/tbourn/go-skillshare-backend/internal/repo"
	"github.com/tbourn/go-skillshare-backend/internal/schedule"
)

// version is stamped at build time via -ldflags "-X main.version=…".
var version = "dev"

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening journal database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("journal migration failed")
	}

	reader := chain.NewClient(cfg.Ledger.NodeURL)
	contract := chain.NewContract(cfg.Ledger.ContractAddr)

	var signer chain.Signer
	if cfg.Ledger.SignerURL != "" {
		signer = chain.NewRemoteSigner(cfg.Ledger.SignerURL)
	} else {
		log.Warn().Msg("SIGNER_URL not set; write endpoints will refuse submissions")
	}

	sched := schedule.New(cfg.Ledger.CallSpacing, cfg.Ledger.CallRPS)
	defer sched.Close()

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Deps{
		Reader:   reader,
		Signer:   signer,
		Contract: contract,
		DB:       db,
		Memo:     cache.New(),
		Sched:    sched,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// setupLogging configures the global zerolog logger from config.
func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
