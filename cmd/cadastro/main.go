package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/cadastro/internal/apiclient"
	"github.com/odyssey-erp/cadastro/internal/app"
	"github.com/odyssey-erp/cadastro/internal/cep"
	"github.com/odyssey-erp/cadastro/internal/masterdata/customers"
	"github.com/odyssey-erp/cadastro/internal/masterdata/products"
	"github.com/odyssey-erp/cadastro/internal/masterdata/suppliers"
	"github.com/odyssey-erp/cadastro/internal/observability"
	"github.com/odyssey-erp/cadastro/internal/pages"
	"github.com/odyssey-erp/cadastro/internal/platform/cache"
	"github.com/odyssey-erp/cadastro/internal/platform/db"
	"github.com/odyssey-erp/cadastro/internal/records"
	"github.com/odyssey-erp/cadastro/internal/shared"
	"github.com/odyssey-erp/cadastro/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var auditDB shared.Execer
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool, shared.AuditSchema); err != nil {
			logger.Error("migrate audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		auditDB = pool
	}

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "cadastro_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	vault := shared.NewTokenVault(cfg.SessionSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	// A token stored by the operator wins over a minted one, which wins over
	// the configured fallback.
	creds := apiclient.Chain{shared.SessionCredentials{Vault: vault}}
	if cfg.APIJWTSecret != "" {
		creds = append(creds, apiclient.NewSignedToken(cfg.APIJWTSecret, cfg.APIJWTIssuer, cfg.APIJWTTTL))
	}
	if cfg.APIToken != "" {
		creds = append(creds, apiclient.StaticToken(cfg.APIToken))
	}
	api, err := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithCredentials(creds),
		apiclient.WithObserver(metrics.ObserveAPI),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		logger.Error("configure api client", slog.Any("error", err))
		os.Exit(1)
	}

	lookup := cep.NewCache(cep.NewClient(cfg.CEPBaseURL, cfg.CEPTimeout), redisClient, cfg.CEPCacheTTL, logger)
	lookup.OnOutcome(metrics.ObserveCEP)

	deps := &pages.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		Vault:     vault,
		Audit:     shared.NewAuditLogger(auditDB, logger),
	}
	validator := records.NewValidator()
	supplierPages := pages.NewEntity(deps, suppliers.Descriptor(), api, nil, validator)
	productPages := pages.NewEntity(deps, products.Descriptor(), api, nil, validator)
	customerPages := pages.NewEntity(deps, customers.Descriptor(), api, lookup, validator)

	sections := []view.NavItem{supplierPages.NavItem(), productPages.NavItem(), customerPages.NavItem()}
	deps.Nav = append([]view.NavItem{{Label: "Início", Path: "/"}}, sections...)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		Pages: []pages.Mounter{
			pages.NewHome(deps, sections),
			supplierPages,
			productPages,
			customerPages,
			pages.NewToken(deps),
			pages.NewPostalCode(lookup),
		},
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("api", api.BaseURL()), slog.Bool("audit", auditDB != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
