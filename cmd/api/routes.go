package main

import (
	"net/http"

	"github.com/Deepesh2575/Online-Banking-System/internal/config"
	"github.com/Deepesh2575/Online-Banking-System/internal/handler"
	"github.com/Deepesh2575/Online-Banking-System/internal/middleware"
	"github.com/Deepesh2575/Online-Banking-System/internal/repository"
)

type routerDeps struct {
	health      *handler.HealthHandler
	docs        *handler.DocsHandler
	accounts    *handler.AccountHandler
	ledger      *handler.LedgerHandler
	idempotency *repository.IdempotencyRepository
	cfg         *config.Config
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func newRouter(d routerDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", d.health.Liveness)
	mux.HandleFunc("GET /health/ready", d.health.Readiness)

	mux.HandleFunc("GET /docs", d.docs.UI)
	mux.HandleFunc("GET /docs/openapi.yaml", d.docs.SpecYAML)
	mux.HandleFunc("GET /docs/openapi.json", d.docs.SpecJSON)

	authed := func(h http.HandlerFunc) http.Handler {
		return chain(h, middleware.Auth(d.cfg.JWTSecret))
	}
	writes := func(h http.HandlerFunc) http.Handler {
		return chain(h,
			middleware.Auth(d.cfg.JWTSecret),
			middleware.Idempotency(d.idempotency, d.cfg.IdempotencyTTL),
		)
	}

	mux.Handle("GET /api/v1/accounts", authed(d.accounts.List))
	mux.Handle("POST /api/v1/accounts", writes(d.accounts.Open))
	mux.Handle("GET /api/v1/accounts/{id}/balance", authed(d.ledger.Balance))
	mux.Handle("GET /api/v1/accounts/{id}/transactions", authed(d.ledger.Transactions))

	mux.Handle("POST /api/v1/transactions/deposit", writes(d.ledger.Deposit))
	mux.Handle("POST /api/v1/transactions/withdraw", writes(d.ledger.Withdraw))
	mux.Handle("POST /api/v1/transactions/transfer", writes(d.ledger.Transfer))
	mux.Handle("GET /api/v1/transactions/transfers/{correlation_id}", authed(d.ledger.TransferDetails))

	return chain(mux, middleware.Tracing, middleware.Logging, middleware.Recovery)
}
