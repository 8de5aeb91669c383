// Package duesledger собирает HTTP API реестра взносов и gRPC health-сервер.
package duesledger

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Регистрация спецификации Swagger.
	_ "github.com/magabrotheeeer/dues-ledger/docs"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/backfill"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/claim"
	dueslist "github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/list"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/outstanding"
	duesread "github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/read"
	duesremove "github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/remove"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/review"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/dues/year"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/health"
	ledgerlist "github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/list"
	ledgerread "github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/read"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/record"
	ledgerremove "github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/remove"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/update"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/reports/arrears"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/reports/balance"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/reports/categories"
	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/reports/collected"
	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
	"github.com/magabrotheeeer/dues-ledger/internal/services/ledger"
	"github.com/magabrotheeeer/dues-ledger/internal/services/reconciliation"
)

// Services — сервисы, которые обслуживает HTTP API.
type Services struct {
	Reconciliation *reconciliation.Service
	Ledger         *ledger.Service
	Aggregation    *aggregation.Engine
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, parser middlewarectx.ActorParser,
	limiter *rate.Limiter, checks map[string]health.Check) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.Metrics,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, checks).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(parser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			// Участник работает со своими данными, остальное проверяют обработчики.
			r.Post("/dues/claims", claim.New(logger, svc.Reconciliation).ServeHTTP)
			r.Post("/dues/entrance/claims", claim.NewEntrance(logger, svc.Reconciliation).ServeHTTP)
			r.Get("/dues/obligations/{id}", duesread.New(logger, svc.Reconciliation).ServeHTTP)
			r.Get("/members/{memberID}/dues/{year}", year.New(logger, svc.Reconciliation).ServeHTTP)
			r.Get("/members/{memberID}/outstanding/{year}", outstanding.New(logger, svc.Aggregation).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireCapability(logger, models.CapFinanceManage))
				r.Post("/dues/backfill", backfill.New(logger, svc.Reconciliation).ServeHTTP)
				r.Post("/dues/entrance/backfill", backfill.NewEntrance(logger, svc.Reconciliation).ServeHTTP)
				r.Post("/dues/obligations/{id}/confirm", review.NewConfirm(logger, svc.Reconciliation).ServeHTTP)
				r.Post("/dues/obligations/{id}/reject", review.NewReject(logger, svc.Reconciliation).ServeHTTP)
				r.Delete("/dues/obligations/{id}", duesremove.New(logger, svc.Reconciliation).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireCapability(logger, models.CapLedgerManage))
				r.Post("/ledger/income", record.NewIncome(logger, svc.Ledger).ServeHTTP)
				r.Post("/ledger/expenses", record.NewExpense(logger, svc.Ledger).ServeHTTP)
				r.Put("/ledger/{id}", update.New(logger, svc.Ledger).ServeHTTP)
				r.Delete("/ledger/{id}", ledgerremove.New(logger, svc.Ledger).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireCapability(logger, models.CapReportsView))
				r.Get("/dues/obligations", dueslist.New(logger, svc.Reconciliation).ServeHTTP)
				r.Get("/ledger", ledgerlist.New(logger, svc.Ledger).ServeHTTP)
				r.Get("/ledger/{id}", ledgerread.New(logger, svc.Ledger).ServeHTTP)
				r.Get("/reports/collected", collected.New(logger, svc.Aggregation).ServeHTTP)
				r.Get("/reports/balance", balance.New(logger, svc.Aggregation).ServeHTTP)
				r.Get("/reports/categories", categories.NewExpenses(logger, svc.Aggregation).ServeHTTP)
				r.Get("/reports/income-sources", categories.NewIncomeSources(logger, svc.Aggregation).ServeHTTP)
				r.Get("/reports/arrears/{year}", arrears.New(logger, svc.Aggregation).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
