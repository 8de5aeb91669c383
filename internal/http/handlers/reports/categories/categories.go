// Package categories реализует HTTP-обработчики разбивки расходов по
// категориям и поступлений по источникам.
package categories

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Service строит разбивки.
type Service interface {
	CategoryBreakdown(ctx context.Context) ([]models.CategoryTotal, error)
	IncomeBySource(ctx context.Context) ([]models.CategoryTotal, error)
}

type breakdown func(s Service, ctx context.Context) ([]models.CategoryTotal, error)

// Handler управляет HTTP-запросами разбивки.
type Handler struct {
	log     *slog.Logger
	service Service
	name    string
	build   breakdown
}

// NewExpenses создаёт обработчик разбивки расходов. Все категории
// присутствуют в ответе, в том числе нулевые.
func NewExpenses(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, name: "categories", build: Service.CategoryBreakdown}
}

// NewIncomeSources создаёт обработчик разбивки поступлений.
func NewIncomeSources(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, name: "income-sources", build: Service.IncomeBySource}
}

// ServeHTTP godoc
// @Summary Разбивка расходов или поступлений
// @Tags Reports
// @Produce  json
// @Success 200 {object} response.OKResponse "Итоги по категориям"
// @Router /reports/categories [get]
// @Router /reports/income-sources [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reports.categories"
	log := h.log.With(
		slog.String("op", op),
		slog.String("report", h.name),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	totals, err := h.build(h.service, r.Context())
	if err != nil {
		log.Error("failed to build breakdown", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	render.JSON(w, r, response.OKWithData(totals))
}
