// Package balance реализует HTTP-обработчик баланса организации.
package balance

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

// Service считает баланс.
type Service interface {
	OrganizationBalance(ctx context.Context) (*aggregation.Balance, error)
}

// Handler управляет HTTP-запросами баланса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Баланс организации
// @Description Оплаченные взносы плюс поступления минус расходы.
// @Tags Reports
// @Produce  json
// @Success 200 {object} response.OKResponse "Баланс"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /reports/balance [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reports.balance"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.OrganizationBalance(r.Context())
	if err != nil {
		log.Error("failed to compute balance", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(res))
}
