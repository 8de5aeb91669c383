// Package arrears реализует HTTP-обработчик списка должников за год.
package arrears

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

// Service строит список должников.
type Service interface {
	Arrears(ctx context.Context, year int) ([]aggregation.Debtor, error)
}

// Handler управляет HTTP-запросами списка должников.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Должники за год
// @Description Участники с положительной задолженностью, по убыванию суммы.
// @Tags Reports
// @Produce  json
// @Param year path int true "Год"
// @Success 200 {object} response.OKResponse "Должники"
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Failure 422 {object} response.ErrorResponse "Год вне диапазона"
// @Router /reports/arrears/{year} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reports.arrears"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		log.Error("failed to decode year from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode year from url"))
		return
	}

	debtors, err := h.service.Arrears(r.Context(), year)
	if err != nil {
		log.Error("failed to build arrears", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if debtors == nil {
		debtors = []aggregation.Debtor{}
	}
	render.JSON(w, r, response.OKWithData(debtors))
}
