// Package collected реализует HTTP-обработчик суммы собранных взносов.
package collected

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

// Service считает собранные взносы.
type Service interface {
	YearCollected(ctx context.Context, year int) (*aggregation.Collected, error)
	TotalCollected(ctx context.Context) (*aggregation.Collected, error)
}

// Handler управляет HTTP-запросами отчёта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Собранные взносы
// @Description Без year считается сумма за всё время.
// @Tags Reports
// @Produce  json
// @Param year query int false "Год"
// @Success 200 {object} response.OKResponse "Суммы"
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Router /reports/collected [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reports.collected"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var (
		res *aggregation.Collected
		err error
	)
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, perr := strconv.Atoi(raw)
		if perr != nil {
			log.Error("failed to parse year", sl.Err(perr))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid query parameter year"))
			return
		}
		res, err = h.service.YearCollected(r.Context(), year)
	} else {
		res, err = h.service.TotalCollected(r.Context())
	}
	if err != nil {
		log.Error("failed to compute collected", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(res))
}
