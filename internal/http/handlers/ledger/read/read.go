// Package read реализует HTTP-обработчик получения записи свободного учёта.
package read

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
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Service описывает чтение записи.
type Service interface {
	Get(ctx context.Context, id int64) (*models.DiscretionaryEntry, error)
}

// Handler управляет HTTP-запросами чтения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить запись свободного учёта
// @Tags Ledger
// @Produce  json
// @Param id path int true "ID записи"
// @Success 200 {object} response.OKResponse "Запись"
// @Failure 404 {object} response.ErrorResponse "Не найдено"
// @Router /ledger/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to get entry", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(entry))
}
