// Package read реализует HTTP-обработчик получения обязательства по ID.
// Участник видит только свои обязательства.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Service описывает чтение обязательства.
type Service interface {
	Get(ctx context.Context, obligationID int64) (*models.Obligation, error)
}

// Handler управляет HTTP-запросами чтения обязательства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить обязательство
// @Tags Dues
// @Produce  json
// @Param id path int true "ID обязательства"
// @Success 200 {object} response.OKResponse "Обязательство"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 403 {object} response.ErrorResponse "Чужое обязательство"
// @Failure 404 {object} response.ErrorResponse "Не найдено"
// @Router /dues/obligations/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	ob, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to get obligation", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if !middlewarectx.ActsFor(actor, ob.MemberID, models.CapFinanceManage, models.CapReportsView) {
		log.Warn("foreign obligation requested", slog.String("actor_id", actor.ID), slog.Int64("obligation_id", id))
		response.RenderError(w, r, models.ErrAuthorizationDenied)
		return
	}

	render.JSON(w, r, response.OKWithData(ob))
}
