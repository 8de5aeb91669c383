// Package review реализует HTTP-обработчики проверки заявок казначеем:
// подтверждение и отклонение.
package review

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

// Service описывает переходы автомата состояний, доступные казначею.
type Service interface {
	Confirm(ctx context.Context, obligationID int64, actor models.Actor) (*models.Obligation, error)
	Reject(ctx context.Context, obligationID int64, actor models.Actor) (*models.Obligation, error)
}

type action func(s Service, ctx context.Context, id int64, actor models.Actor) (*models.Obligation, error)

// Handler выполняет один переход над обязательством из URL.
type Handler struct {
	log     *slog.Logger
	name    string
	apply   action
	service Service
}

// NewConfirm создаёт обработчик подтверждения оплаты.
func NewConfirm(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, name: "confirm", service: service, apply: Service.Confirm}
}

// NewReject создаёт обработчик отклонения заявки.
func NewReject(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, name: "reject", service: service, apply: Service.Reject}
}

// ServeHTTP godoc
// @Summary Подтвердить или отклонить заявку
// @Description confirm переводит обязательство в paid (повтор не ошибка), reject — pending в failed.
// @Tags Dues
// @Produce  json
// @Param id path int true "ID обязательства"
// @Success 200 {object} response.OKResponse "Текущее состояние"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 403 {object} response.ErrorResponse "Нет возможности finance:manage"
// @Failure 404 {object} response.ErrorResponse "Обязательство не найдено"
// @Failure 409 {object} response.ErrorResponse "Переход недопустим"
// @Router /dues/obligations/{id}/confirm [post]
// @Router /dues/obligations/{id}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.review"
	log := h.log.With(
		slog.String("op", op),
		slog.String("action", h.name),
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

	ob, err := h.apply(h.service, r.Context(), id, actor)
	if err != nil {
		log.Error("transition failed", slog.Int64("obligation_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("transition applied", slog.Int64("obligation_id", id), slog.String("status", string(ob.Status)))
	render.JSON(w, r, response.OKWithData(ob))
}
