// Package backfill реализует HTTP-обработчик ручного ввода оплаты казначеем.
// Доступ ограничивается на уровне маршрутов возможностью finance:manage.
package backfill

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/reconciliation"
)

// Request — тело ручного ввода. month и year нужны только для ежемесячного взноса.
type Request struct {
	MemberID  string `json:"member_id" validate:"required" example:"m-1"`
	Month     int    `json:"month,omitempty" validate:"omitempty,min=1,max=12" example:"3"`
	Year      int    `json:"year,omitempty" validate:"omitempty,min=2000,max=2100" example:"2025"`
	Amount    string `json:"amount,omitempty" validate:"omitempty,numeric,max=16" example:"5.00"`
	Reference string `json:"reference,omitempty" validate:"max=128" example:"cash"`
}

// Service описывает интерфейс сервиса сверки для ручного ввода.
type Service interface {
	ManualBackfill(ctx context.Context, actor models.Actor, req reconciliation.ClaimRequest) (*models.Obligation, error)
	ManualEntranceBackfill(ctx context.Context, actor models.Actor, req reconciliation.ClaimRequest) (*models.Obligation, error)
}

// Handler управляет HTTP-запросами ручного ввода.
type Handler struct {
	log      *slog.Logger
	service  Service
	entrance bool
	validate *validator.Validate
}

// New создаёт обработчик для ежемесячного взноса.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// NewEntrance создаёт обработчик для вступительного взноса.
func NewEntrance(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, entrance: true, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Ручной ввод оплаты
// @Description Отмечает период оплаченным. Повторный ввод обновляет ту же запись, заявка в pending подтверждается.
// @Tags Dues
// @Accept  json
// @Produce  json
// @Param request body Request true "Участник, период, сумма"
// @Success 200 {object} response.OKResponse "Оплата записана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет возможности finance:manage"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /dues/backfill [post]
// @Router /dues/entrance/backfill [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.backfill"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		amount = decimal.RequireFromString(req.Amount)
	}
	in := reconciliation.ClaimRequest{
		MemberID:  req.MemberID,
		Period:    models.Period{Month: req.Month, Year: req.Year},
		Amount:    amount,
		Reference: req.Reference,
	}

	var (
		ob  *models.Obligation
		err error
	)
	if h.entrance {
		ob, err = h.service.ManualEntranceBackfill(r.Context(), actor, in)
	} else {
		ob, err = h.service.ManualBackfill(r.Context(), actor, in)
	}
	if err != nil {
		log.Error("failed to record manual payment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("manual payment recorded", slog.Int64("obligation_id", ob.ID), slog.String("actor_id", actor.ID))
	render.JSON(w, r, response.OKWithData(ob))
}
