// Package claim реализует HTTP-обработчики заявок участника об оплате
// ежемесячного и вступительного взноса.
//
// Участник подаёт заявку только за себя. Казначей (finance:manage) может
// подать заявку за любого участника.
package claim

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

// Request — тело заявки. Пустой member_id означает самого заявителя,
// пустая amount — сумму по умолчанию. month и year игнорируются для вступительного взноса.
type Request struct {
	MemberID  string `json:"member_id,omitempty" example:"m-1"`
	Month     int    `json:"month,omitempty" validate:"omitempty,min=1,max=12" example:"3"`
	Year      int    `json:"year,omitempty" validate:"omitempty,min=2000,max=2100" example:"2025"`
	Amount    string `json:"amount,omitempty" validate:"omitempty,numeric,max=16" example:"5.00"`
	Reference string `json:"reference" validate:"required,max=128" example:"TT-001"`
}

// Service описывает интерфейс сервиса сверки для подачи заявок.
type Service interface {
	SubmitClaim(ctx context.Context, actor models.Actor, req reconciliation.ClaimRequest) (*models.Obligation, error)
	SubmitEntranceClaim(ctx context.Context, actor models.Actor, req reconciliation.ClaimRequest) (*models.Obligation, error)
}

// Handler управляет HTTP-запросами на подачу заявки.
type Handler struct {
	log      *slog.Logger
	service  Service
	entrance bool
	validate *validator.Validate
}

// New создаёт обработчик заявок на ежемесячный взнос.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// NewEntrance создаёт обработчик заявок на вступительный взнос.
func NewEntrance(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, entrance: true, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Заявка об оплате взноса
// @Description Переводит месячный (или вступительный) взнос участника в pending. Оплаченный период отклоняется, заявка на проверке не перезаписывается (409).
// @Tags Dues
// @Accept  json
// @Produce  json
// @Param request body Request true "Период, сумма и ссылка на платёж"
// @Success 200 {object} response.OKResponse "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Заявка за другого участника"
// @Failure 409 {object} response.ErrorResponse "Заявка уже на проверке"
// @Failure 422 {object} response.ErrorResponse "Период некорректен или уже оплачен"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /dues/claims [post]
// @Router /dues/entrance/claims [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.claim"
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
	if !h.entrance && (req.Month == 0 || req.Year == 0) {
		log.Error("period missing")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Month and Year are required"))
		return
	}

	if req.MemberID == "" {
		req.MemberID = actor.ID
	}
	if !middlewarectx.ActsFor(actor, req.MemberID, models.CapFinanceManage) {
		log.Warn("claim for another member denied", slog.String("actor_id", actor.ID), slog.String("member_id", req.MemberID))
		response.RenderError(w, r, models.ErrAuthorizationDenied)
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		amount = decimal.RequireFromString(req.Amount)
	}
	claim := reconciliation.ClaimRequest{
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
		ob, err = h.service.SubmitEntranceClaim(r.Context(), actor, claim)
	} else {
		ob, err = h.service.SubmitClaim(r.Context(), actor, claim)
	}
	if err != nil {
		log.Error("failed to submit claim", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("claim submitted", slog.Int64("obligation_id", ob.ID))
	render.JSON(w, r, response.OKWithData(ob))
}
