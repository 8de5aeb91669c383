// Package record реализует HTTP-обработчики записи поступлений и расходов
// свободного учёта.
package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/ledger"
)

// DateLayout — формат даты записи в запросах.
const DateLayout = "2006-01-02"

// Request — тело записи. Для расхода category — одна из категорий
// maintenance, activities, welfare, other; для дохода — источник.
type Request struct {
	Title       string `json:"title" validate:"required,max=200" example:"Roof repair"`
	Category    string `json:"category" validate:"required,max=64" example:"maintenance"`
	Amount      string `json:"amount" validate:"required,numeric,max=16" example:"120.50"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2025-03-14"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// Input переводит проверенный запрос во входные данные сервиса.
func (req Request) Input() ledger.EntryInput {
	in := ledger.EntryInput{
		Title:       req.Title,
		Category:    req.Category,
		Amount:      decimal.RequireFromString(req.Amount),
		Description: req.Description,
	}
	if req.Date != "" {
		in.Date, _ = time.Parse(DateLayout, req.Date)
	}
	return in
}

// Service описывает запись в свободный учёт.
type Service interface {
	RecordIncome(ctx context.Context, actor models.Actor, in ledger.EntryInput) (*models.DiscretionaryEntry, error)
	RecordExpense(ctx context.Context, actor models.Actor, in ledger.EntryInput) (*models.DiscretionaryEntry, error)
}

// Handler управляет HTTP-запросами записи.
type Handler struct {
	log      *slog.Logger
	service  Service
	polarity models.Polarity
	validate *validator.Validate
}

// NewIncome создаёт обработчик поступлений.
func NewIncome(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, polarity: models.PolarityIncome, validate: validator.New()}
}

// NewExpense создаёт обработчик расходов.
func NewExpense(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, polarity: models.PolarityExpense, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Записать поступление или расход
// @Tags Ledger
// @Accept  json
// @Produce  json
// @Param request body Request true "Запись"
// @Success 201 {object} response.OKResponse "Запись создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Некорректная сумма или категория"
// @Router /ledger/income [post]
// @Router /ledger/expenses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.record"
	log := h.log.With(
		slog.String("op", op),
		slog.String("polarity", string(h.polarity)),
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

	var (
		entry *models.DiscretionaryEntry
		err   error
	)
	if h.polarity == models.PolarityIncome {
		entry, err = h.service.RecordIncome(r.Context(), actor, req.Input())
	} else {
		entry, err = h.service.RecordExpense(r.Context(), actor, req.Input())
	}
	if err != nil {
		log.Error("failed to record entry", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("ledger entry recorded", slog.Int64("entry_id", entry.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(entry))
}
