// Package list реализует HTTP-обработчик списка записей свободного учёта.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/record"
	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

const defaultLimit = 100

// Query — параметры выборки. Даты в формате YYYY-MM-DD, to включительно.
type Query struct {
	Polarity string `validate:"omitempty,oneof=income expense"`
	From     string `validate:"omitempty,datetime=2006-01-02"`
	To       string `validate:"omitempty,datetime=2006-01-02"`
	Limit    int    `validate:"min=0,max=500"`
	Offset   int    `validate:"min=0"`
}

// Service описывает выборку записей.
type Service interface {
	List(ctx context.Context, filter models.EntryFilter) ([]models.DiscretionaryEntry, error)
}

// Handler управляет HTTP-запросами списка.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Список записей свободного учёта
// @Tags Ledger
// @Produce  json
// @Param polarity query string false "income или expense"
// @Param from query string false "Начало периода, YYYY-MM-DD"
// @Param to query string false "Конец периода, YYYY-MM-DD"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.OKResponse "Записи"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 422 {object} response.ErrorResponse "Пустой диапазон дат"
// @Router /ledger [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	values := r.URL.Query()
	q := Query{
		Polarity: values.Get("polarity"),
		From:     values.Get("from"),
		To:       values.Get("to"),
		Limit:    defaultLimit,
	}
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("failed to parse query", slog.String("param", name), sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid query parameter "+name))
			return
		}
		*dst = v
	}
	if err := h.validate.Struct(q); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	filter := models.EntryFilter{
		Polarity: models.Polarity(q.Polarity),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.From != "" {
		from, _ := time.Parse(record.DateLayout, q.From)
		filter.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(record.DateLayout, q.To)
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list entries", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.DiscretionaryEntry{}
	}
	render.JSON(w, r, response.OKWithData(entries))
}
