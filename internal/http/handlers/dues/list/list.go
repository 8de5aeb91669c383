// Package list реализует HTTP-обработчик списка обязательств, в том числе
// очереди заявок на проверку (?status=pending).
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

const defaultLimit = 100

// Query — параметры выборки из строки запроса.
type Query struct {
	MemberID string `validate:"max=64"`
	Kind     string `validate:"omitempty,oneof=monthly entrance"`
	Status   string `validate:"omitempty,oneof=unpaid pending paid failed"`
	Year     int    `validate:"omitempty,min=2000,max=2100"`
	Limit    int    `validate:"min=0,max=500"`
	Offset   int    `validate:"min=0"`
}

// Service описывает выборку обязательств.
type Service interface {
	List(ctx context.Context, filter models.ObligationFilter) ([]models.Obligation, error)
}

// Handler управляет HTTP-запросами списка обязательств.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ServeHTTP godoc
// @Summary Список обязательств
// @Description Фильтры по участнику, виду, статусу и году. Статус учитывает старые написания.
// @Tags Dues
// @Produce  json
// @Param member_id query string false "Участник"
// @Param kind query string false "monthly или entrance"
// @Param status query string false "unpaid, pending, paid, failed"
// @Param year query int false "Год"
// @Param limit query int false "Не более 500, по умолчанию 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.OKResponse "Обязательства"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /dues/obligations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	query := Query{MemberID: q.Get("member_id"), Kind: q.Get("kind"), Status: q.Get("status")}
	var err error
	for _, p := range []struct {
		name string
		dst  *int
	}{{"year", &query.Year}, {"limit", &query.Limit}, {"offset", &query.Offset}} {
		if *p.dst, err = atoi(q.Get(p.name)); err != nil {
			log.Error("failed to parse query parameter", slog.String("param", p.name), sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid query parameter "+p.name))
			return
		}
	}
	if err := h.validate.Struct(query); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultLimit
	}

	obs, err := h.service.List(r.Context(), models.ObligationFilter{
		MemberID: query.MemberID,
		Kind:     models.Kind(query.Kind),
		Status:   models.Status(query.Status),
		Year:     query.Year,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		log.Error("failed to list obligations", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if obs == nil {
		obs = []models.Obligation{}
	}

	log.Info("obligations listed", slog.Int("count", len(obs)))
	render.JSON(w, r, response.OKWithData(obs))
}
