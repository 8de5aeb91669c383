// Package update реализует HTTP-обработчик изменения записи свободного учёта.
// Направление записи (доход или расход) не меняется.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/dues-ledger/internal/http/handlers/ledger/record"
	"github.com/magabrotheeeer/dues-ledger/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/services/ledger"
)

// Service описывает изменение записи.
type Service interface {
	Update(ctx context.Context, id int64, actor models.Actor, in ledger.EntryInput) (*models.DiscretionaryEntry, error)
}

// Handler управляет HTTP-запросами изменения.
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
// @Summary Изменить запись свободного учёта
// @Tags Ledger
// @Accept  json
// @Produce  json
// @Param id path int true "ID записи"
// @Param request body record.Request true "Новые данные"
// @Success 200 {object} response.OKResponse "Запись изменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный id или JSON"
// @Failure 404 {object} response.ErrorResponse "Не найдено"
// @Failure 422 {object} response.ErrorResponse "Некорректные данные"
// @Router /ledger/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.update"
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

	var req record.Request
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

	entry, err := h.service.Update(r.Context(), id, actor, req.Input())
	if err != nil {
		log.Error("failed to update entry", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("ledger entry updated", slog.Int64("entry_id", id))
	render.JSON(w, r, response.OKWithData(entry))
}
