// Package year реализует HTTP-обработчик двенадцатимесячной ведомости участника.
package year

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

// Service отдаёт ведомость участника за год.
type Service interface {
	MemberYear(ctx context.Context, memberID string, year int) ([]models.MonthLine, error)
}

// Handler управляет HTTP-запросами ведомости.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Ведомость участника за год
// @Description Двенадцать строк: месяцы без записи считаются unpaid с суммой по умолчанию.
// @Tags Dues
// @Produce  json
// @Param memberID path string true "Участник"
// @Param year path int true "Год"
// @Success 200 {object} response.OKResponse "Ведомость"
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Failure 403 {object} response.ErrorResponse "Чужая ведомость"
// @Failure 422 {object} response.ErrorResponse "Год вне допустимого диапазона"
// @Router /members/{memberID}/dues/{year} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.year"
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

	memberID := chi.URLParam(r, "memberID")
	y, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		log.Error("failed to decode year from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode year from url"))
		return
	}
	if !middlewarectx.ActsFor(actor, memberID, models.CapFinanceManage, models.CapReportsView) {
		log.Warn("foreign ledger requested", slog.String("actor_id", actor.ID), slog.String("member_id", memberID))
		response.RenderError(w, r, models.ErrAuthorizationDenied)
		return
	}

	lines, err := h.service.MemberYear(r.Context(), memberID, y)
	if err != nil {
		log.Error("failed to build member year", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"member_id": memberID,
		"year":      y,
		"months":    lines,
	}))
}
