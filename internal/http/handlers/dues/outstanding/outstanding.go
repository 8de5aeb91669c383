// Package outstanding реализует HTTP-обработчик задолженности участника за год.
package outstanding

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
	"github.com/magabrotheeeer/dues-ledger/internal/services/aggregation"
)

// Service считает задолженность.
type Service interface {
	MemberOutstanding(ctx context.Context, memberID string, year int) (*aggregation.Outstanding, error)
}

// Handler управляет HTTP-запросами задолженности.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Задолженность участника
// @Description Сумма по наступившим неоплаченным месяцам. Будущие месяцы отдельно, в not_yet_due.
// @Tags Dues
// @Produce  json
// @Param memberID path string true "Участник"
// @Param year path int true "Год"
// @Success 200 {object} response.OKResponse "Задолженность"
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Failure 403 {object} response.ErrorResponse "Чужие данные"
// @Router /members/{memberID}/outstanding/{year} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dues.outstanding"
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
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		log.Error("failed to decode year from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode year from url"))
		return
	}
	if !middlewarectx.ActsFor(actor, memberID, models.CapFinanceManage, models.CapReportsView) {
		response.RenderError(w, r, models.ErrAuthorizationDenied)
		return
	}

	out, err := h.service.MemberOutstanding(r.Context(), memberID, year)
	if err != nil {
		log.Error("failed to compute outstanding", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(out))
}
