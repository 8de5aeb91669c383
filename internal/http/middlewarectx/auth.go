// Package middlewarectx содержит HTTP middleware реестра: проверку JWT и
// извлечение действующего лица, проверку возможностей, ограничение частоты
// запросов и метрики.
//
// JWTMiddleware проверяет токен в заголовке Authorization и кладёт в контекст
// models.Actor. В случае ошибки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/dues-ledger/internal/http/response"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey — ключ действующего лица в контексте.
const ActorKey Key = "actor"

// ActorParser разбирает токен в действующее лицо. Реализуется jwt.MakerImpl.
type ActorParser interface {
	ParseActor(tokenStr string) (models.Actor, error)
}

// WithActor кладёт действующее лицо в контекст.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom достаёт действующее лицо из контекста.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(models.Actor)
	if !ok || actor.ID == "" {
		return models.Actor{}, false
	}
	return actor, true
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
func JWTMiddleware(parser ActorParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := parser.ParseActor(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireCapability пропускает запрос, только если у действующего лица есть capability.
func RequireCapability(log *slog.Logger, capability models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				log.Error("actor missing in context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !actor.Can(capability) {
				log.Warn("capability denied",
					slog.String("actor_id", actor.ID),
					slog.String("capability", string(capability)),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				response.RenderError(w, r, models.ErrAuthorizationDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActsFor сообщает, может ли действующее лицо работать с данными участника:
// это он сам или у него есть одна из возможностей caps.
func ActsFor(actor models.Actor, memberID string, caps ...models.Capability) bool {
	if actor.ID == memberID {
		return true
	}
	for _, c := range caps {
		if actor.Can(c) {
			return true
		}
	}
	return false
}
