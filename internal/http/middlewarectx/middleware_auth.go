// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов
// и ограничения частоты запросов.
//
// JWTMiddleware берёт токен из заголовка Authorization или из cookie, проверяет его
// и кладёт в контекст актора запроса. OptionalJWTMiddleware пропускает анонимные
// запросы без токена.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-portal/internal/http/response"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey — ключ актора запроса в контексте.
const ActorKey Key = "actor"

// TokenCookie — cookie, в которой браузер хранит токен после входа.
const TokenCookie = "gym_portal_token"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Actor, error)
}

// WithActor возвращает контекст с актором.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom возвращает актора запроса или nil для анонимного запроса.
func ActorFrom(ctx context.Context) *models.Actor {
	actor, _ := ctx.Value(ActorKey).(*models.Actor)
	return actor
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// JWTMiddleware возвращает HTTP middleware, который требует валидный JWT.
// Иначе отвечает 401 с кодом unauthenticated.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return jwtMiddleware(authService, log, true)
}

// OptionalJWTMiddleware пропускает запросы без токена как анонимные.
// Переданный, но невалидный токен всё равно даёт 401.
func OptionalJWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return jwtMiddleware(authService, log, false)
}

func jwtMiddleware(authService Service, log *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := tokenFrom(r)
			if token == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				log.Info("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Codes(errcode.Of(errcode.Unauthenticated)))
				return
			}

			actor, err := authService.ValidateToken(r.Context(), token)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Codes(errcode.Of(errcode.Unauthenticated)))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
