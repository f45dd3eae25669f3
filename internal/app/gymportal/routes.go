// Package gymportal собирает HTTP приложение портала спортзала.
package gymportal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Регистрация swagger спецификации для /docs.
	_ "github.com/magabrotheeeer/gym-portal/docs"
	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/auth/login"
	gqlhandler "github.com/magabrotheeeer/gym-portal/internal/http/handlers/graphql"
	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/registration/ajax"
	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/registration/form"
	"github.com/magabrotheeeer/gym-portal/internal/http/middlewarectx"
)

// Handlers — обработчики и зависимости, из которых строится роутер.
type Handlers struct {
	Page    http.Handler
	Form    http.Handler
	AJAX    http.Handler
	GraphQL http.Handler
	Login   http.Handler
	Health  http.Handler
	Auth    middlewarectx.Service
	Limiter *rate.Limiter
}

// NewHandlers создаёт обработчики поверх собранных сервисов.
func NewHandlers(logger *slog.Logger, s *Services, page *form.PageHandler, limiter *rate.Limiter, registrationURL string, tokenTTL time.Duration) *Handlers {
	return &Handlers{
		Page:    page,
		Form:    form.New(logger, s.Account, registrationURL),
		AJAX:    ajax.New(logger, s.Account),
		GraphQL: gqlhandler.New(logger, s.Schema),
		Login:   login.New(logger, s.Auth, tokenTTL),
		Health:  health.New(logger, s.Pinger),
		Auth:    s.Auth,
		Limiter: limiter,
	}
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, h *Handlers) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	limit := middlewarectx.RateLimitMiddleware(logger, h.Limiter)

	// Страница регистрации и обработчик формы
	r.Get("/registration", h.Page.ServeHTTP)
	r.With(limit, middlewarectx.OptionalJWTMiddleware(h.Auth, logger)).
		Post("/registration", h.Form.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(limit).Post("/login", h.Login.ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(h.Auth, logger))
			r.Use(limit)
			r.Post("/ajax/register-gym-member", h.AJAX.ServeHTTP)
		})
	})

	r.With(middlewarectx.OptionalJWTMiddleware(h.Auth, logger)).Post("/graphql", h.GraphQL.ServeHTTP)

	r.Get("/health", h.Health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
