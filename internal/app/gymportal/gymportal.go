package gymportal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	gql "github.com/graphql-go/graphql"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/gym-portal/internal/cache"
	"github.com/magabrotheeeer/gym-portal/internal/config"
	gqlhandler "github.com/magabrotheeeer/gym-portal/internal/http/handlers/graphql"
	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-portal/internal/http/handlers/registration/form"
	"github.com/magabrotheeeer/gym-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-portal/internal/lib/membership"
	"github.com/magabrotheeeer/gym-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-portal/internal/lib/recaptcha"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/migrations"
	"github.com/magabrotheeeer/gym-portal/internal/services/account"
	authservice "github.com/magabrotheeeer/gym-portal/internal/services/auth"
	"github.com/magabrotheeeer/gym-portal/internal/services/authorizer"
	"github.com/magabrotheeeer/gym-portal/internal/services/registration"
	"github.com/magabrotheeeer/gym-portal/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// metaStore — источник метаданных пользователей: сама база или кеш поверх неё.
type metaStore interface {
	GetMeta(ctx context.Context, userID int64, key string) (string, error)
	GetAllMeta(ctx context.Context, userID int64) (map[string]string, error)
	SetMeta(ctx context.Context, userID int64, key, value string) error
}

// userStore — хранилище пользователей, в котором метаданные читаются через meta.
type userStore struct {
	*storage.Storage
	meta metaStore
}

func (s *userStore) GetMeta(ctx context.Context, userID int64, key string) (string, error) {
	return s.meta.GetMeta(ctx, userID, key)
}

func (s *userStore) GetAllMeta(ctx context.Context, userID int64) (map[string]string, error) {
	return s.meta.GetAllMeta(ctx, userID)
}

func (s *userStore) SetMeta(ctx context.Context, userID int64, key, value string) error {
	return s.meta.SetMeta(ctx, userID, key, value)
}

// Services — сервисы, которые используют обработчики.
type Services struct {
	Account *account.Service
	Auth    *authservice.AuthService
	Schema  gql.Schema
	Pinger  health.Pinger
}

// BuildServices собирает сервисы портала поверх хранилища. captcha и events могут быть nil.
func BuildServices(logger *slog.Logger, cfg *config.Config, store *userStore, captcha account.CaptchaVerifier, events account.EventPublisher) (*Services, error) {
	resolver := membership.NewResolver(store, cfg.Location(), nil)
	validator := registration.New(logger, store, resolver, registration.DefaultRules(store, resolver)...)
	authz := authorizer.New(authorizer.DefaultGrants())

	accountService := account.New(logger, authz, validator, store, account.Options{
		RegistrationEnabled: cfg.RegistrationEnabled(),
		Captcha:             captcha,
		Events:              events,
	})

	authService := authservice.NewAuthService(
		store,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		authz,
		authservice.Redirects{Home: cfg.HomeURL, Dashboard: cfg.DashboardURL, Admin: cfg.AdminURL},
	)

	schema, err := gqlhandler.NewSchema(logger, accountService)
	if err != nil {
		return nil, err
	}

	return &Services{
		Account: accountService,
		Auth:    authService,
		Schema:  schema,
		Pinger:  store,
	}, nil
}

// App — HTTP сервер портала и открытые им соединения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключается к зависимостям и собирает роутер. Redis, RabbitMQ и reCAPTCHA
// необязательны: без адреса или ключей соответствующая функция отключается.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}
	store := &userStore{Storage: db, meta: db}

	if cfg.RedisAddress != "" {
		cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis unavailable, user meta cache disabled", sl.Err(err))
		} else {
			app.cache = cacheRedis
			store.meta = cache.NewMetaCache(db, cacheRedis, cfg.RedisTTL, logger)
		}
	}

	var captcha account.CaptchaVerifier
	if cfg.CaptchaEnabled() {
		captcha = recaptcha.New(cfg.RecaptchaSecretKey, cfg.RecaptchaVerifyURL, cfg.RecaptchaTimeout)
	}

	var events account.EventPublisher
	if cfg.RabbitURL != "" {
		if publisher, err := app.connectPublisher(cfg); err != nil {
			logger.Warn("rabbitmq unavailable, registration events disabled", sl.Err(err))
		} else {
			events = publisher
		}
	}

	services, err := BuildServices(logger, cfg, store, captcha, events)
	if err != nil {
		app.close()
		return nil, err
	}

	siteKey := ""
	if cfg.CaptchaEnabled() {
		siteKey = cfg.RecaptchaSiteKey
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	handlers := NewHandlers(logger, services, form.NewPage(cfg.RegistrationEnabled(), siteKey), limiter, cfg.RegistrationPageURL, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, handlers)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) connectPublisher(cfg *config.Config) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitExchange, rabbitmq.GetNotificationQueues(cfg.RabbitRoutingKey))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	a.conn, a.ch = conn, ch
	return rabbitmq.NewPublisher(ch, cfg.RabbitExchange, cfg.RabbitRoutingKey), nil
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
