// Package account сводит три точки входа (форма, AJAX, GraphQL) к одной
// последовательности проверок и вызовов валидатора.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/metrics"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sanitize"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// Channel — точка входа, через которую пришёл запрос.
type Channel string

const (
	ChannelForm    Channel = "form"
	ChannelAJAX    Channel = "ajax"
	ChannelGraphQL Channel = "graphql"
)

// captcha сообщает, что канал проверяет CAPTCHA.
func (c Channel) captcha() bool {
	return c == ChannelForm || c == ChannelAJAX
}

// anonymous сообщает, что канал разрешает самостоятельную регистрацию без входа.
func (c Channel) anonymous() bool {
	return c == ChannelForm
}

// Authorizer проверяет права текущего пользователя.
type Authorizer interface {
	AuthorizeCreate(actor *models.Actor, role models.Role, allowAnonymous bool) errcode.List
	AuthorizeUpdate(actor *models.Actor, userID int64) errcode.List
	AuthorizeRead(actor *models.Actor, userID int64) errcode.List
}

// Registrar проверяет и сохраняет данные пользователя.
type Registrar interface {
	ValidateAndRegister(ctx context.Context, c models.Candidate, role models.Role) (int64, error)
	ValidateAndUpdate(ctx context.Context, userID int64, data map[string]string) (map[string]string, error)
}

// UserReader читает пользователя и его метаданные.
type UserReader interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetAllMeta(ctx context.Context, userID int64) (map[string]string, error)
}

// CaptchaVerifier проверяет ответ CAPTCHA.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// EventPublisher публикует событие о регистрации.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event models.UserRegisteredEvent) error
}

// Options — необязательные зависимости сервиса.
// Captcha равен nil, если ключи CAPTCHA не настроены; Events — если очередь не подключена.
type Options struct {
	RegistrationEnabled bool
	Captcha             CaptchaVerifier
	Events              EventPublisher
}

// RegisterRequest — запрос на создание пользователя.
type RegisterRequest struct {
	Actor        *models.Actor
	Candidate    models.Candidate
	Role         models.Role
	Channel      Channel
	CaptchaToken string
	RemoteIP     string
}

// Service выполняет регистрацию, изменение и чтение участников спортзала.
type Service struct {
	log       *slog.Logger
	authz     Authorizer
	registrar Registrar
	users     UserReader
	opts      Options
	now       func() time.Time
}

// New создаёт Service.
func New(log *slog.Logger, authz Authorizer, registrar Registrar, users UserReader, opts Options) *Service {
	return &Service{
		log:       log,
		authz:     authz,
		registrar: registrar,
		users:     users,
		opts:      opts,
		now:       time.Now,
	}
}

// Register создаёт пользователя. Порядок проверок: права, включена ли регистрация,
// CAPTCHA (только форма и AJAX), валидация. Без входа регистрироваться можно только через форму. Ошибки проверок возвращаются как errcode.List.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (user *models.GymUser, err error) {
	const op = "account.Register"
	log := s.log.With(slog.String("op", op), slog.String("channel", string(req.Channel)))
	defer func() {
		metrics.Registrations.WithLabelValues(string(req.Channel), outcome(err)).Inc()
	}()

	if codes := s.authz.AuthorizeCreate(req.Actor, req.Role, req.Channel.anonymous()); len(codes) > 0 {
		log.Info("registration forbidden", sl.Codes(codes.Strings()))
		return nil, codes
	}

	if !s.opts.RegistrationEnabled {
		return nil, errcode.Of(errcode.RegistrationDisabled)
	}

	if s.opts.Captcha != nil && req.Channel.captcha() {
		ok, err := s.opts.Captcha.Verify(ctx, req.CaptchaToken, req.RemoteIP)
		if err != nil {
			log.Warn("captcha verification failed", sl.Err(err))
		}
		if err != nil || !ok {
			return nil, errcode.Of(errcode.CaptchaFailed)
		}
	}

	userID, err := s.registrar.ValidateAndRegister(ctx, req.Candidate, req.Role)
	if err != nil {
		var codes errcode.List
		if errors.As(err, &codes) {
			log.Info("registration rejected", sl.Codes(codes.Strings()))
			return nil, codes
		}
		log.Error("failed to register user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err = s.load(ctx, userID)
	if err != nil {
		log.Warn("failed to read registered user", slog.Int64("user_id", userID), sl.Err(err))
		user = &models.GymUser{UserID: userID, Login: sanitize.Login(req.Candidate.Username)}
		err = nil
	}

	s.publish(ctx, log, req, user)
	return user, nil
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, req RegisterRequest, user *models.GymUser) {
	if s.opts.Events == nil {
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleSubscriber
	}
	event := models.UserRegisteredEvent{
		UserID:             user.UserID,
		Login:              user.Login,
		FullName:           user.FullName,
		Role:               role,
		MembershipDuration: user.MembershipDuration,
		Channel:            string(req.Channel),
		RegisteredAt:       s.now().UTC(),
	}
	if req.Candidate.Email != nil {
		event.Email = sanitize.Email(*req.Candidate.Email)
	}
	if err := s.opts.Events.PublishUserRegistered(ctx, event); err != nil {
		log.Error("failed to publish user registered event", slog.Int64("user_id", user.UserID), sl.Err(err))
	}
}

// Update меняет редактируемые поля участника и возвращает его актуальные данные.
func (s *Service) Update(ctx context.Context, actor *models.Actor, userID int64, data map[string]string) (user *models.GymUser, err error) {
	const op = "account.Update"
	log := s.log.With(slog.String("op", op), slog.Int64("user_id", userID))
	defer func() {
		metrics.Updates.WithLabelValues(outcome(err)).Inc()
	}()

	if codes := s.authz.AuthorizeUpdate(actor, userID); len(codes) > 0 {
		log.Info("update forbidden", sl.Codes(codes.Strings()))
		return nil, codes
	}

	written, err := s.registrar.ValidateAndUpdate(ctx, userID, data)
	if err != nil {
		var codes errcode.List
		if errors.As(err, &codes) {
			log.Info("update rejected", sl.Codes(codes.Strings()))
			return nil, codes
		}
		log.Error("failed to update user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("user meta written", slog.Int("fields", len(written)))

	user, err = s.load(ctx, userID)
	if err != nil {
		log.Error("failed to read updated user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GymUser возвращает данные участника userID.
func (s *Service) GymUser(ctx context.Context, actor *models.Actor, userID int64) (*models.GymUser, error) {
	const op = "account.GymUser"
	if codes := s.authz.AuthorizeRead(actor, userID); len(codes) > 0 {
		return nil, codes
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *Service) load(ctx context.Context, userID int64) (*models.GymUser, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	meta, err := s.users.GetAllMeta(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewGymUser(user, meta), nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var codes errcode.List
	if !errors.As(err, &codes) {
		return metrics.OutcomeError
	}
	if codes.IsAuthorization() {
		return metrics.OutcomeForbidden
	}
	return metrics.OutcomeInvalid
}
