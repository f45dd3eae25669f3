// Package services содержит логику входа в портал и проверки JWT.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-portal/internal/lib/metrics"
	"github.com/magabrotheeeer/gym-portal/internal/lib/password"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sanitize"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	"github.com/magabrotheeeer/gym-portal/internal/services/authorizer"
	"github.com/magabrotheeeer/gym-portal/internal/storage"
)

// UserRepository описывает контракт для поиска пользователей в базе данных.
type UserRepository interface {
	// GetUserByLogin возвращает пользователя по логину или email, либо storage.ErrUserNotFound.
	GetUserByLogin(ctx context.Context, loginOrEmail string) (*models.User, error)
}

// CapabilityChecker проверяет права пользователя.
type CapabilityChecker interface {
	Can(actor *models.Actor, capability authorizer.Capability) bool
}

// Redirects — адреса, куда отправить пользователя после входа.
type Redirects struct {
	Home      string
	Dashboard string
	Admin     string
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	UserID     int64
	Login      string
	Role       models.Role
	Token      string
	RedirectTo string
}

// AuthService отвечает за вход и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	caps      CapabilityChecker
	redirects Redirects
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, caps CapabilityChecker, redirects Redirects) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		caps:      caps,
		redirects: redirects,
	}
}

// Login проверяет логин (или email) и пароль и выдаёт JWT.
// Неизвестный пользователь даёт InvalidCredentials, неверный пароль — IncorrectPassword.
func (s *AuthService) Login(ctx context.Context, login, rawPassword string) (res *LoginResult, err error) {
	const op = "services.Login"
	defer func() {
		metrics.Logins.WithLabelValues(loginOutcome(err)).Inc()
	}()

	login = strings.TrimSpace(login)
	if login == "" || rawPassword == "" {
		return nil, errcode.Of(errcode.EmptyField)
	}
	if !strings.Contains(login, "@") {
		login = sanitize.Login(login)
	} else {
		login = sanitize.Email(login)
	}

	user, err := s.users.GetUserByLogin(ctx, login)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, errcode.Of(errcode.InvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, errcode.Of(errcode.IncorrectPassword)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Login, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	actor := &models.Actor{UserID: user.ID, Login: user.Login, Role: user.Role}
	return &LoginResult{
		UserID:     user.ID,
		Login:      user.Login,
		Role:       user.Role,
		Token:      token,
		RedirectTo: s.RedirectFor(actor),
	}, nil
}

// RedirectFor выбирает адрес после входа: администраторам — админка,
// тем, кто видит список участников, — панель, остальным — главная.
func (s *AuthService) RedirectFor(actor *models.Actor) string {
	switch {
	case s.caps.Can(actor, authorizer.ManageOptions):
		return s.redirects.Admin
	case s.caps.Can(actor, authorizer.ListGymMembers):
		return s.redirects.Dashboard
	}
	return s.redirects.Home
}

// ValidateToken проверяет JWT и возвращает пользователя, от имени которого выполняется запрос.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.Actor, error) {
	const op = "services.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Actor{
		UserID: claims.UserID,
		Login:  claims.Username,
		Role:   models.ParseRole(claims.Role),
	}, nil
}

func loginOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var codes errcode.List
	if errors.As(err, &codes) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
