package login

import (
	"context"

	services "github.com/magabrotheeeer/gym-portal/internal/services/auth"
)

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, login, password string) (*services.LoginResult, error)
}
