package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/membership"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sanitize"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// Operation — вид проверяемой операции.
type Operation int

const (
	OpRegister Operation = iota + 1
	OpUpdate
)

// RuleInput — данные, которые получает дополнительное правило проверки.
type RuleInput struct {
	Op     Operation
	Role   models.Role
	UserID int64
	Fields map[string]string
}

// ValidationRule — дополнительная проверка, зависящая от роли.
// Возвращает найденные ошибки валидации; error — только для сбоев инфраструктуры.
type ValidationRule interface {
	Validate(ctx context.Context, in RuleInput) (errcode.List, error)
}

// RuleFunc позволяет использовать функцию как ValidationRule.
type RuleFunc func(ctx context.Context, in RuleInput) (errcode.List, error)

// Validate вызывает f.
func (f RuleFunc) Validate(ctx context.Context, in RuleInput) (errcode.List, error) {
	return f(ctx, in)
}

// LoginChecker проверяет занятость логина.
type LoginChecker interface {
	UsernameExists(ctx context.Context, login string) (bool, error)
}

// FullNameLoginRule не даёт зарегистрировать пользователя спортзала, если логин,
// полученный из полного имени, уже занят.
func FullNameLoginRule(store LoginChecker) ValidationRule {
	return RuleFunc(func(ctx context.Context, in RuleInput) (errcode.List, error) {
		const op = "registration.FullNameLoginRule"
		if in.Op != OpRegister || !in.Role.IsGym() {
			return nil, nil
		}
		fullName, ok := in.Fields[models.MetaFullName]
		if !ok {
			return nil, nil
		}
		login := sanitize.Login(fullName)
		if login == "" {
			return nil, nil
		}
		exists, err := store.UsernameExists(ctx, login)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			return errcode.Of(errcode.UsernameExists), nil
		}
		return nil, nil
	})
}

// MembershipDurationRule проверяет формат срока абонемента и что явная дата не в прошлом.
// При регистрации правило действует только для ролей спортзала.
func MembershipDurationRule(now func() time.Time) ValidationRule {
	return RuleFunc(func(_ context.Context, in RuleInput) (errcode.List, error) {
		if in.Op == OpRegister && !in.Role.IsGym() {
			return nil, nil
		}
		value, ok := in.Fields[models.MetaMembershipDuration]
		if !ok {
			return nil, nil
		}
		return membership.ValidDuration(value, now()), nil
	})
}
