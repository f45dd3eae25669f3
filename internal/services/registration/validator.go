// Package registration проверяет данные нового или изменяемого пользователя
// и сохраняет их в хранилище.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/lib/membership"
	"github.com/magabrotheeeer/gym-portal/internal/lib/password"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sanitize"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sl"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	"github.com/magabrotheeeer/gym-portal/internal/storage"
)

// MinUsernameLength — минимальная длина имени пользователя.
const MinUsernameLength = 4

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9 _.\-@]+$`)

// metaOrder задаёт порядок записи метаданных после регистрации.
var metaOrder = []string{
	models.MetaFullName,
	models.MetaIsStudent,
	models.MetaBranch,
	models.MetaGymRole,
	models.MetaMembershipDuration,
}

// Store — операции хранилища пользователей, нужные для регистрации и обновления.
type Store interface {
	UsernameExists(ctx context.Context, login string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	CreateUser(ctx context.Context, user models.NewUser) (int64, error)
	GetMeta(ctx context.Context, userID int64, key string) (string, error)
	SetMeta(ctx context.Context, userID int64, key, value string) error
}

// Validator проверяет кандидатов и сохраняет пользователей.
type Validator struct {
	log       *slog.Logger
	store     Store
	sanitizer *Sanitizer
	rules     []ValidationRule
	validate  *validator.Validate
}

// New создаёт Validator. Дополнительные правила выполняются в переданном порядке
// после базовых проверок.
func New(log *slog.Logger, store Store, resolver *membership.Resolver, rules ...ValidationRule) *Validator {
	return &Validator{
		log:       log,
		store:     store,
		sanitizer: NewSanitizer(resolver),
		rules:     rules,
		validate:  validator.New(),
	}
}

// DefaultRules возвращает правила для ролей спортзала.
func DefaultRules(store LoginChecker, resolver *membership.Resolver) []ValidationRule {
	return []ValidationRule{
		MembershipDurationRule(resolver.Now),
		FullNameLoginRule(store),
	}
}

// Validate выполняет все проверки кандидата и возвращает все найденные ошибки.
// Пустая роль проверяется как subscriber.
func (v *Validator) Validate(ctx context.Context, c models.Candidate, role models.Role) (errcode.List, error) {
	const op = "registration.Validate"
	if role == "" {
		role = models.RoleSubscriber
	}

	var errs errcode.List

	username := c.Username
	if strings.TrimSpace(username) == "" ||
		(c.Email != nil && strings.TrimSpace(*c.Email) == "") ||
		(c.Password != nil && *c.Password == "") {
		errs = errs.Add(errcode.EmptyField)
	}

	if len(username) < MinUsernameLength {
		errs = errs.Add(errcode.UsernameTooShort)
	}

	login := sanitize.Login(username)
	if login != "" {
		exists, err := v.store.UsernameExists(ctx, login)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			errs = errs.Add(errcode.UsernameExists)
		}
	}

	if !usernamePattern.MatchString(username) || login == "" {
		errs = errs.Add(errcode.InvalidUsername)
	}

	if c.Email != nil {
		email := sanitize.Email(*c.Email)
		if err := v.validate.Var(email, "required,email"); err != nil {
			errs = errs.Add(errcode.EmailInvalid)
		}
		if email != "" {
			exists, err := v.store.EmailExists(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if exists {
				errs = errs.Add(errcode.EmailExists)
			}
		}
	}

	in := RuleInput{Op: OpRegister, Role: role, Fields: c.MetaFields()}
	for _, rule := range v.rules {
		found, err := rule.Validate(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		errs = errs.Add(found...)
	}

	return errs, nil
}

// ValidateAndRegister проверяет кандидата и создаёт пользователя с ролью role.
// Ошибки валидации возвращаются как errcode.List, сбои хранилища оборачиваются.
// Если пароль не передан, генерируется случайный.
func (v *Validator) ValidateAndRegister(ctx context.Context, c models.Candidate, role models.Role) (int64, error) {
	const op = "registration.ValidateAndRegister"
	if role == "" {
		role = models.RoleSubscriber
	}

	errs, err := v.Validate(ctx, c, role)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(errs) > 0 {
		return 0, errs
	}

	raw := ""
	if c.Password != nil {
		raw = *c.Password
	} else {
		raw, err = password.Generate(password.GeneratedLength)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	hash, err := password.GetHash(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	email := ""
	if c.Email != nil {
		email = sanitize.Email(*c.Email)
	}

	userID, err := v.store.CreateUser(ctx, models.NewUser{
		Login:        sanitize.Login(c.Username),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		return 0, errcode.Of(errcode.UsernameExists)
	case errors.Is(err, storage.ErrEmailTaken):
		return 0, errcode.Of(errcode.EmailExists)
	case err != nil:
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if role.IsGym() {
		fields := c.MetaFields()
		fields[models.MetaGymRole] = string(role)
		v.persistMeta(ctx, userID, fields)
	}
	if role.HidesAdminBar() {
		if err := v.store.SetMeta(ctx, userID, models.MetaShowAdminBar, "false"); err != nil {
			v.log.Error("failed to hide admin bar", slog.Int64("user_id", userID), sl.Err(err))
		}
	}

	v.log.Info("user registered", slog.Int64("user_id", userID), slog.String("role", string(role)))
	return userID, nil
}

// persistMeta сохраняет метаданные нового пользователя. Пользователь уже создан,
// поэтому сбой записи отдельного поля только логируется.
func (v *Validator) persistMeta(ctx context.Context, userID int64, fields map[string]string) {
	for _, key := range metaOrder {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		value, ok, err := v.sanitizer.Sanitize(ctx, key, raw, 0)
		if err != nil {
			v.log.Warn("meta value rejected", slog.Int64("user_id", userID), slog.String("key", key), sl.Err(err))
			continue
		}
		if !ok {
			continue
		}
		if err := v.store.SetMeta(ctx, userID, key, value); err != nil {
			v.log.Error("failed to save meta", slog.Int64("user_id", userID), slog.String("key", key), sl.Err(err))
		}
	}
}

// ValidateAndUpdate проверяет и сохраняет редактируемые поля пользователя userID.
// Пустые и неизвестные поля пропускаются. Возвращает записанные значения.
// Запись не атомарна: при UpdateFailed поля, записанные до сбоя, остаются сохранёнными.
func (v *Validator) ValidateAndUpdate(ctx context.Context, userID int64, data map[string]string) (map[string]string, error) {
	const op = "registration.ValidateAndUpdate"

	fields := make(map[string]string, len(models.EditableFields))
	for _, key := range models.EditableFields {
		if value, ok := data[key]; ok && strings.TrimSpace(value) != "" {
			fields[key] = strings.TrimSpace(value)
		}
	}

	exists, err := v.store.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, errcode.Of(errcode.UpdateFailed)
	}

	var errs errcode.List
	in := RuleInput{Op: OpUpdate, UserID: userID, Fields: fields}
	for _, rule := range v.rules {
		found, err := rule.Validate(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		errs = errs.Add(found...)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	written := make(map[string]string, len(fields))
	for _, key := range models.EditableFields {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		value, ok, err := v.sanitizer.Sanitize(ctx, key, raw, userID)
		if err != nil {
			if codes := errcode.FromError(err); !codes.Has(errcode.Unknown) {
				errs = errs.Add(codes...)
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			continue
		}
		if err := v.store.SetMeta(ctx, userID, key, value); err != nil {
			v.log.Error("failed to update meta", slog.Int64("user_id", userID), slog.String("key", key), sl.Err(err))
			errs = errs.Add(errcode.UpdateFailed)
			continue
		}
		written[key] = value
	}
	if len(errs) > 0 {
		return nil, errs
	}

	v.log.Info("user updated", slog.Int64("user_id", userID), slog.Int("fields", len(written)))
	return written, nil
}
