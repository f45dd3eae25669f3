// Package storage реализует хранилище пользователей портала на основе PostgreSQL:
// учётные записи в таблице users и метаданные участников в таблице user_meta.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/gym-portal/internal/models"
)

var (
	// ErrUserNotFound возвращается, если пользователя с таким идентификатором или логином нет.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken возвращается при нарушении уникальности логина.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken возвращается при нарушении уникальности email.
	ErrEmailTaken = errors.New("email already taken")
)

const (
	loginConstraint = "users_login_key"
	emailConstraint = "users_email_key"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping проверяет соединение с базой, используется в health‑check.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ===== USER METHODS =====

// UsernameExists проверяет, занят ли логин.
func (s *Storage) UsernameExists(ctx context.Context, login string) (bool, error) {
	const op = "storage.UsernameExists"
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE login = $1)`
	if err := s.DB.QueryRowContext(ctx, query, login).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// EmailExists проверяет, зарегистрирован ли email. Регистр не учитывается.
func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.EmailExists"
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := s.DB.QueryRowContext(ctx, query, strings.TrimSpace(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// UserExists проверяет наличие пользователя по идентификатору.
func (s *Storage) UserExists(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.UserExists"
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Нарушение уникальности логина или email возвращается как ErrUsernameTaken или ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.NewUser) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var email sql.NullString
	if user.Email != "" {
		email = sql.NullString{String: user.Email, Valid: true}
	}

	var newID int64
	query := `INSERT INTO users (login, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		user.Login, email, user.PasswordHash, string(user.Role)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapUniqueViolation(err))
	}
	return newID, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case loginConstraint:
		return ErrUsernameTaken
	case emailConstraint:
		return ErrEmailTaken
	}
	return err
}

const userColumns = `id, login, COALESCE(email, ''), password_hash, role, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByLogin возвращает пользователя по логину или email.
func (s *Storage) GetUserByLogin(ctx context.Context, loginOrEmail string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE login = $1 OR lower(email) = lower($1)
			  ORDER BY login = $1 DESC
			  LIMIT 1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, strings.TrimSpace(loginOrEmail)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ===== META METHODS =====

// GetMeta возвращает значение метаданных пользователя. Отсутствующий ключ даёт пустую строку.
func (s *Storage) GetMeta(ctx context.Context, userID int64, key string) (string, error) {
	const op = "storage.GetMeta"
	var value string
	query := `SELECT meta_value FROM user_meta WHERE user_id = $1 AND meta_key = $2`
	err := s.DB.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// GetAllMeta возвращает все метаданные пользователя.
func (s *Storage) GetAllMeta(ctx context.Context, userID int64) (map[string]string, error) {
	const op = "storage.GetAllMeta"
	query := `SELECT meta_key, meta_value FROM user_meta WHERE user_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return meta, nil
}

// SetMeta записывает значение метаданных, перезаписывая предыдущее.
func (s *Storage) SetMeta(ctx context.Context, userID int64, key, value string) error {
	const op = "storage.SetMeta"
	query := `INSERT INTO user_meta (user_id, meta_key, meta_value)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_id, meta_key)
			  DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, userID, key, value); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
