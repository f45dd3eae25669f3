// Package models содержит доменную модель пользователя портала:
// учётные данные, роль и метаданные участника спортзала.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Ключи метаданных пользователя, которыми владеет портал.
const (
	MetaFullName           = "full_name"
	MetaIsStudent          = "is_student"
	MetaBranch             = "branch"
	MetaGymRole            = "gym_role"
	MetaMembershipDuration = "membership_duration"
	MetaShowAdminBar       = "show_admin_bar_front"
)

// EditableFields — поля, которые разрешено менять у существующего пользователя.
var EditableFields = []string{MetaFullName, MetaMembershipDuration}

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64     // Идентификатор пользователя
	Login        string    // Логин (уникальный)
	Email        string    // Электронная почта, может быть пустой
	PasswordHash string    // Хэш пароля пользователя
	Role         Role      // Роль пользователя
	CreatedAt    time.Time // Дата регистрации
}

// NewUser — данные для создания записи в хранилище пользователей.
type NewUser struct {
	Login        string
	Email        string
	PasswordHash string
	Role         Role
}

// GymUser — представление участника спортзала, собранное из записи пользователя и его метаданных.
type GymUser struct {
	UserID             int64  `json:"userId"`
	Login              string `json:"login"`
	FullName           string `json:"full_name"`
	IsStudent          int    `json:"is_student"`
	Branch             string `json:"branch"`
	GymRole            string `json:"gym_role"`
	MembershipDuration string `json:"membership_duration"`
}

// NewGymUser собирает GymUser из записи пользователя и его метаданных.
func NewGymUser(user *User, meta map[string]string) *GymUser {
	g := &GymUser{
		UserID:             user.ID,
		Login:              user.Login,
		FullName:           meta[MetaFullName],
		Branch:             meta[MetaBranch],
		GymRole:            meta[MetaGymRole],
		MembershipDuration: meta[MetaMembershipDuration],
	}
	if meta[MetaIsStudent] == "1" {
		g.IsStudent = 1
	}
	if g.GymRole == "" && user.Role.IsGym() {
		g.GymRole = string(user.Role)
	}
	return g
}
