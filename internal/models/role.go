package models

import "strings"

// Role — роль пользователя в хранилище.
type Role string

const (
	RoleGymMember     Role = "gym_member"
	RoleGymTrainer    Role = "gym_trainer"
	RoleGymAdmin      Role = "gym_admin"
	RoleSubscriber    Role = "subscriber"
	RoleAdministrator Role = "administrator"
)

// ParseRole принимает как значение роли ("gym_member"), так и имя из GraphQL‑перечисления ("GYM_MEMBER").
// Пустая строка даёт пустую роль, неизвестное значение возвращается как есть.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case string(RoleGymMember):
		return RoleGymMember
	case string(RoleGymTrainer):
		return RoleGymTrainer
	case string(RoleGymAdmin):
		return RoleGymAdmin
	case string(RoleSubscriber):
		return RoleSubscriber
	case string(RoleAdministrator):
		return RoleAdministrator
	}
	return Role(s)
}

// IsGym сообщает, относится ли роль к ролям спортзала.
func (r Role) IsGym() bool {
	return r == RoleGymMember || r == RoleGymTrainer || r == RoleGymAdmin
}

// HidesAdminBar — участникам и тренерам панель администратора не показывается.
func (r Role) HidesAdminBar() bool {
	return r == RoleGymMember || r == RoleGymTrainer
}
