// Package authorizer решает, может ли актор создать, изменить или прочитать
// пользователя спортзала. Права выдаются ролям через таблицу грантов.
package authorizer

import (
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// Capability — право на действие.
type Capability string

const (
	CreateGymMember  Capability = "create_gym_member"
	CreateGymTrainer Capability = "create_gym_trainer"
	CreateGymUser    Capability = "create_gym_user"
	UpdateGymMember  Capability = "update_gym_member"
	ListGymMembers   Capability = "list_gym_members"
	ManageOptions    Capability = "manage_options"
	Read             Capability = "read"
)

// Grants — набор прав для каждой роли.
type Grants map[models.Role][]Capability

// DefaultGrants возвращает таблицу прав портала. Администратор сайта имеет все права
// и в таблице не перечисляется.
func DefaultGrants() Grants {
	return Grants{
		models.RoleGymAdmin: {
			CreateGymMember, CreateGymTrainer, CreateGymUser,
			UpdateGymMember, ListGymMembers, Read,
		},
		models.RoleGymTrainer: {CreateGymMember, UpdateGymMember, ListGymMembers, Read},
		models.RoleGymMember:  {Read},
		models.RoleSubscriber: {Read},
	}
}

var createCapabilities = map[models.Role]Capability{
	models.RoleGymMember:  CreateGymMember,
	models.RoleGymTrainer: CreateGymTrainer,
	models.RoleGymAdmin:   CreateGymUser,
}

// CreateCapability возвращает право, нужное для создания пользователя с ролью role.
func CreateCapability(role models.Role) (Capability, bool) {
	c, ok := createCapabilities[role]
	return c, ok
}

// Authorizer проверяет права актора по таблице грантов.
type Authorizer struct {
	grants map[models.Role]map[Capability]struct{}
}

// New создаёт Authorizer с таблицей grants.
func New(grants Grants) *Authorizer {
	idx := make(map[models.Role]map[Capability]struct{}, len(grants))
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		idx[role] = set
	}
	return &Authorizer{grants: idx}
}

// Can сообщает, есть ли у актора право capability.
func (a *Authorizer) Can(actor *models.Actor, capability Capability) bool {
	if !actor.Authenticated() {
		return false
	}
	if actor.Role == models.RoleAdministrator {
		return true
	}
	_, ok := a.grants[actor.Role][capability]
	return ok
}

// AuthorizeCreate проверяет право создать пользователя с ролью role.
// Проверки идут по порядку и останавливаются на первой ошибке:
// вход в систему, заданная роль, право на создание этой роли.
// Если allowAnonymous, анонимная самостоятельная регистрация разрешена только для gym_member.
func (a *Authorizer) AuthorizeCreate(actor *models.Actor, role models.Role, allowAnonymous bool) errcode.List {
	if allowAnonymous && role == models.RoleGymMember {
		return nil
	}
	if !actor.Authenticated() {
		return errcode.Of(errcode.Unauthenticated)
	}
	if role == "" {
		return errcode.Of(errcode.EmptyField)
	}
	capability, ok := CreateCapability(role)
	if !ok || !a.Can(actor, capability) {
		return errcode.Of(errcode.ForbiddenCapability)
	}
	return nil
}

// AuthorizeUpdate проверяет право изменить данные пользователя userID.
func (a *Authorizer) AuthorizeUpdate(actor *models.Actor, userID int64) errcode.List {
	if !actor.Authenticated() {
		return errcode.Of(errcode.Unauthenticated)
	}
	if userID <= 0 {
		return errcode.Of(errcode.EmptyField)
	}
	if !a.Can(actor, UpdateGymMember) {
		return errcode.Of(errcode.ForbiddenCapability)
	}
	return nil
}

// AuthorizeRead проверяет право прочитать данные пользователя userID.
// Свои данные может читать любой вошедший пользователь.
func (a *Authorizer) AuthorizeRead(actor *models.Actor, userID int64) errcode.List {
	if !actor.Authenticated() {
		return errcode.Of(errcode.Unauthenticated)
	}
	if userID <= 0 {
		return errcode.Of(errcode.EmptyField)
	}
	if actor.UserID != userID && !a.Can(actor, ListGymMembers) {
		return errcode.Of(errcode.ForbiddenCapability)
	}
	return nil
}
