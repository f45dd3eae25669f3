package models

// Actor — пользователь, от имени которого выполняется запрос.
// Нулевое значение означает анонимный запрос.
type Actor struct {
	UserID int64
	Login  string
	Role   Role
}

// Authenticated сообщает, что запрос выполнен вошедшим пользователем.
func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID > 0
}
