package models

import "time"

// UserRegisteredEvent публикуется в очередь уведомлений после успешной регистрации.
type UserRegisteredEvent struct {
	UserID             int64     `json:"user_id"`
	Login              string    `json:"login"`
	Email              string    `json:"email,omitempty"`
	FullName           string    `json:"full_name,omitempty"`
	Role               Role      `json:"role"`
	MembershipDuration string    `json:"membership_duration,omitempty"`
	Channel            string    `json:"channel"`
	RegisteredAt       time.Time `json:"registered_at"`
}
