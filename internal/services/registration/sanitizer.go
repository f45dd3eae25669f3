package registration

import (
	"context"

	"github.com/magabrotheeeer/gym-portal/internal/lib/membership"
	"github.com/magabrotheeeer/gym-portal/internal/lib/sanitize"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// Sanitizer приводит значение метаданных к виду, в котором оно хранится.
type Sanitizer struct {
	resolver *membership.Resolver
}

// NewSanitizer создаёт Sanitizer. Срок абонемента вычисляется через resolver.
func NewSanitizer(resolver *membership.Resolver) *Sanitizer {
	return &Sanitizer{resolver: resolver}
}

// Sanitize возвращает очищенное значение поля key. Для неизвестного ключа ok=false,
// такое поле сохранять нельзя. userID задаёт пользователя, от сохранённого срока
// которого отсчитывается пресет; 0 означает нового пользователя.
func (s *Sanitizer) Sanitize(ctx context.Context, key, value string, userID int64) (string, bool, error) {
	switch key {
	case models.MetaFullName, models.MetaBranch:
		return sanitize.Text(value), true, nil
	case models.MetaIsStudent:
		return sanitize.Flag(value), true, nil
	case models.MetaGymRole:
		role := models.ParseRole(value)
		if !role.IsGym() {
			return "", false, nil
		}
		return string(role), true, nil
	case models.MetaMembershipDuration:
		resolved, err := s.resolver.ResolveFor(ctx, userID, value)
		if err != nil {
			return "", false, err
		}
		return resolved, true, nil
	}
	return "", false, nil
}
