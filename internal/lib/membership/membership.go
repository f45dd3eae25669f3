// Package membership вычисляет дату окончания абонемента.
//
// Значение срока — либо один из именованных пресетов (прибавляется к базовой дате),
// либо явная дата в ISO‑формате, которая должна быть строго позже текущего момента.
// Результат всегда в формате YYYYMMDD.
package membership

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

// Format — формат хранения даты окончания абонемента.
const Format = "20060102"

var presetDays = map[models.Preset]int{
	models.PresetThirtyDays: 30,
	models.PresetNinetyDays: 90,
	models.PresetHalfYear:   180,
	models.PresetOneYear:    365,
}

// старые значения из формы регистрации
var presetAliases = map[string]models.Preset{
	"30 days":  models.PresetThirtyDays,
	"90 days":  models.PresetNinetyDays,
	"180 days": models.PresetHalfYear,
	"1 year":   models.PresetOneYear,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	Format,
}

// ParsePreset распознаёт имя пресета (регистр не важен) или его старое текстовое значение.
func ParsePreset(s string) (models.Preset, bool) {
	s = strings.TrimSpace(s)
	p := models.Preset(strings.ToUpper(s))
	if _, ok := presetDays[p]; ok {
		return p, true
	}
	p, ok := presetAliases[strings.ToLower(s)]
	return p, ok
}

// AddPreset прибавляет к дате смещение пресета.
func AddPreset(base time.Time, p models.Preset) (time.Time, bool) {
	days, ok := presetDays[p]
	if !ok {
		return time.Time{}, false
	}
	return base.AddDate(0, 0, days), true
}

// ParseDate разбирает явную дату. Даты без часового пояса трактуются в loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	const op = "membership.ParseDate"
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unsupported date %q", op, s)
}

// ValidDuration проверяет значение срока без обращения к хранилищу:
// пресет допустим всегда, явная дата должна разбираться и быть позже now.
// Неразборчивая и прошедшая дата дают один код DateFormatInvalid, как и Resolve.
func ValidDuration(value string, now time.Time) errcode.List {
	if _, ok := ParsePreset(value); ok {
		return nil
	}
	t, err := ParseDate(value, now.Location())
	if err != nil || !t.After(now) {
		return errcode.Of(errcode.DateFormatInvalid)
	}
	return nil
}

// MetaReader — часть хранилища пользователей, нужная для чтения сохранённой даты.
type MetaReader interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetMeta(ctx context.Context, userID int64, key string) (string, error)
}

// Resolver вычисляет новую дату окончания абонемента.
type Resolver struct {
	meta MetaReader
	loc  *time.Location
	now  func() time.Time
}

// NewResolver создаёт Resolver. Если now равен nil, используется time.Now.
func NewResolver(meta MetaReader, loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{meta: meta, loc: loc, now: now}
}

// Now возвращает текущий момент в часовом поясе портала.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Base возвращает базовую дату: сохранённую дату окончания абонемента пользователя,
// либо текущий момент, если userID не задан, пользователя нет или дата не сохранена.
func (r *Resolver) Base(ctx context.Context, userID int64) (time.Time, error) {
	const op = "membership.Base"
	now := r.Now()
	if userID <= 0 || r.meta == nil {
		return now, nil
	}

	exists, err := r.meta.UserExists(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return now, nil
	}

	stored, err := r.meta.GetMeta(ctx, userID, models.MetaMembershipDuration)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	t, err := time.ParseInLocation(Format, strings.TrimSpace(stored), r.loc)
	if err != nil {
		return now, nil
	}
	return t, nil
}

// Resolve применяет значение срока к базовой дате.
// Явная дата сравнивается с текущим моментом, а не с base.
func (r *Resolver) Resolve(base time.Time, value string) (string, error) {
	if p, ok := ParsePreset(value); ok {
		t, _ := AddPreset(base, p)
		return t.Format(Format), nil
	}

	t, err := ParseDate(value, r.loc)
	if err != nil || !t.After(r.Now()) {
		return "", errcode.Of(errcode.DateFormatInvalid)
	}
	return t.Format(Format), nil
}

// ResolveFor вычисляет дату для пользователя userID (0 — новый пользователь).
func (r *Resolver) ResolveFor(ctx context.Context, userID int64, value string) (string, error) {
	base, err := r.Base(ctx, userID)
	if err != nil {
		return "", err
	}
	return r.Resolve(base, value)
}
