package models

import "strings"

// Preset — именованный срок продления абонемента.
type Preset string

const (
	PresetThirtyDays Preset = "THIRTY_DAYS"
	PresetNinetyDays Preset = "NINETY_DAYS"
	PresetHalfYear   Preset = "HALF_YEAR"
	PresetOneYear    Preset = "ONE_YEAR"
)

// Presets перечисляет все допустимые сроки в порядке возрастания.
var Presets = []Preset{PresetThirtyDays, PresetNinetyDays, PresetHalfYear, PresetOneYear}

// Candidate — данные пользователя из запроса до валидации.
// Необязательные поля равны nil, если они не были переданы.
type Candidate struct {
	Username                   string
	Email                      *string
	Password                   *string
	FullName                   *string
	IsStudent                  *bool
	Branch                     *string
	MembershipDurationPreset   *Preset
	MembershipDurationSpecific *string
}

// MembershipDuration возвращает значение срока абонемента, которое нужно применить.
// Конкретная дата имеет приоритет над пресетом; ok=false, если не задано ни то, ни другое.
func (c Candidate) MembershipDuration() (string, bool) {
	if c.MembershipDurationSpecific != nil && strings.TrimSpace(*c.MembershipDurationSpecific) != "" {
		return strings.TrimSpace(*c.MembershipDurationSpecific), true
	}
	if c.MembershipDurationPreset != nil && *c.MembershipDurationPreset != "" {
		return string(*c.MembershipDurationPreset), true
	}
	return "", false
}

// MetaFields возвращает метаданные кандидата в виде пар ключ‑значение, пропуская незаданные поля.
func (c Candidate) MetaFields() map[string]string {
	fields := make(map[string]string)
	if c.FullName != nil {
		fields[MetaFullName] = *c.FullName
	}
	if c.IsStudent != nil {
		if *c.IsStudent {
			fields[MetaIsStudent] = "1"
		} else {
			fields[MetaIsStudent] = "0"
		}
	}
	if c.Branch != nil {
		fields[MetaBranch] = *c.Branch
	}
	if v, ok := c.MembershipDuration(); ok {
		fields[MetaMembershipDuration] = v
	}
	return fields
}

// StringPtr возвращает указатель на строку.
func StringPtr(s string) *string { return &s }
