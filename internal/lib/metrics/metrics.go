// Package metrics содержит Prometheus метрики портала.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы операций для метки outcome.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

// Registrations считает попытки регистрации по каналу и исходу.
var Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gym_portal",
	Name:      "registrations_total",
	Help:      "Registration attempts by entry channel and outcome.",
}, []string{"channel", "outcome"})

// Updates считает попытки изменения данных участника по исходу.
var Updates = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gym_portal",
	Name:      "member_updates_total",
	Help:      "Gym member update attempts by outcome.",
}, []string{"outcome"})

// Logins считает попытки входа по исходу.
var Logins = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gym_portal",
	Name:      "logins_total",
	Help:      "Login attempts by outcome.",
}, []string{"outcome"})
